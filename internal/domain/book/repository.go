package book

import "context"

type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByBookID(ctx context.Context, bookID string) (*Book, error)
	// GetByBookIDForUpdate takes a row lock; only meaningful inside a transaction.
	GetByBookIDForUpdate(ctx context.Context, bookID string) (*Book, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Book, error)
	Save(ctx context.Context, b *Book) error
}
