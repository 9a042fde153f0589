package bookmock

import (
	"context"
	"errors"

	domain "github.com/vasujain275/shelfwise/internal/domain/book"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("bookmock: method not implemented")

// Repo is a function-backed mock that satisfies book.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, b *domain.Book) error
	SaveFn                 func(ctx context.Context, b *domain.Book) error
	GetByBookIDFn          func(ctx context.Context, bookID string) (*domain.Book, error)
	GetByBookIDForUpdateFn func(ctx context.Context, bookID string) (*domain.Book, error)
	GetByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Book, error)
}

func (m *Repo) Create(ctx context.Context, b *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, b *domain.Book) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByBookID(ctx context.Context, bookID string) (*domain.Book, error) {
	if m.GetByBookIDFn != nil {
		return m.GetByBookIDFn(ctx, bookID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByBookIDForUpdate(ctx context.Context, bookID string) (*domain.Book, error) {
	if m.GetByBookIDForUpdateFn != nil {
		return m.GetByBookIDForUpdateFn(ctx, bookID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Book, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, errUnimplemented
}
