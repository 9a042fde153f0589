package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookDomain "github.com/vasujain275/shelfwise/internal/domain/book"
)

type BookRepository struct{ db *gorm.DB }

func NewBookRepository(db *gorm.DB) *BookRepository { return &BookRepository{db: db} }

// forUpdate adds a row lock on dialects that support it. sqlite (tests) has
// no FOR UPDATE; its writes serialize on the whole database anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *BookRepository) Create(ctx context.Context, b *bookDomain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookRepository) Save(ctx context.Context, b *bookDomain.Book) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookRepository) GetByBookID(ctx context.Context, bookID string) (*bookDomain.Book, error) {
	var out bookDomain.Book
	res := r.db.WithContext(ctx).Where("book_id = ?", bookID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *BookRepository) GetByBookIDForUpdate(ctx context.Context, bookID string) (*bookDomain.Book, error) {
	var out bookDomain.Book
	res := forUpdate(r.db.WithContext(ctx)).Where("book_id = ?", bookID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *BookRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*bookDomain.Book, error) {
	var out bookDomain.Book
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}
