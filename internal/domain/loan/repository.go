package loan

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate takes a row lock; only meaningful inside a transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)

	// Paginated listings. All of them preload the book and user rows and
	// return the total row count for the page envelope.
	List(ctx context.Context, page, size int) ([]Loan, int64, error)
	Search(ctx context.Context, query string, page, size int) ([]Loan, int64, error)
	ListByBook(ctx context.Context, bookID uint64, page, size int) ([]Loan, int64, error)
	ListByUser(ctx context.Context, userID uint64, page, size int) ([]Loan, int64, error)
	ListByStatus(ctx context.Context, status Status, page, size int) ([]Loan, int64, error)
	ListActiveByUser(ctx context.Context, userID uint64, page, size int) ([]Loan, int64, error)
	ListOverdue(ctx context.Context, now time.Time, page, size int) ([]Loan, int64, error)

	HistoryByUser(ctx context.Context, userID uint64) ([]Loan, error)
	ExistsActive(ctx context.Context, bookID, userID uint64) (bool, error)
	CountActiveByUser(ctx context.Context, userID uint64) (int64, error)

	// MarkOverdueDueBefore flips every active loan whose due date passed to
	// overdue in one set-based update and reports how many rows changed.
	MarkOverdueDueBefore(ctx context.Context, now time.Time) (int64, error)
}
