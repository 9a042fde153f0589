package loanmock

import (
	"context"
	"errors"
	"time"

	domain "github.com/vasujain275/shelfwise/internal/domain/loan"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies loan.Repository.
// Fill in the function fields a test needs; unfilled ones fail loudly.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn                 func(ctx context.Context, page, size int) ([]domain.Loan, int64, error)
	SearchFn               func(ctx context.Context, query string, page, size int) ([]domain.Loan, int64, error)
	ListByBookFn           func(ctx context.Context, bookID uint64, page, size int) ([]domain.Loan, int64, error)
	ListByUserFn           func(ctx context.Context, userID uint64, page, size int) ([]domain.Loan, int64, error)
	ListByStatusFn         func(ctx context.Context, status domain.Status, page, size int) ([]domain.Loan, int64, error)
	ListActiveByUserFn     func(ctx context.Context, userID uint64, page, size int) ([]domain.Loan, int64, error)
	ListOverdueFn          func(ctx context.Context, now time.Time, page, size int) ([]domain.Loan, int64, error)
	HistoryByUserFn        func(ctx context.Context, userID uint64) ([]domain.Loan, error)
	ExistsActiveFn         func(ctx context.Context, bookID, userID uint64) (bool, error)
	CountActiveByUserFn    func(ctx context.Context, userID uint64) (int64, error)
	MarkOverdueDueBeforeFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, page, size int) ([]domain.Loan, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) Search(ctx context.Context, query string, page, size int) ([]domain.Loan, int64, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) ListByBook(ctx context.Context, bookID uint64, page, size int) ([]domain.Loan, int64, error) {
	if m.ListByBookFn != nil {
		return m.ListByBookFn(ctx, bookID, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) ListByUser(ctx context.Context, userID uint64, page, size int) ([]domain.Loan, int64, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) ListByStatus(ctx context.Context, status domain.Status, page, size int) ([]domain.Loan, int64, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) ListActiveByUser(ctx context.Context, userID uint64, page, size int) ([]domain.Loan, int64, error) {
	if m.ListActiveByUserFn != nil {
		return m.ListActiveByUserFn(ctx, userID, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time, page, size int) ([]domain.Loan, int64, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now, page, size)
	}
	return nil, 0, errUnimplemented
}

func (m *Repo) HistoryByUser(ctx context.Context, userID uint64) ([]domain.Loan, error) {
	if m.HistoryByUserFn != nil {
		return m.HistoryByUserFn(ctx, userID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ExistsActive(ctx context.Context, bookID, userID uint64) (bool, error) {
	if m.ExistsActiveFn != nil {
		return m.ExistsActiveFn(ctx, bookID, userID)
	}
	return false, errUnimplemented
}

func (m *Repo) CountActiveByUser(ctx context.Context, userID uint64) (int64, error) {
	if m.CountActiveByUserFn != nil {
		return m.CountActiveByUserFn(ctx, userID)
	}
	return 0, errUnimplemented
}

func (m *Repo) MarkOverdueDueBefore(ctx context.Context, now time.Time) (int64, error) {
	if m.MarkOverdueDueBeforeFn != nil {
		return m.MarkOverdueDueBeforeFn(ctx, now)
	}
	return 0, errUnimplemented
}
