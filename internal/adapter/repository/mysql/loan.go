package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	loanDomain "github.com/vasujain275/shelfwise/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func withAssocs(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Book").Preload("User").Preload("IssuedBy").Preload("ReturnedTo")
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit("Book", "User", "IssuedBy", "ReturnedTo").Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withAssocs(r.db.WithContext(ctx)).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// GetByLoanIDForUpdate locks the loan row; the preloads themselves run
// unlocked, callers re-lock the book row before mutating it.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := withAssocs(forUpdate(r.db.WithContext(ctx))).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// pageOf runs cond twice, once for the count and once for the page, so the
// two queries never share accumulated clauses.
func (r *LoanRepository) pageOf(ctx context.Context, cond func(*gorm.DB) *gorm.DB, page, size int) ([]loanDomain.Loan, int64, error) {
	var total int64
	if err := cond(r.db.WithContext(ctx).Model(&loanDomain.Loan{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []loanDomain.Loan
	err := withAssocs(cond(r.db.WithContext(ctx).Model(&loanDomain.Loan{}))).
		Order("loans.issue_date DESC, loans.id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *LoanRepository) List(ctx context.Context, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB { return q }, page, size)
}

func (r *LoanRepository) Search(ctx context.Context, query string, page, size int) ([]loanDomain.Loan, int64, error) {
	if query == "" {
		return r.List(ctx, page, size)
	}
	pat := "%" + query + "%"
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.
			Joins("JOIN books ON books.id = loans.book_id").
			Joins("JOIN users ON users.id = loans.user_id").
			Where("books.title LIKE ? OR books.accession_number LIKE ? OR users.full_name LIKE ? OR users.employee_id LIKE ?",
				pat, pat, pat, pat)
	}, page, size)
}

func (r *LoanRepository) ListByBook(ctx context.Context, bookID uint64, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("book_id = ?", bookID)
	}, page, size)
}

func (r *LoanRepository) ListByUser(ctx context.Context, userID uint64, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	}, page, size)
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loanDomain.Status, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", status)
	}, page, size)
}

func (r *LoanRepository) ListActiveByUser(ctx context.Context, userID uint64, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND status = ?", userID, loanDomain.StatusActive)
	}, page, size)
}

func (r *LoanRepository) ListOverdue(ctx context.Context, now time.Time, page, size int) ([]loanDomain.Loan, int64, error) {
	return r.pageOf(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ? AND due_date < ?", loanDomain.StatusOverdue, now)
	}, page, size)
}

func (r *LoanRepository) HistoryByUser(ctx context.Context, userID uint64) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	err := withAssocs(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("issue_date DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) ExistsActive(ctx context.Context, bookID, userID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("book_id = ? AND user_id = ? AND status = ?", bookID, userID, loanDomain.StatusActive).
		Count(&n).Error
	return n > 0, err
}

func (r *LoanRepository) CountActiveByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("user_id = ? AND status = ?", userID, loanDomain.StatusActive).
		Count(&n).Error
	return n, err
}

func (r *LoanRepository) MarkOverdueDueBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("status = ? AND due_date < ?", loanDomain.StatusActive, now).
		Update("status", loanDomain.StatusOverdue)
	return res.RowsAffected, res.Error
}
