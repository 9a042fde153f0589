package uow

import (
	"context"

	"github.com/vasujain275/shelfwise/internal/domain/book"
	"github.com/vasujain275/shelfwise/internal/domain/loan"
	"github.com/vasujain275/shelfwise/internal/domain/user"
)

type Repos struct {
	Loans loan.Repository
	Books book.Repository
	Users user.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
