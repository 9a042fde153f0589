package overdue

import (
	"context"
	"time"

	"github.com/vasujain275/shelfwise/internal/domain/uow"
)

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

// SweepOverdue flips every active loan whose due date is before now to
// overdue and returns how many changed. The update is set-based, so a
// second run right after finds nothing.
func (u *Usecase) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		n, err = r.Loans.MarkOverdueDueBefore(ctx, now.UTC())
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
