package ledger

import (
	"context"
	"log"

	"github.com/vasujain275/shelfwise/internal/domain/uow"
)

// IssueBatch applies the same effects as Issue to each request in its own
// transaction. One bad request is recorded and skipped, never aborting the
// rest. With relaxed=true the availability preconditions are skipped: the
// import data is trusted as ground truth even where the copy bookkeeping is
// already inconsistent.
func (u *Usecase) IssueBatch(ctx context.Context, reqs []IssueInput, relaxed bool) (*BatchResult, error) {
	res := &BatchResult{FailedIDs: []string{}}
	for i := range reqs {
		in := reqs[i]
		err := u.withRetry(func() error {
			return u.uow.WithinTx(ctx, func(r uow.Repos) error {
				_, err := issueOne(ctx, r, in, relaxed)
				return err
			})
		})
		if err != nil {
			log.Printf("ledger: batch issue of book %s to user %s failed: %v", in.BookID, in.UserID, err)
			res.Failed++
			res.FailedIDs = append(res.FailedIDs, in.BookID)
			continue
		}
		res.Succeeded++
	}
	return res, nil
}
