package ledger

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	bookDomain "github.com/vasujain275/shelfwise/internal/domain/book"
	loanDomain "github.com/vasujain275/shelfwise/internal/domain/loan"
	"github.com/vasujain275/shelfwise/internal/testutil/bookmock"
	"github.com/vasujain275/shelfwise/internal/testutil/loanmock"
)

func TestIssueBatch_SkipsBadItemsAndContinues(t *testing.T) {
	first := testBook(2)
	third := testBook(2)
	third.ID, third.BookID = 12, strings.Repeat("9", 32)
	third.AccessionNumber = "ACC-0002"
	known := map[string]*bookDomain.Book{first.BookID: first, third.BookID: third}

	missing := strings.Repeat("0", 32)

	created := 0
	books := &bookmock.Repo{
		GetByBookIDForUpdateFn: func(ctx context.Context, bookID string) (*bookDomain.Book, error) {
			if b, ok := known[bookID]; ok {
				return b, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		SaveFn: func(context.Context, *bookDomain.Book) error { return nil },
	}
	loans := &loanmock.Repo{
		CreateFn: func(context.Context, *loanDomain.Loan) error { created++; return nil },
	}
	uc, _ := repos(books, lookupUsers(testUser(), testIssuer()), loans)

	reqs := []IssueInput{issueInput(), issueInput(), issueInput()}
	reqs[0].BookID = first.BookID
	reqs[1].BookID = missing
	reqs[2].BookID = third.BookID

	res, err := uc.IssueBatch(context.Background(), reqs, false)
	if err != nil {
		t.Fatalf("IssueBatch err: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.FailedIDs) != 1 || res.FailedIDs[0] != missing {
		t.Fatalf("FailedIDs = %v", res.FailedIDs)
	}
	if created != 2 {
		t.Fatalf("loans created = %d, want 2", created)
	}
}

func TestIssueBatch_RelaxedMixedBatch(t *testing.T) {
	// [valid, invalid, valid] with relaxed=true: the two good rows land
	// even though the middle one references an unknown book.
	first := testBook(0) // zero copies on record; relaxed still issues
	third := testBook(1)
	third.ID, third.BookID = 12, strings.Repeat("9", 32)
	third.AccessionNumber = "ACC-0002"
	known := map[string]*bookDomain.Book{first.BookID: first, third.BookID: third}
	missing := strings.Repeat("0", 32)

	var persisted []string
	books := &bookmock.Repo{
		GetByBookIDForUpdateFn: func(ctx context.Context, bookID string) (*bookDomain.Book, error) {
			if b, ok := known[bookID]; ok {
				return b, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		SaveFn: func(context.Context, *bookDomain.Book) error { return nil },
	}
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *loanDomain.Loan) error {
			persisted = append(persisted, l.LoanID)
			return nil
		},
	}
	uc, _ := repos(books, lookupUsers(testUser(), testIssuer()), loans)

	reqs := []IssueInput{issueInput(), issueInput(), issueInput()}
	reqs[0].BookID = first.BookID
	reqs[1].BookID = missing
	reqs[2].BookID = third.BookID

	res, err := uc.IssueBatch(context.Background(), reqs, true)
	if err != nil {
		t.Fatalf("IssueBatch err: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.FailedIDs) != 1 || res.FailedIDs[0] != missing {
		t.Fatalf("FailedIDs = %v", res.FailedIDs)
	}
	if len(persisted) != 2 {
		t.Fatalf("loans persisted = %d, want 2", len(persisted))
	}
	if first.AvailableCopies != -1 {
		t.Fatalf("relaxed issue should not be blocked by zero copies: %d", first.AvailableCopies)
	}
}

func TestIssueBatch_RelaxedSkipsAvailabilityChecks(t *testing.T) {
	// Zero copies on record: strict issue must refuse, a relaxed import
	// trusts the incoming rows and lets the count go negative.
	b := testBook(0)
	books := &bookmock.Repo{
		GetByBookIDForUpdateFn: func(context.Context, string) (*bookDomain.Book, error) { return b, nil },
		SaveFn:                 func(context.Context, *bookDomain.Book) error { return nil },
	}
	loans := &loanmock.Repo{CreateFn: func(context.Context, *loanDomain.Loan) error { return nil }}
	uc, _ := repos(books, lookupUsers(testUser(), testIssuer()), loans)

	res, err := uc.IssueBatch(context.Background(), []IssueInput{issueInput()}, false)
	if err != nil || res.Succeeded != 0 || res.Failed != 1 {
		t.Fatalf("strict: res=%+v err=%v", res, err)
	}

	res, err = uc.IssueBatch(context.Background(), []IssueInput{issueInput()}, true)
	if err != nil || res.Succeeded != 1 {
		t.Fatalf("relaxed: res=%+v err=%v", res, err)
	}
	if b.AvailableCopies != -1 {
		t.Fatalf("copies = %d, want -1", b.AvailableCopies)
	}
}

func TestIssueBatch_EmptyInput(t *testing.T) {
	uc, _ := repos(&bookmock.Repo{}, lookupUsers(), &loanmock.Repo{})

	res, err := uc.IssueBatch(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("IssueBatch err: %v", err)
	}
	if res.Succeeded != 0 || res.Failed != 0 || res.FailedIDs == nil || len(res.FailedIDs) != 0 {
		t.Fatalf("result = %+v", res)
	}
}
