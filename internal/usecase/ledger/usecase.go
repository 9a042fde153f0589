package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/vasujain275/shelfwise/internal/domain/book"
	"github.com/vasujain275/shelfwise/internal/domain/loan"
	"github.com/vasujain275/shelfwise/internal/domain/user"
	"github.com/vasujain275/shelfwise/internal/domain/uow"
	"github.com/vasujain275/shelfwise/pkg/id"
)

// maxTxRetries bounds the internal retries on deadlock/lock-wait errors
// before the conflict is surfaced to the caller.
const maxTxRetries = 3

type Usecase struct {
	loans loan.Repository
	books book.Repository
	users user.Repository
	uow   uow.UnitOfWork
}

// NewUsecase: plain repos serve the read paths, the UoW serves every mutation.
func NewUsecase(loans loan.Repository, books book.Repository, users user.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{loans: loans, books: books, users: users, uow: tx}
}

// Issue lends one copy of a book to a user. The availability decrement, the
// borrower counter increment and the loan row are committed together; the
// book row is locked so concurrent issues of the same title serialize.
func (u *Usecase) Issue(ctx context.Context, in IssueInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.withRetry(func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			d, err := issueOne(ctx, r, in, false)
			if err != nil {
				return err
			}
			dto = d
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// issueOne applies a single issue inside an open transaction. The batch
// import path reuses it with relaxed=true, which skips the availability
// checks but keeps the counter bookkeeping.
func issueOne(ctx context.Context, r uow.Repos, in IssueInput, relaxed bool) (*LoanDTO, error) {
	b, err := r.Books.GetByBookIDForUpdate(ctx, in.BookID)
	if err != nil {
		return nil, notFoundOr(err, book.ErrNotFound)
	}
	usr, err := r.Users.GetByUserIDForUpdate(ctx, in.UserID)
	if err != nil {
		return nil, notFoundOr(err, user.ErrNotFound)
	}
	issuer, err := r.Users.GetByUserID(ctx, in.IssuerID)
	if err != nil {
		return nil, notFoundOr(err, user.ErrNotFound)
	}

	if !relaxed {
		if err := validateBookForIssue(b); err != nil {
			return nil, err
		}
	}

	b.AvailableCopies--
	if b.AvailableCopies == 0 {
		b.Status = book.StatusIssued
	}
	usr.BooksIssued++

	if err := r.Books.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := r.Users.Save(ctx, usr); err != nil {
		return nil, err
	}

	l := &loan.Loan{
		LoanID:     id.NewID32(),
		BookID:     b.ID,
		UserID:     usr.ID,
		IssuedByID: issuer.ID,
		IssueDate:  in.IssueDate.UTC(),
		DueDate:    in.DueDate.UTC(),
		Status:     loan.StatusActive,
		Notes:      in.Notes,
	}
	if err := r.Loans.Create(ctx, l); err != nil {
		return nil, err
	}

	l.Book, l.User, l.IssuedBy = b, usr, issuer
	return toDTO(l), nil
}

func validateBookForIssue(b *book.Book) error {
	if b.ReferenceOnly {
		return loan.ErrReferenceOnly
	}
	if b.AvailableCopies <= 0 {
		return loan.ErrNoCopiesAvailable
	}
	if b.Status != book.StatusAvailable {
		return loan.ErrBookNotAvailable
	}
	return nil
}

// Return closes a loan. Overdue loans remain returnable; a returned loan is
// terminal and yields ErrNotActive.
func (u *Usecase) Return(ctx context.Context, in ReturnInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.withRetry(func() error {
		return u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
			if !l.Open() {
				return loan.ErrNotActive
			}
			returner, err := r.Users.GetByUserID(ctx, in.ReturnerID)
			if err != nil {
				return notFoundOr(err, user.ErrNotFound)
			}
			b, err := r.Books.GetByIDForUpdate(ctx, l.BookID)
			if err != nil {
				return notFoundOr(err, book.ErrNotFound)
			}

			b.AvailableCopies++
			if b.Status == book.StatusIssued {
				b.Status = book.StatusAvailable
			}
			if err := r.Books.Save(ctx, b); err != nil {
				return err
			}

			now := time.Now().UTC()
			l.Status = loan.StatusReturned
			l.ReturnDate = &now
			l.ReturnedToID = &returner.ID
			if strings.TrimSpace(in.Notes) != "" {
				l.Notes = in.Notes
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}

			l.Book, l.ReturnedTo = b, returner
			dto = toDTO(l)
			return nil
		})
	})
	if err != nil {
		return nil, notFoundOr(err, loan.ErrNotFound)
	}
	return dto, nil
}

// Renew pushes the due date forward on an active loan. Overdue loans must be
// returned first; the due date may never move backwards.
func (u *Usecase) Renew(ctx context.Context, in RenewInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.withRetry(func() error {
		return u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
			if l.Status != loan.StatusActive {
				return loan.ErrNotActive
			}
			newDue := in.NewDueDate.UTC()
			if newDue.Before(l.DueDate) {
				return loan.ErrDueDateRegression
			}
			l.DueDate = newDue
			l.RenewalCount++
			if strings.TrimSpace(in.Notes) != "" {
				l.Notes = in.Notes
			}
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			dto = toDTO(l)
			return nil
		})
	})
	if err != nil {
		return nil, notFoundOr(err, loan.ErrNotFound)
	}
	return dto, nil
}

// ---- read-only queries ----

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, notFoundOr(err, loan.ErrNotFound)
	}
	return toDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	ls, total, err := u.loans.List(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) Search(ctx context.Context, query string, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	ls, total, err := u.loans.Search(ctx, strings.TrimSpace(query), page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) ListByBook(ctx context.Context, bookID string, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	b, err := u.books.GetByBookID(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, book.ErrNotFound)
	}
	ls, total, err := u.loans.ListByBook(ctx, b.ID, page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID string, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, user.ErrNotFound)
	}
	ls, total, err := u.loans.ListByUser(ctx, usr.ID, page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) ListActive(ctx context.Context, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	ls, total, err := u.loans.ListByStatus(ctx, loan.StatusActive, page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) ListActiveByUser(ctx context.Context, userID string, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, user.ErrNotFound)
	}
	ls, total, err := u.loans.ListActiveByUser(ctx, usr.ID, page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

func (u *Usecase) ListOverdue(ctx context.Context, page, size int) (*Page, error) {
	page, size = normalizePage(page, size)
	ls, total, err := u.loans.ListOverdue(ctx, time.Now().UTC(), page, size)
	if err != nil {
		return nil, err
	}
	return newPage(ls, page, size, total), nil
}

// History returns every loan the user ever held, newest issue first.
func (u *Usecase) History(ctx context.Context, userID string) ([]LoanDTO, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, user.ErrNotFound)
	}
	ls, err := u.loans.HistoryByUser(ctx, usr.ID)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		out = append(out, *toDTO(&ls[i]))
	}
	return out, nil
}

func (u *Usecase) IsIssuedTo(ctx context.Context, bookID, userID string) (bool, error) {
	b, err := u.books.GetByBookID(ctx, bookID)
	if err != nil {
		return false, notFoundOr(err, book.ErrNotFound)
	}
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return false, notFoundOr(err, user.ErrNotFound)
	}
	return u.loans.ExistsActive(ctx, b.ID, usr.ID)
}

func (u *Usecase) ActiveCount(ctx context.Context, userID string) (int64, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return 0, notFoundOr(err, user.ErrNotFound)
	}
	return u.loans.CountActiveByUser(ctx, usr.ID)
}

// ---- helpers ----

func (u *Usecase) withRetry(op func() error) error {
	var err error
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err = op()
		if !isRetryableTxError(err) {
			return err
		}
		log.Printf("ledger: tx conflict (attempt %d/%d): %v", attempt, maxTxRetries, err)
	}
	return fmt.Errorf("%w: %v", loan.ErrTxConflict, err)
}

// isRetryableTxError matches MySQL lock wait timeout (1205) and deadlock
// (1213); everything else surfaces immediately.
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1205 || me.Number == 1213
	}
	return false
}

func notFoundOr(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	return page, size
}

func newPage(ls []loan.Loan, page, size int, total int64) *Page {
	items := make([]LoanDTO, 0, len(ls))
	for i := range ls {
		items = append(items, *toDTO(&ls[i]))
	}
	return &Page{Items: items, Page: page, Size: size, Total: total}
}

func toDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:       l.LoanID,
		IssueDate:    l.IssueDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		RenewalCount: l.RenewalCount,
		Status:       string(l.Status),
		Notes:        l.Notes,
	}
	if l.Book != nil {
		dto.BookID = l.Book.BookID
		dto.BookTitle = l.Book.Title
		dto.AccessionNumber = l.Book.AccessionNumber
	}
	if l.User != nil {
		dto.UserID = l.User.UserID
		dto.EmployeeID = l.User.EmployeeID
		dto.UserFullName = l.User.FullName
	}
	if l.IssuedBy != nil {
		dto.IssuedByID = l.IssuedBy.UserID
		dto.IssuedByName = l.IssuedBy.FullName
	}
	if l.ReturnedTo != nil {
		dto.ReturnedToID = l.ReturnedTo.UserID
		dto.ReturnedToName = l.ReturnedTo.FullName
	}
	return dto
}
