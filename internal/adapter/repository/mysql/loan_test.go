package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	bookDomain "github.com/vasujain275/shelfwise/internal/domain/book"
	loanDomain "github.com/vasujain275/shelfwise/internal/domain/loan"
	userDomain "github.com/vasujain275/shelfwise/internal/domain/user"
	"github.com/vasujain275/shelfwise/pkg/id"
)

// sqlite cannot migrate the enum column types the MySQL schema uses, so the
// test schema mirrors the tables with plain text status columns. Column names
// must stay in sync with the domain models.
type bookSQLite struct {
	ID              uint64 `gorm:"primaryKey;column:id"`
	BookID          string `gorm:"size:32;uniqueIndex"`
	AccessionNumber string `gorm:"size:64;uniqueIndex"`
	Title           string `gorm:"size:255"`
	AuthorPrimary   string `gorm:"size:255"`
	TotalCopies     int    `gorm:"not null;default:1"`
	AvailableCopies int    `gorm:"not null;default:1"`
	Status          string `gorm:"size:16;default:'available'"`
	ReferenceOnly   bool   `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (bookSQLite) TableName() string { return "books" }

type userSQLite struct {
	ID          uint64 `gorm:"primaryKey;column:id"`
	UserID      string `gorm:"size:32;uniqueIndex"`
	EmployeeID  string `gorm:"size:64;uniqueIndex"`
	FullName    string `gorm:"size:255"`
	Email       string `gorm:"size:255"`
	BooksIssued int    `gorm:"not null;default:0"`
	Status      string `gorm:"size:16;default:'active'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userSQLite) TableName() string { return "users" }

type loanSQLite struct {
	ID           uint64 `gorm:"primaryKey;column:id"`
	LoanID       string `gorm:"size:32;uniqueIndex"`
	BookID       uint64 `gorm:"not null;index"`
	UserID       uint64 `gorm:"not null;index"`
	IssuedByID   uint64 `gorm:"not null"`
	ReturnedToID *uint64
	IssueDate    time.Time `gorm:"not null"`
	DueDate      time.Time `gorm:"not null"`
	ReturnDate   *time.Time
	RenewalCount int    `gorm:"not null;default:0"`
	Status       string `gorm:"size:16;default:'active'"`
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (loanSQLite) TableName() string { return "loans" }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a second pool connection would see a different :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&bookSQLite{}, &userSQLite{}, &loanSQLite{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db    *gorm.DB
	loans *LoanRepository
	books *BookRepository
	users *UserRepository

	book   *bookDomain.Book
	user   *userDomain.User
	issuer *userDomain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	f := &fixture{
		db:    db,
		loans: NewLoanRepository(db),
		books: NewBookRepository(db),
		users: NewUserRepository(db),
	}
	ctx := context.Background()

	f.book = &bookDomain.Book{
		BookID: id.NewID32(), AccessionNumber: "ACC-1001",
		Title: "Designing Data-Intensive Applications", AuthorPrimary: "Martin Kleppmann",
		TotalCopies: 2, AvailableCopies: 2, Status: bookDomain.StatusAvailable,
	}
	if err := f.books.Create(ctx, f.book); err != nil {
		t.Fatalf("seed book: %v", err)
	}
	f.user = &userDomain.User{
		UserID: id.NewID32(), EmployeeID: "EMP-100",
		FullName: "Asha Rao", Email: "asha@example.org", Status: userDomain.StatusActive,
	}
	f.issuer = &userDomain.User{
		UserID: id.NewID32(), EmployeeID: "EMP-200",
		FullName: "Front Desk", Email: "desk@example.org", Status: userDomain.StatusActive,
	}
	for _, u := range []*userDomain.User{f.user, f.issuer} {
		if err := f.users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return f
}

func (f *fixture) mkLoan(t *testing.T, status loanDomain.Status, issue, due time.Time) *loanDomain.Loan {
	t.Helper()
	l := &loanDomain.Loan{
		LoanID: id.NewID32(),
		BookID: f.book.ID, UserID: f.user.ID, IssuedByID: f.issuer.ID,
		IssueDate: issue, DueDate: due, Status: status,
	}
	if err := f.loans.Create(context.Background(), l); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return l
}

var (
	t0  = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	d14 = 14 * 24 * time.Hour
)

func TestLoanRepository_GetByLoanIDPreloadsAssociations(t *testing.T) {
	f := newFixture(t)
	seeded := f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))

	got, err := f.loans.GetByLoanID(context.Background(), seeded.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.Book == nil || got.Book.Title != f.book.Title {
		t.Fatalf("Book not preloaded: %+v", got.Book)
	}
	if got.User == nil || got.User.EmployeeID != "EMP-100" {
		t.Fatalf("User not preloaded: %+v", got.User)
	}
	if got.IssuedBy == nil || got.IssuedBy.FullName != "Front Desk" {
		t.Fatalf("IssuedBy not preloaded: %+v", got.IssuedBy)
	}
	if got.ReturnedTo != nil {
		t.Fatalf("ReturnedTo should be nil on an open loan")
	}

	if _, err := f.loans.GetByLoanID(context.Background(), id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing loan: err = %v", err)
	}
}

func TestLoanRepository_SaveLeavesAssociationsAlone(t *testing.T) {
	f := newFixture(t)
	seeded := f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))
	ctx := context.Background()

	got, err := f.loans.GetByLoanID(ctx, seeded.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	got.Book.Title = "scribbled over in memory"
	got.Status = loanDomain.StatusReturned
	if err := f.loans.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := f.books.GetByBookID(ctx, f.book.BookID)
	if err != nil {
		t.Fatalf("GetByBookID: %v", err)
	}
	if b.Title != f.book.Title {
		t.Fatalf("loan save leaked into books: %q", b.Title)
	}
	reread, _ := f.loans.GetByLoanID(ctx, seeded.LoanID)
	if reread.Status != loanDomain.StatusReturned {
		t.Fatalf("loan change lost: %s", reread.Status)
	}
}

func TestLoanRepository_MarkOverdueDueBefore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := t0.Add(30 * 24 * time.Hour)

	pastDue := f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))
	stillGood := f.mkLoan(t, loanDomain.StatusActive, t0, now.Add(d14))
	closed := f.mkLoan(t, loanDomain.StatusReturned, t0, t0.Add(d14))

	n, err := f.loans.MarkOverdueDueBefore(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("first sweep: n=%d err=%v", n, err)
	}
	// set-based update: an immediate rerun changes nothing
	n, err = f.loans.MarkOverdueDueBefore(ctx, now)
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}

	for _, tc := range []struct {
		loanID string
		want   loanDomain.Status
	}{
		{pastDue.LoanID, loanDomain.StatusOverdue},
		{stillGood.LoanID, loanDomain.StatusActive},
		{closed.LoanID, loanDomain.StatusReturned},
	} {
		got, err := f.loans.GetByLoanID(ctx, tc.loanID)
		if err != nil {
			t.Fatalf("GetByLoanID: %v", err)
		}
		if got.Status != tc.want {
			t.Fatalf("loan %s: status = %s, want %s", tc.loanID, got.Status, tc.want)
		}
	}
}

func TestLoanRepository_ListOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := t0.Add(30 * 24 * time.Hour)

	f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))
	if _, err := f.loans.MarkOverdueDueBefore(ctx, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	ls, total, err := f.loans.ListOverdue(ctx, now, 1, 20)
	if err != nil {
		t.Fatalf("ListOverdue: %v", err)
	}
	if total != 1 || len(ls) != 1 || ls[0].Status != loanDomain.StatusOverdue {
		t.Fatalf("total=%d len=%d", total, len(ls))
	}
	if ls[0].Book == nil {
		t.Fatal("associations not preloaded")
	}
}

func TestLoanRepository_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))

	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{"by title fragment", "Data-Intensive", 1},
		{"by accession number", "ACC-1001", 1},
		{"by borrower name", "Asha", 1},
		{"by employee id", "EMP-100", 1},
		{"no match", "Nonexistent", 0},
		{"empty falls back to list", "", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, total, err := f.loans.Search(ctx, tc.query, 1, 20)
			if err != nil {
				t.Fatalf("Search(%q): %v", tc.query, err)
			}
			if total != tc.want {
				t.Fatalf("Search(%q): total = %d, want %d", tc.query, total, tc.want)
			}
		})
	}
}

func TestLoanRepository_ExistsActiveAndCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))
	f.mkLoan(t, loanDomain.StatusReturned, t0.Add(-d14), t0)

	ok, err := f.loans.ExistsActive(ctx, f.book.ID, f.user.ID)
	if err != nil || !ok {
		t.Fatalf("ExistsActive = %v, %v", ok, err)
	}
	ok, err = f.loans.ExistsActive(ctx, f.book.ID, f.issuer.ID)
	if err != nil || ok {
		t.Fatalf("ExistsActive for non-borrower = %v, %v", ok, err)
	}

	n, err := f.loans.CountActiveByUser(ctx, f.user.ID)
	if err != nil || n != 1 {
		t.Fatalf("CountActiveByUser = %d, %v", n, err)
	}
}

func TestLoanRepository_HistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.mkLoan(t, loanDomain.StatusReturned, t0.Add(-60*24*time.Hour), t0.Add(-46*24*time.Hour))
	recent := f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))

	ls, err := f.loans.HistoryByUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("HistoryByUser: %v", err)
	}
	if len(ls) != 2 {
		t.Fatalf("len = %d", len(ls))
	}
	if ls[0].LoanID != recent.LoanID || ls[1].LoanID != old.LoanID {
		t.Fatalf("order: %s, %s", ls[0].LoanID, ls[1].LoanID)
	}
}

func TestLoanRepository_ListPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.mkLoan(t, loanDomain.StatusActive, t0.Add(time.Duration(i)*24*time.Hour), t0.Add(d14))
	}

	page1, total, err := f.loans.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("List p1: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("p1: total=%d len=%d", total, len(page1))
	}
	page3, total, err := f.loans.List(ctx, 3, 2)
	if err != nil {
		t.Fatalf("List p3: %v", err)
	}
	if total != 5 || len(page3) != 1 {
		t.Fatalf("p3: total=%d len=%d", total, len(page3))
	}
	// newest issue first
	if !page1[0].IssueDate.After(page1[1].IssueDate) {
		t.Fatalf("order: %v then %v", page1[0].IssueDate, page1[1].IssueDate)
	}
}

func TestLoanRepository_ListByStatusAndByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mkLoan(t, loanDomain.StatusActive, t0, t0.Add(d14))
	f.mkLoan(t, loanDomain.StatusReturned, t0.Add(-d14), t0)

	_, total, err := f.loans.ListByStatus(ctx, loanDomain.StatusActive, 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("ListByStatus: total=%d err=%v", total, err)
	}
	_, total, err = f.loans.ListByUser(ctx, f.user.ID, 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("ListByUser: total=%d err=%v", total, err)
	}
	_, total, err = f.loans.ListActiveByUser(ctx, f.user.ID, 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("ListActiveByUser: total=%d err=%v", total, err)
	}
	_, total, err = f.loans.ListByBook(ctx, f.book.ID, 1, 20)
	if err != nil || total != 2 {
		t.Fatalf("ListByBook: total=%d err=%v", total, err)
	}
}

func TestBookRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.books.GetByBookIDForUpdate(ctx, f.book.BookID)
	if err != nil {
		t.Fatalf("GetByBookIDForUpdate: %v", err)
	}
	got.AvailableCopies--
	if err := f.books.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reread, err := f.books.GetByIDForUpdate(ctx, f.book.ID)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if reread.AvailableCopies != 1 {
		t.Fatalf("copies = %d, want 1", reread.AvailableCopies)
	}
}

func TestUserRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.users.GetByUserIDForUpdate(ctx, f.user.UserID)
	if err != nil {
		t.Fatalf("GetByUserIDForUpdate: %v", err)
	}
	got.BooksIssued++
	if err := f.users.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reread, err := f.users.GetByUserID(ctx, f.user.UserID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if reread.BooksIssued != 1 {
		t.Fatalf("BooksIssued = %d, want 1", reread.BooksIssued)
	}
	if _, err := f.users.GetByUserID(ctx, id.NewID32()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing user: err = %v", err)
	}
}
