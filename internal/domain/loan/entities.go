package loan

import (
	"errors"
	"time"

	"github.com/vasujain275/shelfwise/internal/domain/book"
	"github.com/vasujain275/shelfwise/internal/domain/user"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned" // terminal
)

var (
	ErrNotFound = errors.New("loan not found")
	// ErrNotActive: the loan state forbids the requested transition
	// (returning an already-returned loan, renewing a non-active one).
	ErrNotActive = errors.New("loan is not active")
	// ErrReferenceOnly: the book does not circulate.
	ErrReferenceOnly     = errors.New("book is for reference only")
	ErrNoCopiesAvailable = errors.New("no copies available")
	ErrBookNotAvailable  = errors.New("book is not in an available state")
	// ErrDueDateRegression: a renewal may only push the due date forward.
	ErrDueDateRegression = errors.New("new due date is before the current due date")
	// ErrTxConflict: a storage-level conflict (deadlock, lock wait) that
	// survived the internal retries. Safe for the caller to retry.
	ErrTxConflict = errors.New("transaction conflict, retry the request")
)

type Loan struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`

	BookID       uint64  `gorm:"not null;index:idx_loans_book;index:idx_loans_book_user,priority:1" json:"-"`
	UserID       uint64  `gorm:"not null;index:idx_loans_user;index:idx_loans_book_user,priority:2" json:"-"`
	IssuedByID   uint64  `gorm:"not null" json:"-"`
	ReturnedToID *uint64 `json:"-"`

	IssueDate  time.Time  `gorm:"not null;index:idx_loans_issue_date" json:"issue_date"`
	DueDate    time.Time  `gorm:"not null;index:idx_loans_status_due,priority:2" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`

	RenewalCount int    `gorm:"not null;default:0" json:"renewal_count"`
	Status       Status `gorm:"type:enum('active','overdue','returned');default:'active';index:idx_loans_status_due,priority:1" json:"status"`
	Notes        string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// foreignKey alone is ambiguous here: book.Book and user.User carry
	// their public-id fields under the same names, and the relation
	// guesser would resolve these as has-one against those columns.
	// references:ID pins both as belongs-to via loans.book_id/user_id.
	Book       *book.Book `gorm:"belongsTo;foreignKey:BookID;references:ID" json:"-"`
	User       *user.User `gorm:"belongsTo;foreignKey:UserID;references:ID" json:"-"`
	IssuedBy   *user.User `gorm:"foreignKey:IssuedByID" json:"-"`
	ReturnedTo *user.User `gorm:"foreignKey:ReturnedToID" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Open reports whether the loan still holds a copy out of circulation.
func (l *Loan) Open() bool { return l.Status == StatusActive || l.Status == StatusOverdue }
