package ledger

import "time"

type IssueInput struct {
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	IssuerID  string    `json:"issuer_id"`
	IssueDate time.Time `json:"issue_date"`
	DueDate   time.Time `json:"due_date"`
	Notes     string    `json:"notes"`
}

type ReturnInput struct {
	LoanID     string `json:"loan_id"`
	ReturnerID string `json:"returner_id"`
	Notes      string `json:"notes"`
}

type RenewInput struct {
	LoanID     string    `json:"loan_id"`
	NewDueDate time.Time `json:"new_due_date"`
	Notes      string    `json:"notes"`
}

// LoanDTO is the transfer shape: the loan row flattened together with the
// book and user fields the HTTP layer renders.
type LoanDTO struct {
	LoanID          string     `json:"loan_id"`
	BookID          string     `json:"book_id"`
	BookTitle       string     `json:"book_title"`
	AccessionNumber string     `json:"accession_number"`
	UserID          string     `json:"user_id"`
	EmployeeID      string     `json:"employee_id"`
	UserFullName    string     `json:"user_full_name"`
	IssueDate       time.Time  `json:"issue_date"`
	DueDate         time.Time  `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	RenewalCount    int        `json:"renewal_count"`
	IssuedByID      string     `json:"issued_by_id"`
	IssuedByName    string     `json:"issued_by_name"`
	ReturnedToID    string     `json:"returned_to_id,omitempty"`
	ReturnedToName  string     `json:"returned_to_name,omitempty"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
}

type Page struct {
	Items []LoanDTO `json:"items"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Total int64     `json:"total"`
}

type BatchResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids"`
}
