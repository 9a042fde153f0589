package book

import (
	"errors"
	"time"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusIssued    Status = "issued" // every copy is out on loan
	StatusLost      Status = "lost"
	StatusDamaged   Status = "damaged"
)

var ErrNotFound = errors.New("book not found")

type Book struct {
	ID              uint64    `gorm:"primaryKey;column:id" json:"-"`
	BookID          string    `gorm:"size:32;uniqueIndex:ux_books_book_id" json:"book_id"`
	AccessionNumber string    `gorm:"size:64;uniqueIndex:ux_books_accession" json:"accession_number"`
	Title           string    `gorm:"size:255;index:idx_books_title" json:"title"`
	AuthorPrimary   string    `gorm:"size:255" json:"author_primary"`
	TotalCopies     int       `gorm:"not null;default:1" json:"total_copies"`
	AvailableCopies int       `gorm:"not null;default:1" json:"available_copies"`
	Status          Status    `gorm:"type:enum('available','issued','lost','damaged');default:'available'" json:"status"`
	ReferenceOnly   bool      `gorm:"not null;default:false" json:"reference_only"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Book) TableName() string { return "books" }
