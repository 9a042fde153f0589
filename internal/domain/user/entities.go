package user

import (
	"errors"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserID     string `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	EmployeeID string `gorm:"size:64;uniqueIndex:ux_users_employee_id" json:"employee_id"`
	FullName   string `gorm:"size:255;index:idx_users_full_name" json:"full_name"`
	Email      string `gorm:"size:255" json:"email"`
	// BooksIssued is a lifetime activity counter: bumped on every issue,
	// never decremented on return.
	BooksIssued int       `gorm:"not null;default:0" json:"books_issued"`
	Status      Status    `gorm:"type:enum('active','suspended');default:'active'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
