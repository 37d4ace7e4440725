package user

import (
	"time"
)

// User represents a registered account. Users are created through signup
// and are immutable from the task subsystem's perspective.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FirstName    string    `gorm:"size:100" json:"firstName"`
	LastName     string    `gorm:"size:100" json:"lastName"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Claims is the identity extracted from a validated access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
