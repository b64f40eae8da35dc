package models

import "time"

// User represents an account that can sign in to the admin backend.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never plaintext
	IsStaff   bool       `json:"is_staff" gorm:"not null;default:false"`
	IsActive  bool       `json:"-" gorm:"not null;default:true"`
	LastLogin *time.Time `json:"-"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}
