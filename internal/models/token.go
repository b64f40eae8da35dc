package models

import "time"

// RevokedToken records a token id that may never be used again.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// PasswordResetToken is a single-use credential for resetting one user's password.
// Only the SHA-256 digest of the token is stored.
type PasswordResetToken struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);not null;index"`
	TokenHash string `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
