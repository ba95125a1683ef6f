package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an internal admin account. There is no self-serve signup;
// accounts are seeded and log in via /auth/login.
type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Bumped to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`
}

// RefreshToken stores issued refresh tokens so they can be revoked
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
