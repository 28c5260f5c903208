// Package domain contains the core business entities for Shelfmark.
// These are pure Go structs with no external dependencies beyond identifiers,
// representing the fundamental concepts of the book catalog.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// Users authenticate with username/password and receive a bearer token.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique username for login.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with timestamps set.
func NewUser(username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
