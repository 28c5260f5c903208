// Package domain contains the core business entities for Shelfmark.
package domain

import (
	"errors"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBookNotFound indicates the requested book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookAlreadyExists indicates another book shares the same title or code.
	ErrBookAlreadyExists = errors.New("book with this title or code already exists")

	// ErrNoToken indicates a protected request carried no bearer token.
	ErrNoToken = errors.New("no token provided")

	// ErrInvalidToken indicates the bearer token failed verification,
	// is expired, or carries an unusable payload.
	ErrInvalidToken = errors.New("invalid token")
)
