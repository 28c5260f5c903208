// Package service provides the business logic for Shelfmark.
package service

import "errors"

// Common service errors.
var (
	// Authentication errors
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Book errors
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateBook = errors.New("book with this title or code already exists")

	// Input validation errors
	ErrInvalidInput = errors.New("invalid input")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
