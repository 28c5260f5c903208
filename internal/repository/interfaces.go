// Package repository defines data access interfaces for Shelfmark.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/prn-tf/shelfmark/internal/domain"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. Returns domain.ErrUserAlreadyExists if the
	// username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// List returns all users in creation order.
	List(ctx context.Context) ([]*domain.User, error)
}

// BookRepository defines the interface for book data access.
type BookRepository interface {
	// Create creates a new book. Returns domain.ErrBookAlreadyExists if the
	// title or code collides with an existing book.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// List returns all books in store-native order.
	List(ctx context.Context) ([]*domain.Book, error)

	// Update replaces the stored record for book.ID. Returns ErrNotFound if
	// the book does not exist, or domain.ErrBookAlreadyExists on a title/code
	// collision with a different book.
	Update(ctx context.Context, book *domain.Book) error

	// Delete deletes a book by ID. Returns ErrNotFound if no rows were
	// affected; there is no pre-check.
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsConflicting reports whether any book other than excludeID has
	// the given title or code. A nil uuid excludes nothing.
	ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error)
}
