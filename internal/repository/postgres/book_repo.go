package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
)

// bookRepository implements repository.BookRepository for PostgreSQL.
type bookRepository struct {
	db *DB
}

// NewBookRepository creates a new PostgreSQL book repository.
func NewBookRepository(db *DB) repository.BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, code, author, description, published_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Code,
		book.Author,
		book.Description,
		book.PublishedYear,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: title %q or code %q", domain.ErrBookAlreadyExists, book.Title, book.Code)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by ID.
func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `
		SELECT id, title, code, author, description, published_year, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	book := &domain.Book{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Code,
		&book.Author,
		&book.Description,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}

	return book, nil
}

// List returns all books in store-native order.
func (r *bookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	query := `
		SELECT id, title, code, author, description, published_year, created_at, updated_at
		FROM books
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Code,
			&book.Author,
			&book.Description,
			&book.PublishedYear,
			&book.CreatedAt,
			&book.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// Update replaces the stored record for book.ID.
func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $1, code = $2, author = $3, description = $4, published_year = $5, updated_at = $6
		WHERE id = $7
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		book.Title,
		book.Code,
		book.Author,
		book.Description,
		book.PublishedYear,
		book.UpdatedAt,
		book.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: title %q or code %q", domain.ErrBookAlreadyExists, book.Title, book.Code)
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a book by ID. NotFound is observed from zero rows affected.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ExistsConflicting reports whether any book other than excludeID has the
// given title or code.
func (r *bookRepository) ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM books
			WHERE (title = $1 OR code = $2) AND id != $3
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, title, code, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check book conflict: %w", err)
	}
	return exists, nil
}

// Ensure bookRepository implements repository.BookRepository.
var _ repository.BookRepository = (*bookRepository)(nil)
