package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
)

// bookRepository implements repository.BookRepository for SQLite.
type bookRepository struct {
	db *DB
}

// NewBookRepository creates a new SQLite book repository.
func NewBookRepository(db *DB) repository.BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, code, author, description, published_year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		book.ID.String(),
		book.Title,
		book.Code,
		book.Author,
		book.Description,
		book.PublishedYear,
		book.CreatedAt.Format(time.RFC3339),
		book.UpdatedAt.Format(time.RFC3339),
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
		WHERE id = ?
	`

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if isNoRows(err) {
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

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
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
		SET title = ?, code = ?, author = ?, description = ?, published_year = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		book.Title,
		book.Code,
		book.Author,
		book.Description,
		book.PublishedYear,
		book.UpdatedAt.Format(time.RFC3339),
		book.ID.String(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: title %q or code %q", domain.ErrBookAlreadyExists, book.Title, book.Code)
		}
		return fmt.Errorf("failed to update book: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete deletes a book by ID. NotFound is observed from zero rows affected.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ExistsConflicting reports whether any book other than excludeID has the
// given title or code.
func (r *bookRepository) ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM books WHERE (title = ? OR code = ?) AND id != ?`

	exclude := ""
	if excludeID != uuid.Nil {
		exclude = excludeID.String()
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, title, code, exclude).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check book conflict: %w", err)
	}
	return count > 0, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	book := &domain.Book{}
	var id, createdAt, updatedAt string

	err := row.Scan(
		&id,
		&book.Title,
		&book.Code,
		&book.Author,
		&book.Description,
		&book.PublishedYear,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	book.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid book ID %q: %w", id, err)
	}
	book.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	book.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return book, nil
}

var (
	_ repository.BookRepository = (*bookRepository)(nil)
	_ rowScanner                = (*sql.Row)(nil)
	_ rowScanner                = (*sql.Rows)(nil)
)
