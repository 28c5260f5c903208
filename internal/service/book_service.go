package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
)

// BookService orchestrates CRUD over the book catalog, enforcing the
// title/code uniqueness invariant and not-found semantics.
type BookService struct {
	bookRepo repository.BookRepository
	logger   zerolog.Logger
}

// NewBookService creates a new BookService.
func NewBookService(bookRepo repository.BookRepository, logger zerolog.Logger) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		logger:   logger.With().Str("service", "book").Logger(),
	}
}

// CreateBookInput contains the data needed to create a book.
type CreateBookInput struct {
	Title         string
	Code          string
	Author        string
	Description   string
	PublishedYear int
}

// Create creates a new book, assigning its identifier.
func (s *BookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	// Check-then-act: the store's unique columns close the race window
	// between this check and the insert.
	conflict, err := s.bookRepo.ExistsConflicting(ctx, input.Title, input.Code, uuid.Nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check book conflict")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if conflict {
		return nil, ErrDuplicateBook
	}

	book := domain.NewBook(input.Title, input.Code, input.Author, input.Description, input.PublishedYear)
	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, domain.ErrBookAlreadyExists) {
			return nil, ErrDuplicateBook
		}
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("book_id", book.ID.String()).
		Str("title", book.Title).
		Str("code", book.Code).
		Msg("book created")

	return book, nil
}

// List returns all books in store-native order. An empty catalog yields an
// empty slice, not an error.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.bookRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list books")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// GetByID retrieves a book by its identifier.
func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return book, nil
}

// UpdateBookInput contains the fields to merge into an existing book.
// Nil fields keep their prior values.
type UpdateBookInput struct {
	Title         *string
	Code          *string
	Author        *string
	Description   *string
	PublishedYear *int
}

// Update merges the supplied fields into the stored record and persists it.
// The uniqueness check excludes the book being updated, so re-submitting a
// book's own title or code succeeds.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to get book for update")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		book.Title = *input.Title
	}
	if input.Code != nil {
		if *input.Code == "" {
			return nil, fmt.Errorf("%w: code must not be empty", ErrInvalidInput)
		}
		book.Code = *input.Code
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.PublishedYear != nil {
		book.PublishedYear = *input.PublishedYear
	}

	conflict, err := s.bookRepo.ExistsConflicting(ctx, book.Title, book.Code, id)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check book conflict")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if conflict {
		return nil, ErrDuplicateBook
	}

	book.UpdatedAt = time.Now().UTC()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrBookNotFound
		case errors.Is(err, domain.ErrBookAlreadyExists):
			return nil, ErrDuplicateBook
		}
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to update book")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("book_id", book.ID.String()).
		Str("title", book.Title).
		Msg("book updated")

	return book, nil
}

// Delete removes a book. Not-found is observed from the delete itself, not
// a pre-check, so a concurrent delete of the same id correctly reports
// ErrBookNotFound for the loser.
func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookNotFound
		}
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("failed to delete book")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("book_id", id.String()).Msg("book deleted")
	return nil
}
