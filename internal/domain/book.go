package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog record.
// The (title, code) pair is subject to a uniqueness invariant: no other
// book may share the same title or the same code.
type Book struct {
	// ID is the unique identifier for the book, assigned on creation.
	ID uuid.UUID `json:"id"`

	// Title is the book title. Must be non-empty and unique among books.
	Title string `json:"title"`

	// Code is a catalog/ISBN-like token. Must be non-empty and unique among books.
	Code string `json:"code"`

	// Author is the book author.
	Author string `json:"author"`

	// Description is a free-form description.
	Description string `json:"description"`

	// PublishedYear is the year of publication.
	PublishedYear int `json:"publishedYear"`

	// CreatedAt is the timestamp when the book was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the book was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBook creates a new Book with a fresh identifier and timestamps set.
func NewBook(title, code, author, description string, publishedYear int) *Book {
	now := time.Now().UTC()
	return &Book{
		ID:            uuid.New(),
		Title:         title,
		Code:          code,
		Author:        author,
		Description:   description,
		PublishedYear: publishedYear,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
