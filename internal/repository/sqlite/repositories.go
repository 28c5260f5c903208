package sqlite

import (
	"github.com/prn-tf/shelfmark/internal/repository"
)

// NewRepositories builds the full repository set backed by db.
func NewRepositories(db *DB) *repository.Repositories {
	return &repository.Repositories{
		User: NewUserRepository(db),
		Book: NewBookRepository(db),
	}
}
