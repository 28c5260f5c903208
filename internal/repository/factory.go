// Package repository provides the data access layer for Shelfmark.
package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User UserRepository
	Book BookRepository
}

// Database is the subset of a database handle needed by callers that wire
// repositories: health checks, migrations, and teardown. Both the postgres
// and sqlite handles satisfy it.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
