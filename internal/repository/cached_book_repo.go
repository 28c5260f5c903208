package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/shelfmark/internal/domain"
)

const (
	bookKeyPrefix = "book:"
	bookListKey   = "books:all"
)

// cachedBookRepository decorates a BookRepository with a read-through cache
// for GetByID and List. Writes invalidate the affected entries. Cache
// failures degrade to the underlying repository and are never surfaced to
// callers.
type cachedBookRepository struct {
	inner  BookRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedBookRepository wraps repo with a caching layer.
func NewCachedBookRepository(repo BookRepository, cache Cache, ttl time.Duration, logger zerolog.Logger) BookRepository {
	return &cachedBookRepository{
		inner:  repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "book_cache").Logger(),
	}
}

func (r *cachedBookRepository) Create(ctx context.Context, book *domain.Book) error {
	if err := r.inner.Create(ctx, book); err != nil {
		return err
	}
	r.invalidate(ctx, bookListKey)
	return nil
}

func (r *cachedBookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	key := bookKeyPrefix + id.String()

	if data, err := r.cache.Get(ctx, key); err == nil {
		var book domain.Book
		if err := json.Unmarshal(data, &book); err == nil {
			return &book, nil
		}
		// Unreadable entry, drop it and fall through.
		r.invalidate(ctx, key)
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}

	book, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(book); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}

	return book, nil
}

func (r *cachedBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	if data, err := r.cache.Get(ctx, bookListKey); err == nil {
		var books []*domain.Book
		if err := json.Unmarshal(data, &books); err == nil {
			return books, nil
		}
		r.invalidate(ctx, bookListKey)
	} else if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn().Err(err).Msg("cache get failed")
	}

	books, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(books); err == nil {
		if err := r.cache.Set(ctx, bookListKey, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("cache set failed")
		}
	}

	return books, nil
}

func (r *cachedBookRepository) Update(ctx context.Context, book *domain.Book) error {
	if err := r.inner.Update(ctx, book); err != nil {
		return err
	}
	r.invalidate(ctx, bookKeyPrefix+book.ID.String(), bookListKey)
	return nil
}

func (r *cachedBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, bookKeyPrefix+id.String(), bookListKey)
	return nil
}

func (r *cachedBookRepository) ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error) {
	// Uniqueness checks always go to the source of truth.
	return r.inner.ExistsConflicting(ctx, title, code, excludeID)
}

func (r *cachedBookRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// Ensure cachedBookRepository implements BookRepository.
var _ BookRepository = (*cachedBookRepository)(nil)
