package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shelfmark/internal/cache/memory"
	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
)

// countingBookRepo records how often each read path hits the store.
type countingBookRepo struct {
	books map[uuid.UUID]*domain.Book

	getCalls    int
	listCalls   int
	existsCalls int
}

func newCountingBookRepo() *countingBookRepo {
	return &countingBookRepo{books: make(map[uuid.UUID]*domain.Book)}
}

func (r *countingBookRepo) Create(ctx context.Context, book *domain.Book) error {
	stored := *book
	r.books[book.ID] = &stored
	return nil
}

func (r *countingBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	r.getCalls++
	if b, ok := r.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *countingBookRepo) List(ctx context.Context) ([]*domain.Book, error) {
	r.listCalls++
	var books []*domain.Book
	for _, b := range r.books {
		copied := *b
		books = append(books, &copied)
	}
	return books, nil
}

func (r *countingBookRepo) Update(ctx context.Context, book *domain.Book) error {
	if _, ok := r.books[book.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *book
	r.books[book.ID] = &stored
	return nil
}

func (r *countingBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.books[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *countingBookRepo) ExistsConflicting(ctx context.Context, title, code string, excludeID uuid.UUID) (bool, error) {
	r.existsCalls++
	for _, b := range r.books {
		if b.ID == excludeID {
			continue
		}
		if b.Title == title || b.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func newCachedRepo(t *testing.T) (*countingBookRepo, repository.BookRepository) {
	t.Helper()
	inner := newCountingBookRepo()
	cached := repository.NewCachedBookRepository(inner, memory.New(), time.Minute, zerolog.Nop())
	return inner, cached
}

func TestCachedGetByID(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedRepo(t)

	book := domain.NewBook("Dune", "SF-001", "Frank Herbert", "", 1965)
	require.NoError(t, cached.Create(ctx, book))

	first, err := cached.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.getCalls)

	second, err := cached.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.getCalls, "second read should be served from cache")
	assert.Equal(t, first.Title, second.Title)
}

func TestCachedGetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	_, cached := newCachedRepo(t)

	_, err := cached.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCachedList(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedRepo(t)

	require.NoError(t, cached.Create(ctx, domain.NewBook("Dune", "SF-001", "", "", 1965)))

	books, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, inner.listCalls)

	_, err = cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.listCalls, "second list should be served from cache")
}

func TestCachedCreateInvalidatesList(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedRepo(t)

	_, err := cached.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inner.listCalls)

	require.NoError(t, cached.Create(ctx, domain.NewBook("Dune", "SF-001", "", "", 1965)))

	books, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.Equal(t, 2, inner.listCalls, "create should drop the cached list")
}

func TestCachedUpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedRepo(t)

	book := domain.NewBook("Dune", "SF-001", "", "", 1965)
	require.NoError(t, cached.Create(ctx, book))

	_, err := cached.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, inner.getCalls)

	book.Title = "Dune Messiah"
	require.NoError(t, cached.Update(ctx, book))

	updated, err := cached.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, 2, inner.getCalls, "update should drop the cached entry")
}

func TestCachedDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	_, cached := newCachedRepo(t)

	book := domain.NewBook("Dune", "SF-001", "", "", 1965)
	require.NoError(t, cached.Create(ctx, book))

	_, err := cached.GetByID(ctx, book.ID)
	require.NoError(t, err)

	require.NoError(t, cached.Delete(ctx, book.ID))

	_, err = cached.GetByID(ctx, book.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCachedExistsConflictingBypassesCache(t *testing.T) {
	ctx := context.Background()
	inner, cached := newCachedRepo(t)

	require.NoError(t, cached.Create(ctx, domain.NewBook("Dune", "SF-001", "", "", 1965)))

	for i := 0; i < 3; i++ {
		exists, err := cached.ExistsConflicting(ctx, "Dune", "other", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)
	}
	assert.Equal(t, 3, inner.existsCalls, "uniqueness checks always hit the store")
}
