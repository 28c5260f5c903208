package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shelfmark/internal/repository"
)

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Set(ctx, "k", []byte("value"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestGetMiss(t *testing.T) {
	c := New()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	require.NoError(t, c.Delete(ctx, "a", "b", "absent"))

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
	assert.Equal(t, 0, c.Len())
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c := New()

	require.NoError(t, c.Set(ctx, "k", []byte("value"), 10*time.Millisecond))

	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestValueIsolation(t *testing.T) {
	ctx := context.Background()
	c := New()

	original := []byte("value")
	require.NoError(t, c.Set(ctx, "k", original, 0))

	// Mutating either side must not affect the stored entry.
	original[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	got[0] = 'Y'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), again)
}
