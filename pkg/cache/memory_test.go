package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetDelete(t *testing.T) {
	c := NewMemory(10, 0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "summary", time.Minute))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "summary", v)

	require.NoError(t, c.Delete(ctx, "a"))
	_, ok, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(10, 0)
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)

	c.deleteExpired()
	assert.Equal(t, 0, c.Count())
}

func TestMemoryEvictsWhenFull(t *testing.T) {
	c := NewMemory(2, 0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "soon", "1", time.Second))
	require.NoError(t, c.Set(ctx, "later", "2", time.Hour))
	require.NoError(t, c.Set(ctx, "new", "3", time.Hour))

	assert.Equal(t, 2, c.Count())
	_, ok, _ := c.Get(ctx, "soon")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "new")
	assert.True(t, ok)
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.Set(context.Background(), "k", "v", time.Minute))
	_, ok, err := s.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
