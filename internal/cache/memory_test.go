package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 300*time.Second))

	now = now.Add(299 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryEviction(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(2)
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), time.Minute))

	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 2, m.Len())
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory(10)
	require.NoError(t, err)

	type page struct {
		Title string
		Count int
	}

	var got page
	assert.False(t, GetJSON(ctx, m, "page", &got))

	SetJSON(ctx, m, "page", page{Title: "Accueil", Count: 3}, time.Minute)
	require.True(t, GetJSON(ctx, m, "page", &got))
	assert.Equal(t, page{Title: "Accueil", Count: 3}, got)

	require.NoError(t, m.Set(ctx, "broken", []byte("{"), time.Minute))
	assert.False(t, GetJSON(ctx, m, "broken", &got))
}
