package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Delete(ctx, "k"))
	ok, err = m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(time.Hour)

	_, err := m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type lookup struct {
		Valid bool   `json:"valid"`
		Name  string `json:"name"`
	}

	require.NoError(t, SetJSON(ctx, m, "acme.com", lookup{Valid: true, Name: "Acme"}, time.Hour))

	var got lookup
	require.NoError(t, GetJSON(ctx, m, "acme.com", &got))
	assert.Equal(t, lookup{Valid: true, Name: "Acme"}, got)

	assert.ErrorIs(t, GetJSON(ctx, m, "other.com", &got), ErrMiss)

	require.NoError(t, m.Set(ctx, "bad", []byte("{"), 0))
	assert.Error(t, GetJSON(ctx, m, "bad", &got))
}
