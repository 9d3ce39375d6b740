package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/allocator/internal/database"
)

type payload struct {
	Symbols []string  `msgpack:"symbols"`
	Values  []float64 `msgpack:"values"`
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := New(db.Conn(), zerolog.Nop())
	require.NoError(t, c.Migrate())
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)

	in := payload{Symbols: []string{"A", "B"}, Values: []float64{0.1, 0.9}}
	require.NoError(t, c.Set("risk_model", "abc123", in, time.Hour))

	var out payload
	require.True(t, c.Get("risk_model", "abc123", &out))
	assert.Equal(t, in, out)
}

func TestCacheMiss(t *testing.T) {
	c := newTestCache(t)

	var out payload
	assert.False(t, c.Get("risk_model", "missing", &out))
}

func TestCacheKindsAreIsolated(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("risk_model", "key", payload{Symbols: []string{"A"}}, time.Hour))

	var out payload
	assert.False(t, c.Get("other_kind", "key", &out))
}

func TestCacheExpiry(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("risk_model", "stale", payload{Symbols: []string{"A"}}, -time.Second))

	var out payload
	assert.False(t, c.Get("risk_model", "stale", &out), "expired entries read as misses")

	// The expired row is deleted on read, so a later write starts clean.
	require.NoError(t, c.Set("risk_model", "stale", payload{Symbols: []string{"B"}}, time.Hour))
	require.True(t, c.Get("risk_model", "stale", &out))
	assert.Equal(t, []string{"B"}, out.Symbols)
}

func TestCacheOverwrite(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Set("risk_model", "key", payload{Symbols: []string{"A"}}, time.Hour))
	require.NoError(t, c.Set("risk_model", "key", payload{Symbols: []string{"B"}}, time.Hour))

	var out payload
	require.True(t, c.Get("risk_model", "key", &out))
	assert.Equal(t, []string{"B"}, out.Symbols)
}
