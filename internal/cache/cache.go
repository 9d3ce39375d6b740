// Package cache provides a TTL'd binary cache for expensive calculations.
//
// Values are encoded with msgpack and stored in the cache-profile SQLite
// database. Expiry is lazy: stale rows are deleted when read.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// TTLOptimizer is the lifetime of cached covariance models.
const TTLOptimizer = 24 * time.Hour

// Cache stores calculation results keyed by (kind, key)
type Cache struct {
	db  *sql.DB
	log zerolog.Logger
}

// New creates a new calculation cache
func New(db *sql.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "calc_cache").Logger(),
	}
}

// Migrate creates the calc_cache table if it does not exist
func (c *Cache) Migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS calc_cache (
			kind       TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (kind, key)
		)
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create calc_cache table: %w", err)
	}
	return nil
}

// Get retrieves a cached value into v. Returns false on miss or expiry.
func (c *Cache) Get(kind, key string, v interface{}) bool {
	var blob []byte
	var expiresAt int64

	err := c.db.QueryRow(
		`SELECT value, expires_at FROM calc_cache WHERE kind = ? AND key = ?`,
		kind, key,
	).Scan(&blob, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Warn().Err(err).Str("kind", kind).Msg("Cache read failed")
		}
		return false
	}

	if time.Now().Unix() >= expiresAt {
		// Lazy expiry
		if _, err := c.db.Exec(`DELETE FROM calc_cache WHERE kind = ? AND key = ?`, kind, key); err != nil {
			c.log.Warn().Err(err).Str("kind", kind).Msg("Failed to delete expired cache entry")
		}
		return false
	}

	if err := msgpack.Unmarshal(blob, v); err != nil {
		c.log.Warn().Err(err).Str("kind", kind).Msg("Failed to decode cached value")
		return false
	}

	return true
}

// Set stores a value with the given TTL
func (c *Cache) Set(kind, key string, v interface{}, ttl time.Duration) error {
	blob, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err = c.db.Exec(`
		INSERT INTO calc_cache (kind, key, value, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, kind, key, blob, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}
