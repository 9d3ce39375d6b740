package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, profile Profile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "test.db"),
		Profile: profile,
		Name:    "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewCreatesDatabase(t *testing.T) {
	db := newTestDB(t, ProfileStandard)

	assert.Equal(t, "test", db.Name())
	assert.NotEmpty(t, db.Path())
	require.NoError(t, db.HealthCheck(context.Background()))
}

func TestNewDefaultsToStandardProfile(t *testing.T) {
	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
		Name: "test",
	})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.profile)
}

func TestWithTransactionCommits(t *testing.T) {
	db := newTestDB(t, ProfileStandard)
	conn := db.Conn()

	_, err := conn.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	err = WithTransaction(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES (?)`, "one")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := newTestDB(t, ProfileStandard)
	conn := db.Conn()

	_, err := conn.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	err = WithTransaction(conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES (?)`, "one"); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransactionRecoversPanic(t *testing.T) {
	db := newTestDB(t, ProfileStandard)

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

func TestWithTransactionNilDB(t *testing.T) {
	err := WithTransaction(nil, func(tx *sql.Tx) error { return nil })
	assert.Error(t, err)
}
