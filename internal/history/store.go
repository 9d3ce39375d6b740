// Package history provides access to historical daily price data.
package history

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/allocator/internal/database"
)

// DailyClose represents a single daily closing price observation.
type DailyClose struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// Store provides access to historical price data
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new price history store
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}
}

// Migrate creates the daily_prices table if it does not exist
func (s *Store) Migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS daily_prices (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create daily_prices table: %w", err)
	}
	return nil
}

// SaveDailyCloses upserts daily closing prices for a symbol
func (s *Store) SaveDailyCloses(symbol string, closes []DailyClose) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO daily_prices (symbol, date, close)
			VALUES (?, ?, ?)
			ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, c := range closes {
			if _, err := stmt.Exec(symbol, c.Date, c.Close); err != nil {
				return fmt.Errorf("failed to upsert price for %s on %s: %w", symbol, c.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().
		Str("symbol", symbol).
		Int("num_prices", len(closes)).
		Msg("Saved daily closes")

	return nil
}

// DailyCloses fetches the most recent daily closing prices for a symbol,
// returned in ascending date order. limit <= 0 means no limit.
// Implements optimization.PriceSource.
func (s *Store) DailyCloses(symbol string, limit int) ([]float64, error) {
	query := `
		SELECT close
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
	`
	args := []interface{}{symbol}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	// Query is newest-first for the LIMIT; callers want chronological order.
	for i, j := 0, len(closes)-1; i < j; i, j = i+1, j-1 {
		closes[i], closes[j] = closes[j], closes[i]
	}

	return closes, nil
}

// Symbols returns the distinct symbols present in the store.
func (s *Store) Symbols() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}
