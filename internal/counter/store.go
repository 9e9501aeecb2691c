// Package counter serves the shared click count: GET /count returns it and
// PUT /count/ increments it. The database is the single source of truth;
// every increment is one atomic statement that returns the new value.
package counter

import (
	"context"
	"fmt"

	"github.com/barelyfunctional/site/internal/db"
)

// Store persists the click count.
type Store interface {
	Get(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
}

// SQLiteStore keeps the count in the site's SQLite database.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Get returns the current count.
func (s *SQLiteStore) Get(ctx context.Context) (int64, error) {
	var clicks int64
	err := s.db.QueryRowContext(ctx, `SELECT clicks FROM counts WHERE id = 1`).Scan(&clicks)
	if err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return clicks, nil
}

// Increment adds one to the count and returns the new value.
func (s *SQLiteStore) Increment(ctx context.Context) (int64, error) {
	var clicks int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO counts (id, clicks) VALUES (1, 1)
		 ON CONFLICT(id) DO UPDATE SET clicks = clicks + 1, updated_at = datetime('now')
		 RETURNING clicks`,
	).Scan(&clicks)
	if err != nil {
		return 0, fmt.Errorf("incrementing count: %w", err)
	}
	return clicks, nil
}
