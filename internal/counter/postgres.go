package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of *pgxpool.Pool the store needs.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS counts (
    id INTEGER PRIMARY KEY,
    clicks BIGINT NOT NULL DEFAULT 0 CHECK (clicks >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps the count in Postgres.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore wraps an existing pool. Call Migrate before first use.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens a pool for dsn and prepares the counts table.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, *PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging postgres: %w", err)
	}

	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, store, nil
}

// Migrate creates the counts table and its single row.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating counts table: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO counts (id, clicks) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`); err != nil {
		return fmt.Errorf("seeding counts table: %w", err)
	}
	return nil
}

// Get returns the current count.
func (s *PostgresStore) Get(ctx context.Context) (int64, error) {
	var clicks int64
	if err := s.pool.QueryRow(ctx, `SELECT clicks FROM counts WHERE id = 1`).Scan(&clicks); err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return clicks, nil
}

// Increment adds one to the count and returns the new value.
func (s *PostgresStore) Increment(ctx context.Context) (int64, error) {
	var clicks int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO counts (id, clicks) VALUES (1, 1)
		 ON CONFLICT (id) DO UPDATE SET clicks = counts.clicks + 1, updated_at = now()
		 RETURNING clicks`,
	).Scan(&clicks)
	if err != nil {
		return 0, fmt.Errorf("incrementing count: %w", err)
	}
	return clicks, nil
}
