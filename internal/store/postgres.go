package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/everkeep/backend/internal/db"
)

// PostgresKV implements KV on top of PostgreSQL, for deployments where the
// gateway runs next to an existing database instead of keeping a local cache
// file.
type PostgresKV struct {
	pool db.Pool
}

// NewPostgresKV constructs a KV backed by the provided connection pool. The
// kv_entries table must exist; EnsureSchema creates it.
func NewPostgresKV(pool db.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// EnsureSchema creates the kv_entries table when it is missing.
func (s *PostgresKV) EnsureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS kv_entries (
            key        TEXT PRIMARY KEY,
            value      BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )
    `); err != nil {
		return fmt.Errorf("ensure kv_entries table: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var value []byte
	err = conn.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select kv entry: %w", err)
	}
	return value, true, nil
}

// Set stores the value under key, replacing any previous value.
func (s *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        INSERT INTO kv_entries (key, value, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

// Delete removes the key.
func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned and closed by the caller.
func (s *PostgresKV) Close() error {
	return nil
}

var _ KV = (*PostgresKV)(nil)
