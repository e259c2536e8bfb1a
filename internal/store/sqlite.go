package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteKV implements KV over a single-file SQLite database. It is the
// default persistent store, playing the role browser local storage played for
// the original client: a per-device cache that survives restarts.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens (or creates) the cache database at path.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// A local cache file has exactly one writer: this process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS kv_entries (
            key        TEXT PRIMARY KEY,
            value      BLOB NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure kv_entries table: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select kv entry: %w", err)
	}
	return value, true, nil
}

// Set stores the value under key, replacing any previous value.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO kv_entries (key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT (key)
        DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
    `, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

// Delete removes the key.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

var _ KV = (*SQLiteKV)(nil)
