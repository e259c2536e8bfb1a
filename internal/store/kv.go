package store

import (
	"context"
	"errors"
)

// ErrClosed indicates the store has been closed and can no longer serve reads or writes.
var ErrClosed = errors.New("kv store closed")

// KV is a persistent key-value store shared by independent features (query
// cache payloads, synthesized thumbnails, feature markers). Features avoid
// collisions by key-prefix convention; the store itself enforces nothing.
type KV interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the value under the key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
