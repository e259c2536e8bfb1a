package store

import (
	"context"
	"encoding/json"
	"log/slog"
)

// ReadJSON loads and decodes the value stored under key. It never fails
// outward: a missing key, a driver error, or a malformed payload all degrade
// to the zero value with ok=false, logged at debug level. Callers are
// responsible for structural compatibility of whatever was persisted.
func ReadJSON[T any](ctx context.Context, kv KV, key string) (T, bool) {
	var zero T
	if kv == nil {
		return zero, false
	}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		slog.Debug("kv read failed", "key", key, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.Debug("kv payload malformed", "key", key, "error", err)
		return zero, false
	}

	return value, true
}

// WriteJSON encodes and stores the value under key. Failures are logged and
// swallowed: the persistent copy is a best-effort warm-start optimization, so
// a full store or serialization error must never break the caller.
func WriteJSON[T any](ctx context.Context, kv KV, key string, value T) {
	if kv == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Debug("kv payload encode failed", "key", key, "error", err)
		return
	}

	if err := kv.Set(ctx, key, raw); err != nil {
		slog.Debug("kv write failed", "key", key, "error", err)
	}
}
