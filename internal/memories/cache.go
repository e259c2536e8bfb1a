package memories

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/store"
)

// Cache is a keyed read-through query cache. Entries younger than the
// staleness window are served directly; stale entries are served immediately
// while one background refresh runs; a cold key blocks on the fetch.
// Concurrent callers for the same key share a single in-flight fetch, and
// each fetch carries a per-key sequence number so a slow response can never
// overwrite the result of a newer one.
//
// Selected keys are duplicated into the persistent store so a restarted
// process has an answer before its first network round-trip, the way the
// original gallery painted from local storage.
type Cache struct {
	staleTime time.Duration
	kv        store.KV
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	payload   any
	fetchedAt time.Time
	issued    uint64
	accepted  uint64
	loaded    bool // persistent copy already consulted
}

// persistedEntry is the envelope written to the persistent store.
type persistedEntry struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Payload   json.RawMessage `json:"payload"`
}

// NewCache constructs a Cache with the provided default staleness window.
// kv may be nil, in which case nothing is persisted.
func NewCache(staleTime time.Duration, kv store.KV) *Cache {
	if staleTime <= 0 {
		staleTime = 2 * time.Hour
	}
	return &Cache{
		staleTime: staleTime,
		kv:        kv,
		now:       time.Now,
		entries:   make(map[string]*cacheEntry),
	}
}

// QueryOptions adjusts how a single logical query is cached.
type QueryOptions[T any] struct {
	// StaleTime overrides the cache-wide staleness window when positive.
	StaleTime time.Duration
	// Persist duplicates accepted payloads into the persistent store.
	Persist bool
	// Reconcile merges a fresh payload with the previously cached one. It
	// must return the cached value unchanged when nothing material differs.
	Reconcile func(cached, fresh T) T
}

// Query returns the cached payload for key, fetching through fetch as the
// staleness policy demands. A stale payload is returned immediately while a
// refresh proceeds in the background; a failed refresh keeps the stale
// payload in place. Only a cold start with a failing fetch surfaces an error.
func Query[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error), opts QueryOptions[T]) (T, error) {
	staleTime := opts.StaleTime
	if staleTime <= 0 {
		staleTime = c.staleTime
	}

	reconcile := func(cached, fresh any) any {
		if opts.Reconcile == nil {
			return fresh
		}
		prev, ok := cached.(T)
		if !ok {
			return fresh
		}
		return opts.Reconcile(prev, fresh.(T))
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if !e.loaded {
		e.loaded = true
		if opts.Persist {
			c.loadPersistedLocked(ctx, key, e, func(raw json.RawMessage) (any, bool) {
				var value T
				if err := json.Unmarshal(raw, &value); err != nil {
					return nil, false
				}
				return value, true
			})
		}
	}

	if e.payload != nil {
		payload := e.payload.(T)
		age := c.now().Sub(e.fetchedAt)
		if age < staleTime {
			c.mu.Unlock()
			return payload, nil
		}

		// Serve stale, refresh behind the caller's back.
		e.issued++
		seq := e.issued
		c.mu.Unlock()

		go c.refresh(key, seq, func() (any, error) {
			v, err := fetch(context.Background())
			return v, err
		}, reconcile, opts.Persist)

		return payload, nil
	}

	e.issued++
	seq := e.issued
	c.mu.Unlock()

	value, err, _ := c.group.Do(key, func() (any, error) {
		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return c.accept(key, seq, fresh, reconcile, opts.Persist), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return value.(T), nil
}

// Invalidate drops the in-memory entry and its persistent copy, forcing the
// next Query to fetch. Used after successful mutations.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if c.kv == nil {
		return
	}
	for _, key := range keys {
		if err := c.kv.Delete(ctx, key); err != nil {
			logging.FromContext(ctx).Debug("invalidate persisted entry", "key", key, "error", err)
		}
	}
}

func (c *Cache) entryLocked(key string) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) loadPersistedLocked(ctx context.Context, key string, e *cacheEntry, decode func(json.RawMessage) (any, bool)) {
	if c.kv == nil {
		return
	}
	envelope, ok := store.ReadJSON[persistedEntry](ctx, c.kv, key)
	if !ok {
		return
	}
	payload, ok := decode(envelope.Payload)
	if !ok {
		return
	}
	e.payload = payload
	e.fetchedAt = envelope.FetchedAt
}

func (c *Cache) refresh(key string, seq uint64, fetch func() (any, error), reconcile func(cached, fresh any) any, persist bool) {
	_, err, _ := c.group.Do(key+"\x00refresh", func() (any, error) {
		fresh, err := fetch()
		if err != nil {
			return nil, err
		}
		return c.accept(key, seq, fresh, reconcile, persist), nil
	})
	if err != nil {
		// Stale-while-error: the previous payload stays in place.
		slog.Warn("background refresh failed", "key", key, "error", err)
	}
}

// accept installs a fetched payload unless a newer fetch for the key has
// already been accepted, in which case the response is discarded.
func (c *Cache) accept(key string, seq uint64, fresh any, reconcile func(cached, fresh any) any, persist bool) any {
	c.mu.Lock()
	e := c.entryLocked(key)

	if e.payload != nil && seq <= e.accepted {
		stale := e.payload
		c.mu.Unlock()
		return stale
	}

	value := fresh
	if e.payload != nil {
		value = reconcile(e.payload, fresh)
	}
	e.payload = value
	e.fetchedAt = c.now()
	e.accepted = seq
	fetchedAt := e.fetchedAt
	c.mu.Unlock()

	if persist && c.kv != nil {
		if raw, err := json.Marshal(value); err == nil {
			store.WriteJSON(context.Background(), c.kv, key, persistedEntry{FetchedAt: fetchedAt, Payload: raw})
		}
	}

	return value
}
