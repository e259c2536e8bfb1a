package store

import (
	"context"
	"sync"
)

// NewInMemoryKV returns a KV backed by an in-memory map, for tests and local
// development without a cache file.
func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{items: make(map[string][]byte)}
}

// InMemoryKV implements KV over a mutex-guarded map.
type InMemoryKV struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
}

// Get returns the value stored under key.
func (s *InMemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Set stores the value under key.
func (s *InMemoryKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.items[key] = cp
	return nil
}

// Delete removes the key.
func (s *InMemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.items, key)
	return nil
}

// Close marks the store closed.
func (s *InMemoryKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
