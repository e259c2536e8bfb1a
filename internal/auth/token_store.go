package auth

import "sync"

// TokenStore holds the bearer token used against the remote memories API. It
// is session-scoped: seeded when the PIN gate unlocks, cleared whenever the
// remote API rejects the token, gone when the process exits.
type TokenStore interface {
	// Token returns the current bearer token and whether one is set.
	Token() (string, bool)
	Set(token string)
	Clear()
}

// NewMemoryTokenStore returns an empty in-memory TokenStore.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// MemoryTokenStore implements TokenStore over a mutex-guarded string.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current bearer token and whether one is set.
func (s *MemoryTokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the stored token.
func (s *MemoryTokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear removes the stored token.
func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
