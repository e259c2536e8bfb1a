package markers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/everkeep/backend/internal/store"
)

// Name identifies one of the fixed feature markers the app persists between
// sessions. The set is closed: unknown names are rejected at the edge instead
// of silently creating new keys.
type Name string

const (
	LastChallenge       Name = "lastChallenge"
	LastLoveConfession  Name = "lastLoveConfession"
	PendingConfession   Name = "pendingConfession"
	ConfessionStartTime Name = "confessionStartTime"
)

var known = map[Name]struct{}{
	LastChallenge:       {},
	LastLoveConfession:  {},
	PendingConfession:   {},
	ConfessionStartTime: {},
}

// ParseName validates a marker name received over the wire.
func ParseName(s string) (Name, error) {
	name := Name(s)
	if _, ok := known[name]; !ok {
		return "", fmt.Errorf("unknown marker %q", s)
	}
	return name, nil
}

// Names returns every known marker name.
func Names() []Name {
	return []Name{LastChallenge, LastLoveConfession, PendingConfession, ConfessionStartTime}
}

// Store persists marker values in the key-value store under a shared prefix.
type Store struct {
	kv store.KV
}

// NewStore wraps the key-value store for marker access.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Get reads a marker value. A missing or unreadable marker reads as absent;
// markers are convenience state and never block a feature.
func (s *Store) Get(ctx context.Context, name Name) (string, bool) {
	value, found := store.ReadJSON[string](ctx, s.kv, key(name))
	if !found {
		return "", false
	}
	return value, true
}

// Set writes a marker value. Unlike cache writes this reports failure: the
// caller asked for the state to stick.
func (s *Store) Set(ctx context.Context, name Name, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode marker %s: %w", name, err)
	}
	if err := s.kv.Set(ctx, key(name), raw); err != nil {
		return fmt.Errorf("set marker %s: %w", name, err)
	}
	return nil
}

// Clear removes a marker.
func (s *Store) Clear(ctx context.Context, name Name) error {
	return s.kv.Delete(ctx, key(name))
}

func key(name Name) string {
	return "marker:" + string(name)
}
