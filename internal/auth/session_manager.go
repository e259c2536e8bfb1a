package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/everkeep/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided refresh token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// SessionStore persists issued refresh tokens so they can survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, refreshToken string) (Session, error)
	Delete(ctx context.Context, refreshToken string) error
}

// Session represents a refresh token issued after a successful PIN entry.
// The application has a single shared principal, so no subject is recorded.
type Session struct {
	RefreshToken string
	ExpiresAt    time.Time
}

// Manager manages the lifecycle of session tokens issued by the PIN gate.
// Access tokens are held only in memory: like the original client's
// session-scoped storage, they do not survive a restart.
type Manager struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      SessionStore

	mu     sync.Mutex
	access map[string]time.Time
	now    func() time.Time
}

// NewManager constructs a Manager that issues access and refresh tokens with the provided TTLs.
func NewManager(accessTTL, refreshTTL time.Duration, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		access:     make(map[string]time.Time),
		now:        time.Now,
	}
}

// Issue creates a new pair of access and refresh tokens.
func (m *Manager) Issue(ctx context.Context) (models.SessionTokens, error) {
	now := m.now().UTC()

	accessToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}
	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	tokens := models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	if err := m.store.Save(ctx, Session{
		RefreshToken: refreshToken,
		ExpiresAt:    tokens.RefreshExpiresAt,
	}); err != nil {
		return models.SessionTokens{}, err
	}

	m.mu.Lock()
	m.access[accessToken] = tokens.AccessExpiresAt
	m.pruneLocked(now)
	m.mu.Unlock()

	return tokens, nil
}

// Refresh exchanges a refresh token for a new session token pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if m.now().UTC().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, refreshToken)
		return models.SessionTokens{}, ErrRefreshTokenExpired
	}

	if err := m.store.Delete(ctx, refreshToken); err != nil {
		return models.SessionTokens{}, err
	}

	return m.Issue(ctx)
}

// Validate reports whether the provided access token belongs to a live session.
func (m *Manager) Validate(accessToken string) bool {
	if accessToken == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.access[accessToken]
	if !ok {
		return false
	}
	if m.now().UTC().After(expiry) {
		delete(m.access, accessToken)
		return false
	}
	return true
}

// Revoke removes the provided refresh token from the active session store.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	_ = m.store.Delete(ctx, refreshToken)
}

func (m *Manager) pruneLocked(now time.Time) {
	for token, expiry := range m.access {
		if now.After(expiry) {
			delete(m.access, token)
		}
	}
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
