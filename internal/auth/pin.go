package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/everkeep/backend/internal/models"
)

var (
	// ErrInvalidPIN indicates the entered PIN did not match the configured one.
	ErrInvalidPIN = errors.New("incorrect pin")
	// ErrMalformedPIN indicates the entry was not a six-digit code.
	ErrMalformedPIN = errors.New("pin must be six digits")
)

// Gate verifies the shared six-digit PIN and, on success, seeds the remote
// API token store and issues session tokens. It is the only way a session
// comes into existence.
type Gate struct {
	pinHash  string
	pin      string
	apiToken string
	sessions *Manager
	tokens   TokenStore
}

// NewGate constructs a PIN gate. pinHash is a bcrypt hash of the PIN and
// takes precedence; pin is a plain-text fallback for local development.
func NewGate(pinHash, pin, apiToken string, sessions *Manager, tokens TokenStore) *Gate {
	if sessions == nil || tokens == nil {
		panic("auth: gate requires a session manager and a token store")
	}
	return &Gate{
		pinHash:  pinHash,
		pin:      pin,
		apiToken: apiToken,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Unlock checks the entered PIN. A wrong entry leaves no token set and no
// session issued; a correct one stores the remote API bearer token and
// returns fresh session tokens.
func (g *Gate) Unlock(ctx context.Context, entry string) (models.SessionTokens, error) {
	if !validPINFormat(entry) {
		return models.SessionTokens{}, ErrMalformedPIN
	}

	if !g.matches(entry) {
		return models.SessionTokens{}, ErrInvalidPIN
	}

	g.tokens.Set(g.apiToken)

	tokens, err := g.sessions.Issue(ctx)
	if err != nil {
		return models.SessionTokens{}, err
	}
	return tokens, nil
}

func (g *Gate) matches(entry string) bool {
	if g.pinHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.pinHash), []byte(entry)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.pin), []byte(entry)) == 1
}

func validPINFormat(entry string) bool {
	if len(entry) != 6 {
		return false
	}
	for _, r := range entry {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
