package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/everkeep/backend/internal/auth"
	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/models"
)

// AuthHandler implements the PIN gate endpoints.
type AuthHandler struct {
	Gate     PINGate
	Sessions SessionManager
	Limiter  RateLimiter
}

// Pin handles POST /api/v1/auth/pin requests.
func (h AuthHandler) Pin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Gate == nil {
		logger.Error("pin gate unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "pin") {
		logger.Warn("pin attempts rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, slow down"})
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid pin payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tokens, err := h.Gate.Unlock(ctx, strings.TrimSpace(req.PIN))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMalformedPIN):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"field": "pin", "error": "PIN must be six digits"})
		case errors.Is(err, auth.ErrInvalidPIN):
			logger.Warn("pin rejected", "ip", clientIP(r))
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"field": "pin", "error": "incorrect PIN"})
		default:
			logger.Error("pin unlock failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokens})
}

// Refresh exchanges a refresh token for a new session.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		logger.Warn("missing refresh token")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "refresh token is required"})
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			status = http.StatusUnauthorized
		}
		logger.Warn("refresh failed", "error", err, "status", status)
		respondJSON(ctx, w, status, map[string]string{"error": "unable to refresh session"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Tokens: tokens})
}

// Logout revokes the supplied refresh token.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Sessions == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		if token := strings.TrimSpace(req.RefreshToken); token != "" {
			h.Sessions.Revoke(ctx, token)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	Tokens models.SessionTokens `json:"tokens"`
}

// requireSession guards an endpoint behind a valid bearer access token.
func requireSession(sessions SessionManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if sessions == nil {
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
			return
		}

		token := bearerToken(r)
		if token == "" || !sessions.Validate(token) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{
				"error":    "authentication required",
				"redirect": "/pin",
			})
			return
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
