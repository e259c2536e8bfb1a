package handlers

import (
	"net/http"
	"time"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Everything
// past the PIN gate requires a valid access token.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{StartedAt: deps.StartedAt}
	auth := AuthHandler{Gate: deps.Gate, Sessions: deps.Sessions, Limiter: deps.PINLimiter}
	memories := MemoryHandler{Memories: deps.Memories}
	videos := VideoHandler{Memories: deps.Memories, Thumbs: deps.Thumbs, Warmer: deps.Warmer}
	thumbnails := ThumbnailHandler{Thumbs: deps.Thumbs}
	markers := MarkerHandler{Markers: deps.Markers}
	countdown := CountdownHandler{Anniversary: deps.Anniversary}
	challenge := ChallengeHandler{Challenges: deps.Challenges}

	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return requireSession(deps.Sessions, next)
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/pin", auth.Pin)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/memories", guard(memories.Collection))
	mux.HandleFunc("/api/v1/memories/latest", guard(memories.Latest))
	mux.HandleFunc("/api/v1/memories/{id}", guard(memories.Get))
	mux.HandleFunc("/api/v1/tags", guard(memories.Tags))
	mux.HandleFunc("/api/v1/videos", guard(videos.List))
	mux.HandleFunc("/api/v1/thumbnails", guard(thumbnails.Get))
	mux.HandleFunc("/api/v1/markers/{name}", guard(markers.Handle))
	mux.HandleFunc("/api/v1/countdown", guard(countdown.Get))
	mux.HandleFunc("/api/v1/challenge/today", guard(challenge.Today))
	mux.HandleFunc("/api/v1/games", guard(challenge.Games))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Gate        PINGate
	Sessions    SessionManager
	Memories    MemoryProvider
	Thumbs      ThumbnailProvider
	Warmer      ThumbnailWarmer
	Markers     MarkerStore
	Challenges  ChallengeProvider
	PINLimiter  RateLimiter
	Anniversary time.Time
	StartedAt   time.Time
}
