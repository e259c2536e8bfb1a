package handlers

import (
	"net/http"

	"github.com/everkeep/backend/internal/games"
	"github.com/everkeep/backend/internal/logging"
)

// ChallengeHandler serves the daily couple challenge and the games menu.
type ChallengeHandler struct {
	Challenges ChallengeProvider
}

// Today handles GET /api/v1/challenge/today.
func (h ChallengeHandler) Today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Challenges == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "challenges unavailable"})
		return
	}

	challenge, err := h.Challenges.Today(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("pick daily challenge", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to pick a challenge"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"challenge": challenge})
}

// Games handles GET /api/v1/games.
func (h ChallengeHandler) Games(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string][]games.Info{"games": games.Menu()})
}
