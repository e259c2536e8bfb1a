package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/memories"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps the memories client's error taxonomy onto HTTP statuses.
// An expired upstream session carries a redirect hint so the UI can route the
// user back to the PIN screen.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		validation *memories.ValidationError
		server     *memories.ServerError
		network    *memories.NetworkError
		httpErr    *memories.HTTPError
	)

	switch {
	case errors.Is(err, memories.ErrUnauthenticated):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{
			"error":    "session with the memories service has expired",
			"redirect": "/pin",
		})
	case errors.As(err, &validation):
		respondJSON(ctx, w, http.StatusUnprocessableEntity, validation)
	case errors.As(err, &server):
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "the memories service reported an error"})
	case errors.As(err, &network):
		respondJSON(ctx, w, http.StatusGatewayTimeout, map[string]string{"error": "the memories service is unreachable"})
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusNotFound {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "unexpected response from the memories service"})
	default:
		logging.FromContext(ctx).Error("unhandled error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
