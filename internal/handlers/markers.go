package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/markers"
)

// MarkerHandler reads and writes the app's feature markers.
type MarkerHandler struct {
	Markers MarkerStore
}

// Handle serves GET, PUT, and DELETE on /api/v1/markers/{name}.
func (h MarkerHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, err := markers.ParseName(r.PathValue("name"))
	if err != nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "unknown marker"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		value, present := h.Markers.Get(ctx, name)
		respondJSON(ctx, w, http.StatusOK, markerResponse{Name: name, Value: value, Present: present})
	case http.MethodPut:
		var req markerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := h.Markers.Set(ctx, name, req.Value); err != nil {
			logging.FromContext(ctx).Error("marker write failed", "marker", name, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store marker"})
			return
		}
		respondJSON(ctx, w, http.StatusOK, markerResponse{Name: name, Value: req.Value, Present: true})
	case http.MethodDelete:
		if err := h.Markers.Clear(ctx, name); err != nil {
			logging.FromContext(ctx).Error("marker clear failed", "marker", name, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to clear marker"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type markerRequest struct {
	Value string `json:"value"`
}

type markerResponse struct {
	Name    markers.Name `json:"name"`
	Value   string       `json:"value"`
	Present bool         `json:"present"`
}
