package handlers

import (
	"net/http"
	"strings"
)

// ThumbnailHandler resolves a poster thumbnail for a single video URL.
type ThumbnailHandler struct {
	Thumbs ThumbnailProvider
}

// Get handles GET /api/v1/thumbnails?url=. It synthesizes on demand, so the
// first request for a URL can take as long as one ffmpeg run.
func (h ThumbnailHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	videoURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if videoURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "url query parameter is required"})
		return
	}

	if h.Thumbs == nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no thumbnail available"})
		return
	}

	location, ok := h.Thumbs.Thumbnail(ctx, videoURL)
	if !ok {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no thumbnail available"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": videoURL, "location": location})
}
