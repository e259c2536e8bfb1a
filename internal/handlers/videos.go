package handlers

import (
	"errors"
	"net/http"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/models"
	"github.com/everkeep/backend/internal/thumbs"
)

// VideoHandler serves the video gallery.
type VideoHandler struct {
	Memories MemoryProvider
	Thumbs   ThumbnailProvider
	Warmer   ThumbnailWarmer
}

// List handles GET /api/v1/videos. The response carries the memories that
// contain video plus a poster map for every video URL whose thumbnail is
// already cached; cold URLs are queued for background synthesis so the next
// request finds them.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	items, err := h.Memories.Videos(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	posters := make(map[string]string)
	for _, item := range items {
		for _, media := range item.Media {
			if media.Type != models.MediaVideo || media.Thumbnail != "" {
				continue
			}
			if h.Thumbs != nil {
				if location, ok := h.Thumbs.Peek(ctx, media.URL); ok {
					posters[media.URL] = location
					continue
				}
			}
			if h.Warmer != nil {
				if err := h.Warmer.Enqueue(media.URL); err != nil && !errors.Is(err, thumbs.ErrQueueFull) {
					logger.Debug("thumbnail warm enqueue failed", "url", media.URL, "error", err)
				}
			}
		}
	}

	respondJSON(ctx, w, http.StatusOK, videosResponse{Videos: items, Posters: posters})
}

type videosResponse struct {
	Videos  []models.Memory   `json:"videos"`
	Posters map[string]string `json:"posters"`
}
