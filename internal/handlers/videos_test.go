package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everkeep/backend/internal/models"
)

type stubThumbs struct {
	cached map[string]string
}

func (s *stubThumbs) Thumbnail(_ context.Context, url string) (string, bool) {
	location, ok := s.cached[url]
	return location, ok
}

func (s *stubThumbs) Peek(_ context.Context, url string) (string, bool) {
	location, ok := s.cached[url]
	return location, ok
}

type recordingWarmer struct {
	urls []string
	err  error
}

func (w *recordingWarmer) Enqueue(url string) error {
	w.urls = append(w.urls, url)
	return w.err
}

func TestVideoHandlerListResolvesAndWarmsPosters(t *testing.T) {
	items := []models.Memory{
		{ID: "cached", Media: []models.MediaItem{{Type: models.MediaVideo, URL: "cached.mp4"}}},
		{ID: "cold", Media: []models.MediaItem{{Type: models.MediaVideo, URL: "cold.mp4"}}},
		{ID: "remote-thumb", Media: []models.MediaItem{{Type: models.MediaVideo, URL: "has.mp4", Thumbnail: "has.jpg"}}},
	}

	warmer := &recordingWarmer{}
	handler := VideoHandler{
		Memories: &stubMemories{videosFn: func(context.Context) ([]models.Memory, error) { return items, nil }},
		Thumbs:   &stubThumbs{cached: map[string]string{"cached.mp4": "/thumbs/cached.jpg"}},
		Warmer:   warmer,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp videosResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Videos) != 3 {
		t.Fatalf("expected 3 videos got %d", len(resp.Videos))
	}
	if resp.Posters["cached.mp4"] != "/thumbs/cached.jpg" {
		t.Fatalf("expected cached poster, got %+v", resp.Posters)
	}

	// Only the cold URL without a remote thumbnail gets queued.
	if len(warmer.urls) != 1 || warmer.urls[0] != "cold.mp4" {
		t.Fatalf("unexpected warm queue: %v", warmer.urls)
	}
}
