package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestThumbnailHandlerGet(t *testing.T) {
	handler := ThumbnailHandler{Thumbs: &stubThumbs{cached: map[string]string{"v.mp4": "/thumbs/v.jpg"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/thumbnails?url=v.mp4", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["location"] != "/thumbs/v.jpg" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestThumbnailHandlerMiss(t *testing.T) {
	handler := ThumbnailHandler{Thumbs: &stubThumbs{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/thumbnails?url=unknown.mp4", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestThumbnailHandlerRequiresURL(t *testing.T) {
	handler := ThumbnailHandler{Thumbs: &stubThumbs{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/thumbnails", nil)
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
