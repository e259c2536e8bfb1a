package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/everkeep/backend/internal/memories"
	"github.com/everkeep/backend/internal/models"
)

type stubMemories struct {
	listFn   func(ctx context.Context, filter memories.Filter) ([]models.Memory, error)
	getFn    func(ctx context.Context, id string) (models.Memory, error)
	videosFn func(ctx context.Context) ([]models.Memory, error)
	latestFn func(ctx context.Context) ([]models.Memory, error)
	tagsFn   func(ctx context.Context) ([]string, error)
	createFn func(ctx context.Context, draft models.MemoryDraft, files []memories.FileUpload) (models.Memory, error)
}

func (s *stubMemories) List(ctx context.Context, filter memories.Filter) ([]models.Memory, error) {
	return s.listFn(ctx, filter)
}

func (s *stubMemories) Get(ctx context.Context, id string) (models.Memory, error) {
	return s.getFn(ctx, id)
}

func (s *stubMemories) Videos(ctx context.Context) ([]models.Memory, error) {
	return s.videosFn(ctx)
}

func (s *stubMemories) Latest(ctx context.Context) ([]models.Memory, error) {
	return s.latestFn(ctx)
}

func (s *stubMemories) Tags(ctx context.Context) ([]string, error) {
	return s.tagsFn(ctx)
}

func (s *stubMemories) Create(ctx context.Context, draft models.MemoryDraft, files []memories.FileUpload) (models.Memory, error) {
	return s.createFn(ctx, draft, files)
}

func TestMemoryHandlerListPassesFilter(t *testing.T) {
	var gotFilter memories.Filter
	handler := MemoryHandler{Memories: &stubMemories{
		listFn: func(_ context.Context, filter memories.Filter) ([]models.Memory, error) {
			gotFilter = filter
			return []models.Memory{{ID: "a"}}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?tag=summer&type=video&sort=oldest", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFilter.Tag != "summer" || gotFilter.MediaType != models.MediaVideo || gotFilter.Sort != memories.SortOldest {
		t.Fatalf("unexpected filter: %+v", gotFilter)
	}

	var resp memoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Memories) != 1 || resp.Memories[0].ID != "a" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestMemoryHandlerListRejectsBadFilter(t *testing.T) {
	handler := MemoryHandler{Memories: &stubMemories{
		listFn: func(context.Context, memories.Filter) ([]models.Memory, error) {
			t.Fatal("provider must not be called for an invalid filter")
			return nil, nil
		},
	}}

	for _, query := range []string{"?sort=shuffled", "?type=hologram"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/memories"+query, nil)
		rec := httptest.NewRecorder()
		handler.List(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", query, rec.Code)
		}
	}
}

func TestMemoryHandlerErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"expired session", memories.ErrUnauthenticated, http.StatusUnauthorized},
		{"remote failure", &memories.ServerError{Status: 500}, http.StatusBadGateway},
		{"unreachable", &memories.NetworkError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"missing record", &memories.HTTPError{Status: http.StatusNotFound}, http.StatusNotFound},
	}

	for _, tc := range cases {
		handler := MemoryHandler{Memories: &stubMemories{
			listFn: func(context.Context, memories.Filter) ([]models.Memory, error) {
				return nil, tc.err
			},
		}}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/memories", nil)
		rec := httptest.NewRecorder()
		handler.List(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.status, rec.Code)
		}
	}
}

func TestMemoryHandlerUnauthenticatedCarriesRedirect(t *testing.T) {
	handler := MemoryHandler{Memories: &stubMemories{
		listFn: func(context.Context, memories.Filter) ([]models.Memory, error) {
			return nil, memories.ErrUnauthenticated
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["redirect"] != "/pin" {
		t.Fatalf("expected a /pin redirect hint, got %+v", resp)
	}
}

func TestMemoryHandlerGet(t *testing.T) {
	handler := MemoryHandler{Memories: &stubMemories{
		getFn: func(_ context.Context, id string) (models.Memory, error) {
			return models.Memory{ID: id, Title: "First date"}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/m42", nil)
	req.SetPathValue("id", "m42")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp memoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Memory.ID != "m42" {
		t.Fatalf("unexpected memory: %+v", resp.Memory)
	}
}

func multipartBody(t *testing.T, fields map[string]string, tags []string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, tag := range tags {
		if err := form.WriteField("tags[]", tag); err != nil {
			t.Fatalf("write tag: %v", err)
		}
	}
	for name, content := range files {
		part, err := form.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, form.FormDataContentType()
}

func TestMemoryHandlerCreate(t *testing.T) {
	var gotDraft models.MemoryDraft
	var gotFiles []memories.FileUpload
	handler := MemoryHandler{Memories: &stubMemories{
		createFn: func(_ context.Context, draft models.MemoryDraft, files []memories.FileUpload) (models.Memory, error) {
			gotDraft = draft
			gotFiles = files
			return models.Memory{ID: "created"}, nil
		},
	}}

	body, contentType := multipartBody(t,
		map[string]string{"title": "Road trip", "description": "coast drive", "date": "2024-06-01"},
		[]string{"travel"},
		map[string][]byte{"coast.jpg": []byte("jpeg")},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if gotDraft.Title != "Road trip" || gotDraft.Date != "2024-06-01" || len(gotDraft.Tags) != 1 {
		t.Fatalf("unexpected draft: %+v", gotDraft)
	}
	if len(gotFiles) != 1 || gotFiles[0].Name != "coast.jpg" || string(gotFiles[0].Content) != "jpeg" {
		t.Fatalf("unexpected files: %+v", gotFiles)
	}
}

func TestMemoryHandlerCreateValidationError(t *testing.T) {
	handler := MemoryHandler{Memories: &stubMemories{
		createFn: func(context.Context, models.MemoryDraft, []memories.FileUpload) (models.Memory, error) {
			return models.Memory{}, &memories.ValidationError{Field: "files", Message: "attach at least one photo or video"}
		},
	}}

	body, contentType := multipartBody(t, map[string]string{"title": "t", "date": "2024-06-01"}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["field"] != "files" || resp["error"] == "" {
		t.Fatalf("expected a field-level error, got %+v", resp)
	}
}
