package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/memories"
	"github.com/everkeep/backend/internal/models"
)

// maxUploadBytes bounds a create-memory submission. Videos are linked, not
// uploaded, so the ceiling only needs to fit a handful of photos.
const maxUploadBytes = 64 << 20

// MemoryHandler serves the memory gallery endpoints.
type MemoryHandler struct {
	Memories MemoryProvider
}

// Collection dispatches the shared /api/v1/memories path: GET lists, POST
// creates.
func (h MemoryHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// List handles GET /api/v1/memories with optional tag, type, and sort filters.
func (h MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	items, err := h.Memories.List(ctx, filter)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, memoriesResponse{Memories: items})
}

// Get handles GET /api/v1/memories/{id}.
func (h MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "memory not found"})
		return
	}

	item, err := h.Memories.Get(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, memoryResponse{Memory: item})
}

// Latest handles GET /api/v1/memories/latest, the home screen strip.
func (h MemoryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	items, err := h.Memories.Latest(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, memoriesResponse{Memories: items})
}

// Tags handles GET /api/v1/tags.
func (h MemoryHandler) Tags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	tags, err := h.Memories.Tags(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{"tags": tags})
}

// Create handles POST /api/v1/memories multipart submissions.
func (h MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid multipart submission", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request body"})
		return
	}

	draft := models.MemoryDraft{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Date:        strings.TrimSpace(r.FormValue("date")),
		Tags:        formTags(r),
	}

	files, err := formFiles(r)
	if err != nil {
		logger.Warn("unreadable upload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unable to read uploaded files"})
		return
	}

	created, err := h.Memories.Create(ctx, draft, files)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("memory created", "id", created.ID)
	respondJSON(ctx, w, http.StatusCreated, memoryResponse{Memory: created})
}

func parseFilter(r *http.Request) (memories.Filter, error) {
	var filter memories.Filter

	filter.Tag = strings.TrimSpace(r.URL.Query().Get("tag"))

	if raw := r.URL.Query().Get("type"); raw != "" {
		mediaType, err := memories.ParseMediaType(raw)
		if err != nil {
			return memories.Filter{}, err
		}
		filter.MediaType = mediaType
	}

	sort, err := memories.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		return memories.Filter{}, err
	}
	filter.Sort = sort

	return filter, nil
}

func formTags(r *http.Request) []string {
	values := r.MultipartForm.Value["tags[]"]
	if len(values) == 0 {
		values = r.MultipartForm.Value["tags"]
	}

	tags := make([]string, 0, len(values))
	for _, value := range values {
		if tag := strings.TrimSpace(value); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func formFiles(r *http.Request) ([]memories.FileUpload, error) {
	headers := r.MultipartForm.File["files"]
	uploads := make([]memories.FileUpload, 0, len(headers))

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}

		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, err
		}

		uploads = append(uploads, memories.FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}

	return uploads, nil
}

type memoriesResponse struct {
	Memories []models.Memory `json:"memories"`
}

type memoryResponse struct {
	Memory models.Memory `json:"memory"`
}
