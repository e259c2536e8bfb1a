package memories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/everkeep/backend/internal/auth"
	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/models"
)

// FileUpload is one media file attached to a create-memory submission.
type FileUpload struct {
	Name        string
	ContentType string
	Content     []byte
}

// Client talks to the remote memories API. Every request carries the bearer
// token currently held by the token store; a missing token fails before any
// network I/O, and a 401 response clears the stored token so the caller is
// sent back to the PIN gate. The client never retries on its own.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  auth.TokenStore
}

// NewClient constructs a Client for the API rooted at baseURL.
func NewClient(baseURL string, tokens auth.TokenStore) *Client {
	if tokens == nil {
		panic("memories: client requires a token store")
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
	}
}

// List fetches every memory record.
func (c *Client) List(ctx context.Context) ([]models.Memory, error) {
	ctx, span := logging.StartSpan(ctx, "memories.list")
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, "/api/memories", nil, "")
	if err != nil {
		return nil, err
	}

	var items []models.Memory
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode memories list: %w", err)
	}
	return items, nil
}

// Get fetches a single memory by its identifier.
func (c *Client) Get(ctx context.Context, id string) (models.Memory, error) {
	ctx, span := logging.StartSpan(ctx, "memories.get")
	defer span.End()

	body, err := c.do(ctx, http.MethodGet, "/api/memories/"+id, nil, "")
	if err != nil {
		return models.Memory{}, err
	}

	var item models.Memory
	if err := json.Unmarshal(body, &item); err != nil {
		return models.Memory{}, fmt.Errorf("decode memory: %w", err)
	}
	return item, nil
}

// Create submits a new memory as a multipart form. The draft is validated
// before any network call: a submission without media never leaves the
// process.
func (c *Client) Create(ctx context.Context, draft models.MemoryDraft, files []FileUpload) (models.Memory, error) {
	if err := ValidateDraft(draft, files); err != nil {
		return models.Memory{}, err
	}

	ctx, span := logging.StartSpan(ctx, "memories.create")
	defer span.End()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"date":        draft.Date,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return models.Memory{}, fmt.Errorf("write form field %s: %w", name, err)
		}
	}
	for _, tag := range draft.Tags {
		if err := form.WriteField("tags[]", tag); err != nil {
			return models.Memory{}, fmt.Errorf("write form tag: %w", err)
		}
	}
	for _, file := range files {
		part, err := form.CreateFormFile("files", file.Name)
		if err != nil {
			return models.Memory{}, fmt.Errorf("create form file %s: %w", file.Name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return models.Memory{}, fmt.Errorf("write form file %s: %w", file.Name, err)
		}
	}
	if err := form.Close(); err != nil {
		return models.Memory{}, fmt.Errorf("finalize form: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/memories", &buf, form.FormDataContentType())
	if err != nil {
		return models.Memory{}, err
	}

	var created models.Memory
	if err := json.Unmarshal(body, &created); err != nil {
		return models.Memory{}, fmt.Errorf("decode created memory: %w", err)
	}
	return created, nil
}

// ValidateDraft enforces the client-side rules for a create submission.
func ValidateDraft(draft models.MemoryDraft, files []FileUpload) error {
	if strings.TrimSpace(draft.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(draft.Date) == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := time.Parse("2006-01-02", draft.Date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if len(files) == 0 {
		return &ValidationError{Field: "files", Message: "attach at least one photo or video"}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	token, ok := c.tokens.Token()
	if !ok {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	logging.FromContext(ctx).Debug("memories api response", "method", method, "path", path, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Clear()
		return nil, ErrUnauthenticated
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &ServerError{Status: resp.StatusCode, Body: string(data)}
	case resp.StatusCode >= http.StatusBadRequest:
		var invalid ValidationError
		if err := json.Unmarshal(data, &invalid); err == nil && invalid.Field != "" {
			return nil, &invalid
		}
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}
