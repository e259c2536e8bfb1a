package handlers

import (
	"context"

	"github.com/everkeep/backend/internal/markers"
	"github.com/everkeep/backend/internal/memories"
	"github.com/everkeep/backend/internal/models"
)

// MemoryProvider is the read/write surface the gallery handlers consume.
type MemoryProvider interface {
	List(ctx context.Context, filter memories.Filter) ([]models.Memory, error)
	Get(ctx context.Context, id string) (models.Memory, error)
	Videos(ctx context.Context) ([]models.Memory, error)
	Latest(ctx context.Context) ([]models.Memory, error)
	Tags(ctx context.Context) ([]string, error)
	Create(ctx context.Context, draft models.MemoryDraft, files []memories.FileUpload) (models.Memory, error)
}

// PINGate verifies PIN entries and opens a session on success.
type PINGate interface {
	Unlock(ctx context.Context, entry string) (models.SessionTokens, error)
}

// SessionManager refreshes, validates, and revokes issued sessions.
type SessionManager interface {
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Validate(accessToken string) bool
	Revoke(ctx context.Context, refreshToken string)
}

// ThumbnailProvider resolves poster thumbnails for video URLs. Thumbnail may
// synthesize on demand; Peek only answers from cache.
type ThumbnailProvider interface {
	Thumbnail(ctx context.Context, videoURL string) (string, bool)
	Peek(ctx context.Context, videoURL string) (string, bool)
}

// ThumbnailWarmer schedules background thumbnail synthesis.
type ThumbnailWarmer interface {
	Enqueue(videoURL string) error
}

// MarkerStore persists the app's feature markers.
type MarkerStore interface {
	Get(ctx context.Context, name markers.Name) (string, bool)
	Set(ctx context.Context, name markers.Name, value string) error
	Clear(ctx context.Context, name markers.Name) error
}

// ChallengeProvider supplies the couple challenge of the day.
type ChallengeProvider interface {
	Today(ctx context.Context) (string, error)
}
