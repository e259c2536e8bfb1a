package models

import "time"

// MediaType distinguishes the two supported attachment kinds.
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
)

// MediaItem is one photo or video attached to a memory. The order of items
// within a memory is significant: the first item is the gallery card asset.
type MediaItem struct {
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// Memory represents one dated event owned by the remote memories API. Date is
// the event date, not the creation time. UpdatedAt is a change-detection
// fingerprint used when reconciling cached data and is never displayed.
type Memory struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	UpdatedAt   string      `json:"updatedAt"`
	Tags        []string    `json:"tags"`
	Media       []MediaItem `json:"media"`
}

// HasVideo reports whether any attached media item is a video.
func (m Memory) HasVideo() bool {
	for _, item := range m.Media {
		if item.Type == MediaVideo {
			return true
		}
	}
	return false
}

// CardMedia returns the media item shown on the gallery card, which is always
// the first attachment, and false when the memory carries no media at all.
func (m Memory) CardMedia() (MediaItem, bool) {
	if len(m.Media) == 0 {
		return MediaItem{}, false
	}
	return m.Media[0], true
}

// MemoryDraft carries the user-entered fields of a create-memory submission.
type MemoryDraft struct {
	Title       string
	Description string
	Date        string
	Tags        []string
}

// SessionTokens groups the bearer credentials issued after the PIN gate.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
