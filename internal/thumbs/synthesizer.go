package thumbs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"github.com/everkeep/backend/internal/logging"
	"github.com/everkeep/backend/internal/store"
)

// Storage persists rendered thumbnail images and returns a serveable location.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ErrStorageUnavailable indicates no thumbnail storage is configured.
var ErrStorageUnavailable = errors.New("thumbnail storage unavailable")

// thumbRecord is the persisted outcome of one synthesis attempt. A failed
// attempt is remembered so it is not retried within the cache lifetime.
type thumbRecord struct {
	Location string `json:"location,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// Synthesizer produces and caches poster thumbnails for video URLs.
// Thumbnails are cosmetic: every failure path degrades to "no thumbnail" and
// is only logged, never surfaced.
type Synthesizer struct {
	extractor FrameExtractor
	storage   Storage
	kv        store.KV
}

// NewSynthesizer wires the extractor, the image storage, and the persistent
// cache recording per-URL outcomes.
func NewSynthesizer(extractor FrameExtractor, storage Storage, kv store.KV) *Synthesizer {
	return &Synthesizer{extractor: extractor, storage: storage, kv: kv}
}

// Thumbnail returns the stored location of the poster for videoURL,
// synthesizing it on first request. ok is false when no thumbnail exists and
// none could be made; the caller renders a placeholder instead. The cost of
// synthesis is paid at most once per URL per cache lifetime, including for
// URLs that failed.
func (s *Synthesizer) Thumbnail(ctx context.Context, videoURL string) (location string, ok bool) {
	key := cacheKey(videoURL)

	if rec, found := store.ReadJSON[thumbRecord](ctx, s.kv, key); found {
		return rec.Location, !rec.Failed && rec.Location != ""
	}

	ctx, span := logging.StartSpan(ctx, "thumbs.synthesize")
	defer span.End()
	logger := logging.FromContext(ctx)

	if s.extractor == nil || s.storage == nil {
		logger.Warn("thumbnail synthesis unavailable", "hasExtractor", s.extractor != nil, "hasStorage", s.storage != nil)
		return "", false
	}

	frame, err := s.extractor.ExtractFrame(ctx, videoURL)
	if err != nil {
		logger.Warn("thumbnail extraction failed", "url", videoURL, "error", err)
		store.WriteJSON(ctx, s.kv, key, thumbRecord{Failed: true})
		return "", false
	}

	name := hashURL(videoURL) + ".jpg"
	location, err = s.storage.Save(ctx, name, bytes.NewReader(frame))
	if err != nil {
		logger.Warn("thumbnail save failed", "url", videoURL, "error", err)
		store.WriteJSON(ctx, s.kv, key, thumbRecord{Failed: true})
		return "", false
	}

	store.WriteJSON(ctx, s.kv, key, thumbRecord{Location: location})
	return location, true
}

// Peek reports the recorded thumbnail for videoURL without triggering
// synthesis. Gallery listings use it so a page of cold URLs does not stall on
// ffmpeg; the warmer fills the cache behind them.
func (s *Synthesizer) Peek(ctx context.Context, videoURL string) (location string, ok bool) {
	rec, found := store.ReadJSON[thumbRecord](ctx, s.kv, cacheKey(videoURL))
	if !found {
		return "", false
	}
	return rec.Location, !rec.Failed && rec.Location != ""
}

// Forget drops the recorded outcome for videoURL so the next request
// synthesizes again. Used when the cache is explicitly cleared.
func (s *Synthesizer) Forget(ctx context.Context, videoURL string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, cacheKey(videoURL)); err != nil {
		logging.FromContext(ctx).Debug("forget thumbnail", "url", videoURL, "error", err)
	}
}

func cacheKey(videoURL string) string {
	return "thumb:" + hashURL(videoURL)
}

func hashURL(videoURL string) string {
	sum := sha256.Sum256([]byte(videoURL))
	return hex.EncodeToString(sum[:16])
}
