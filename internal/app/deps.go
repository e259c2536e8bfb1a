package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/everkeep/backend/internal/auth"
	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/games"
	"github.com/everkeep/backend/internal/handlers"
	"github.com/everkeep/backend/internal/markers"
	"github.com/everkeep/backend/internal/memories"
	"github.com/everkeep/backend/internal/middleware"
	"github.com/everkeep/backend/internal/storage"
	"github.com/everkeep/backend/internal/store"
	"github.com/everkeep/backend/internal/thumbs"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned warmer is handed back separately so serve can drain
// it on shutdown.
func buildDependencies(ctx context.Context, kv store.KV, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *thumbs.Warmer, error) {
	tokens := auth.NewMemoryTokenStore()
	sessions := auth.NewManager(cfg.AccessTTL, cfg.RefreshTTL, auth.NewInMemorySessionStore())
	gate := auth.NewGate(cfg.PINHash, cfg.PIN, cfg.APIToken, sessions, tokens)

	cache := memories.NewCache(cfg.StaleTime, kv)
	client := memories.NewClient(cfg.APIBaseURL, tokens)

	var latest memories.LatestSource
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		source, err := memories.NewSupabaseSource(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTable)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure supabase source: %w", err)
		}
		latest = source
	}

	service := memories.NewService(cache, client, latest, cfg.ReconcileByID)

	var thumbStorage thumbs.Storage
	if cfg.ObjectStore.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure thumbnail bucket: %w", err)
		}
		thumbStorage = s3Storage
	} else {
		localStorage, err := storage.NewLocalStorage(cfg.ThumbnailDir)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("configure thumbnail directory: %w", err)
		}
		thumbStorage = localStorage
	}

	extractor := thumbs.NewFFmpegExtractor(cfg.FFmpegPath, cfg.FFmpegTimeout)
	synth := thumbs.NewSynthesizer(extractor, thumbStorage, kv)
	warmer := thumbs.NewWarmer(synth, thumbs.WarmerConfig{}, logger)

	markerStore := markers.NewStore(kv)

	var anniversary time.Time
	if cfg.AnniversaryDate != "" {
		parsed, err := time.Parse("2006-01-02", cfg.AnniversaryDate)
		if err != nil {
			return handlers.Dependencies{}, nil, fmt.Errorf("parse EVERKEEP_ANNIVERSARY: %w", err)
		}
		anniversary = parsed
	}

	deps := handlers.Dependencies{
		Gate:        gate,
		Sessions:    sessions,
		Memories:    service,
		Thumbs:      synth,
		Warmer:      warmer,
		Markers:     markerStore,
		Challenges:  games.NewPicker(markerStore),
		PINLimiter:  middleware.NewIPRateLimiter(cfg.PINAttempts, cfg.PINWindow, cfg.PINAttempts, 10*time.Minute),
		Anniversary: anniversary,
		StartedAt:   time.Now(),
	}

	return deps, warmer, nil
}
