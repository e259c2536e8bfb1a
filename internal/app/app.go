package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/everkeep/backend/internal/config"
	"github.com/everkeep/backend/internal/db"
	"github.com/everkeep/backend/internal/handlers"
	"github.com/everkeep/backend/internal/httpserver"
	"github.com/everkeep/backend/internal/memories"
	"github.com/everkeep/backend/internal/middleware"
	"github.com/everkeep/backend/internal/models"
	"github.com/everkeep/backend/internal/store"
)

// Run bootstraps the Everkeep gateway application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"serve"}
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "warm":
		return warm(ctx)
	case "thumb":
		return thumb(ctx, args[1:])
	case "hash-pin":
		return hashPIN(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	kv, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, warmer, err := buildDependencies(ctx, kv, cfg, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	if err := warmer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("thumbnail warmer did not drain", "error", err)
	}

	return srv.Shutdown(shutdownCtx)
}

// openStore picks the persistent key-value backend: Postgres when a database
// URL is configured, an embedded SQLite file otherwise.
func openStore(ctx context.Context, cfg config.Config) (store.KV, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		kv := store.NewPostgresKV(pool)
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kv, pool.Close, nil
	}

	kv, err := store.NewSQLiteKV(cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return kv, func() { _ = kv.Close() }, nil
}

// warm prefetches the memory, video, and thumbnail caches so the first
// request after a restart paints from disk instead of the network.
func warm(ctx context.Context) error {
	deps, shutdown, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	return warmCaches(ctx, deps, slog.Default())
}

// thumb synthesizes the poster for a single video URL and prints its stored
// location. Useful for pre-seeding a new video before it hits the gallery.
func thumb(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: thumb <video-url>")
	}

	deps, shutdown, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	location, err := synthesizeThumbnail(ctx, deps.Thumbs, args[0])
	if err != nil {
		return err
	}

	fmt.Println(location)
	return nil
}

// bootstrap assembles the same dependency graph serve uses, for the one-shot
// commands. The returned shutdown closes the store and drains the warmer.
func bootstrap(ctx context.Context) (handlers.Dependencies, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	kv, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	deps, warmer, err := buildDependencies(ctx, kv, cfg, logger)
	if err != nil {
		cleanup()
		return handlers.Dependencies{}, nil, err
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		if err := warmer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("thumbnail warmer did not drain", "error", err)
		}
		cleanup()
	}

	return deps, shutdown, nil
}

// warmCaches pulls the gallery queries through the cache layer and
// synthesizes posters for every video still missing one. List and video
// failures abort the run; thumbnails stay best-effort.
func warmCaches(ctx context.Context, deps handlers.Dependencies, logger *slog.Logger) error {
	if _, err := deps.Memories.List(ctx, memories.Filter{}); err != nil {
		return fmt.Errorf("warm memory list: %w", err)
	}

	items, err := deps.Memories.Videos(ctx)
	if err != nil {
		return fmt.Errorf("warm video list: %w", err)
	}

	if _, err := deps.Memories.Latest(ctx); err != nil {
		logger.Warn("latest strip not warmed", "error", err)
	}

	warmed := 0
	for _, item := range items {
		for _, media := range item.Media {
			if media.Type != models.MediaVideo || media.Thumbnail != "" {
				continue
			}
			if _, ok := deps.Thumbs.Thumbnail(ctx, media.URL); ok {
				warmed++
			} else {
				logger.Warn("no thumbnail produced", "url", media.URL)
			}
		}
	}

	logger.Info("caches warmed", "videos", len(items), "thumbnails", warmed)
	return nil
}

func synthesizeThumbnail(ctx context.Context, thumbs handlers.ThumbnailProvider, videoURL string) (string, error) {
	location, ok := thumbs.Thumbnail(ctx, videoURL)
	if !ok {
		return "", fmt.Errorf("no thumbnail could be produced for %s", videoURL)
	}
	return location, nil
}

// hashPIN prints the bcrypt hash of a PIN for EVERKEEP_PIN_HASH.
func hashPIN(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: hash-pin <six-digit-pin>")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
