package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the Everkeep gateway.
type Config struct {
	AppPort  int
	LogLevel string

	// Remote memories API.
	APIBaseURL string
	APIToken   string

	// PIN gate. PINHash is a bcrypt hash of the shared six-digit PIN; PIN is a
	// plain-text fallback for local development when no hash is configured.
	PIN        string
	PINHash    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Query cache.
	StaleTime     time.Duration
	ReconcileByID bool
	CachePath     string
	DatabaseURL   string

	// Thumbnail synthesis.
	FFmpegPath    string
	FFmpegTimeout time.Duration
	ThumbnailDir  string
	ObjectStore   ObjectStoreConfig

	// Supabase source for the latest-memories strip.
	SupabaseURL   string
	SupabaseKey   string
	SupabaseTable string

	// Relationship countdown widget.
	AnniversaryDate string

	// PIN attempt throttling.
	PINAttempts int
	PINWindow   time.Duration
}

// ObjectStoreConfig describes an S3-compatible bucket used to mirror
// synthesized thumbnails. When Bucket is empty thumbnails stay on local disk.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides per deployment.
func Load() (Config, error) {
	cfg := Config{
		AppPort:  getInt("EVERKEEP_PORT", 8080),
		LogLevel: getString("EVERKEEP_LOG_LEVEL", "info"),

		APIBaseURL: getString("EVERKEEP_API_BASE_URL", ""),
		APIToken:   getString("EVERKEEP_API_TOKEN", ""),

		PIN:        getString("EVERKEEP_PIN", ""),
		PINHash:    getString("EVERKEEP_PIN_HASH", ""),
		AccessTTL:  getDuration("EVERKEEP_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getDuration("EVERKEEP_REFRESH_TTL", 24*time.Hour),

		StaleTime:     getDuration("EVERKEEP_STALE_TIME", 2*time.Hour),
		ReconcileByID: getBool("EVERKEEP_RECONCILE_BY_ID", false),
		CachePath:     getString("EVERKEEP_CACHE_PATH", "everkeep.db"),
		DatabaseURL:   getString("EVERKEEP_DATABASE_URL", ""),

		FFmpegPath:    getString("EVERKEEP_FFMPEG_PATH", "ffmpeg"),
		FFmpegTimeout: getDuration("EVERKEEP_FFMPEG_TIMEOUT", 30*time.Second),
		ThumbnailDir:  getString("EVERKEEP_THUMBNAIL_DIR", "thumbnails"),
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("EVERKEEP_S3_BUCKET", ""),
			Region:        getString("EVERKEEP_S3_REGION", "us-east-1"),
			Endpoint:      getString("EVERKEEP_S3_ENDPOINT", ""),
			PublicBaseURL: getString("EVERKEEP_S3_PUBLIC_URL", ""),
		},

		SupabaseURL:   getString("EVERKEEP_SUPABASE_URL", ""),
		SupabaseKey:   getString("EVERKEEP_SUPABASE_KEY", ""),
		SupabaseTable: getString("EVERKEEP_SUPABASE_TABLE", "Memory"),

		AnniversaryDate: getString("EVERKEEP_ANNIVERSARY", ""),

		PINAttempts: getInt("EVERKEEP_PIN_ATTEMPTS", 5),
		PINWindow:   getDuration("EVERKEEP_PIN_WINDOW", time.Minute),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("EVERKEEP_API_BASE_URL is required")
	}
	if cfg.PIN == "" && cfg.PINHash == "" {
		return Config{}, errors.New("one of EVERKEEP_PIN or EVERKEEP_PIN_HASH is required")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
