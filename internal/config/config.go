package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config carries every knob of the engine. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	Port string

	// StoreBackend picks the persistence: "file", "postgres" or "memory".
	StoreBackend string
	StorePath    string
	PostgresDSN  string

	AssetCacheDir string

	SyncServerURL string
	WgerBaseURL   string

	// AdvancePolicy is "manual" or "auto"; see rotation service.
	AdvancePolicy string

	HTTPTimeout time.Duration
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads the configuration. A missing .env file is fine; explicit
// environment variables always win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not load .env file: %v", err)
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("ROTA_HTTP_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Warnf("invalid ROTA_HTTP_TIMEOUT %q, using %s", raw, timeout)
		} else {
			timeout = parsed
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		StoreBackend:  getEnv("ROTA_STORE_BACKEND", "file"),
		StorePath:     getEnv("ROTA_STORE_PATH", "rota_store.json"),
		PostgresDSN:   os.Getenv("ROTA_POSTGRES_DSN"),
		AssetCacheDir: getEnv("ROTA_ASSET_DIR", "rota_images"),
		SyncServerURL: getEnv("ROTA_SYNC_SERVER_URL", "http://localhost:8090"),
		WgerBaseURL:   getEnv("ROTA_WGER_BASE_URL", "https://wger.de"),
		AdvancePolicy: getEnv("ROTA_ADVANCE_POLICY", "manual"),
		HTTPTimeout:   timeout,
	}
}

// SyncServerConfig configures the snapshot blob service.
type SyncServerConfig struct {
	Port string

	// BlobBackend picks the snapshot storage: "redis" or "memory".
	BlobBackend   string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// SnapshotTTL bounds how long an uploaded snapshot is kept; zero
	// keeps snapshots forever.
	SnapshotTTL time.Duration

	RateLimit       int
	RateLimitWindow time.Duration
}

func LoadSyncServer() *SyncServerConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not load .env file: %v", err)
	}

	ttl := time.Duration(0)
	if raw := os.Getenv("ROTA_SNAPSHOT_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Warnf("invalid ROTA_SNAPSHOT_TTL %q, keeping snapshots forever", raw)
		} else {
			ttl = parsed
		}
	}

	return &SyncServerConfig{
		Port:            getEnv("PORT", "8090"),
		BlobBackend:     getEnv("ROTA_BLOB_BACKEND", "memory"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         0,
		SnapshotTTL:     ttl,
		RateLimit:       100,
		RateLimitWindow: time.Minute,
	}
}
