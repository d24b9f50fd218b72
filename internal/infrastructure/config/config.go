package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Upstream is the platform API this console fronts.
	UpstreamBaseURL string        `env:"UPSTREAM_BASE_URL, default=https://realspark.jonahdevs.co.ke/api"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT,  default=30s"`

	// SessionTTL bounds sessions whose token carries no expiry of its own.
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`
	// SessionSealKey is a hex-encoded 32-byte key; empty disables
	// encryption-at-rest of the persisted session.
	SessionSealKey string `env:"SESSION_SEAL_KEY"`

	LoginRPM      int `env:"LOGIN_RATE_LIMIT_RPM, default=10"`
	NoticeWorkers int `env:"NOTICE_WORKERS,       default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

// MongoConfig is optional: an empty URI disables the activity trail.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=console_gateway"`
}

// RedisConfig is optional: an empty Addr selects the no-op credential store
// and the session lives in memory only.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}

// SealKey decodes the session sealing key. Returns nil when sealing is
// disabled.
func (c *Config) SealKey() ([]byte, error) {
	if c.SessionSealKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.SessionSealKey)
	if err != nil {
		return nil, fmt.Errorf("SESSION_SEAL_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("SESSION_SEAL_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsDevelopment reports whether the gateway runs in a development
// environment (pretty logs, relaxed defaults).
func (c *Config) IsDevelopment() bool { return c.Env == "development" }
