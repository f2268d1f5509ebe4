package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Backend names accepted for STORAGE_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	DiscordToken   string `env:"DISCORD_TOKEN"`
	VouchChannelID string `env:"VOUCH_CHANNEL_ID"`
	CommandPrefix  string `env:"COMMAND_PREFIX" default:"!"`
	PointsPerImage int    `env:"POINTS_PER_IMAGE" default:"1"`

	StorageBackend string `env:"STORAGE_BACKEND" default:"file"`
	LedgerPath     string `env:"LEDGER_PATH" default:"vouches.json"`
	SQLitePath     string `env:"SQLITE_PATH" default:"vouchy.db"`
	RedisURL       string `env:"REDIS_URL"`

	PersistRetryInterval time.Duration `env:"PERSIST_RETRY_INTERVAL" default:"30s"`

	MaxWebSocketConnections int `env:"MAX_WEBSOCKET_CONNECTIONS" default:"100"`
	WebSocketConnectionRate int `env:"WEBSOCKET_CONNECTION_RATE" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DISCORD_TOKEN":    cfg.DiscordToken,
		"VOUCH_CHANNEL_ID": cfg.VouchChannelID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	switch cfg.StorageBackend {
	case BackendFile, BackendSQLite:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND is %q", BackendRedis)
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of %q, %q, %q, got %q",
			BackendFile, BackendSQLite, BackendRedis, cfg.StorageBackend)
	}

	if cfg.PointsPerImage < 0 {
		return fmt.Errorf("POINTS_PER_IMAGE must be >= 0, got %d", cfg.PointsPerImage)
	}

	if cfg.CommandPrefix == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be empty")
	}

	if cfg.PersistRetryInterval <= 0 {
		return fmt.Errorf("PERSIST_RETRY_INTERVAL must be positive, got %v", cfg.PersistRetryInterval)
	}

	if cfg.MaxWebSocketConnections < 1 {
		return fmt.Errorf("MAX_WEBSOCKET_CONNECTIONS must be >= 1, got %d", cfg.MaxWebSocketConnections)
	}

	return nil
}
