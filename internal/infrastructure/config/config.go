package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
	Preview    PreviewConfig
	Storage    StorageConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// GenerationConfig holds code generation service configuration.
type GenerationConfig struct {
	BaseURL string        `envconfig:"GENERATION_URL" default:"https://generativelanguage.googleapis.com"`
	APIKey  string        `envconfig:"GENERATION_API_KEY" default:""`
	Model   string        `envconfig:"GENERATION_MODEL" default:"gemini-2.0-flash"`
	Timeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"120s"`
	Retries int           `envconfig:"GENERATION_RETRIES" default:"2"`
}

// PreviewConfig holds preview pipeline configuration.
type PreviewConfig struct {
	PreflightPoolSize int           `envconfig:"PREVIEW_PREFLIGHT_POOL" default:"4"`
	PreflightTimeout  time.Duration `envconfig:"PREVIEW_PREFLIGHT_TIMEOUT" default:"2s"`
	PreflightEvaluate bool          `envconfig:"PREVIEW_PREFLIGHT_EVALUATE" default:"false"`
}

// StorageConfig holds session persistence configuration.
type StorageConfig struct {
	Dir        string `envconfig:"STORAGE_DIR" default:"./data/sessions"`
	Persistent bool   `envconfig:"STORAGE_PERSISTENT" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Generation: GenerationConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash",
			Timeout: 120 * time.Second,
			Retries: 2,
		},
		Preview: PreviewConfig{
			PreflightPoolSize: 4,
			PreflightTimeout:  2 * time.Second,
		},
		Storage: StorageConfig{
			Dir:        "./data/sessions",
			Persistent: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
