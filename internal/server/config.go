// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the scoreline service.
package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	defaultPort              = "3000"
	defaultMaxMessageSize    = 512
	defaultRateLimitBurst    = 20
	defaultRateLimitInterval = time.Second
	defaultMaxBodyBytes      = 10 << 20
	defaultShutdownTimeout   = 10 * time.Second
)

// RateLimitConfig defines the per-client budget for mutation requests.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port              string        `env:"PORT" default:"3000"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE" default:"512"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" default:"20"`
	RateLimitRefill   time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" default:"1s"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES" default:"10485760"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel          string        `env:"LOG_LEVEL" default:"info"`
	LogFormat         string        `env:"LOG_FORMAT" default:"text"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable it only behind a proxy that sets those headers.
	TrustProxyHeaders bool          `env:"TRUST_PROXY_HEADERS" default:"false"`
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := Config{
		Port:            defaultPort,
		MaxMessageSize:  defaultMaxMessageSize,
		RateLimitBurst:  defaultRateLimitBurst,
		RateLimitRefill: defaultRateLimitInterval,
		MaxBodyBytes:    defaultMaxBodyBytes,
		ShutdownTimeout: defaultShutdownTimeout,
		LogLevel:        "info",
		LogFormat:       "text",
	}
	return &cfg
}

// LoadConfig reads an optional .env file and the process environment.
// Values that are missing or out of range fall back to defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	sanitized := sanitizeConfig(cfg)
	return &sanitized, nil
}

func sanitizeConfig(cfg Config) Config {
	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}

	if cfg.RateLimitRefill <= 0 {
		cfg.RateLimitRefill = defaultRateLimitInterval
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOrigins)
	return cfg
}

// Addr returns the listen address. A bare port number is bound on all
// interfaces.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// RateLimit returns the mutation rate limit settings.
func (c Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{
		Burst:          c.RateLimitBurst,
		RefillInterval: c.RateLimitRefill,
	}
}

func parseOrigins(origins []string) []string {
	parsed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			parsed = append(parsed, trimmed)
		}
	}
	return parsed
}
