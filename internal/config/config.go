// Package config defines service configuration and its layered loader.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is the badger directory. Empty keeps all documents in memory.
	DataDir string `koanf:"data_dir"`

	// ActivityQueueSize bounds the in-memory activity queue.
	ActivityQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of activity workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the activity id cache. Values <= 0 disable eviction.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultRecommendationLimit applies when a request omits limit.
	DefaultRecommendationLimit int `koanf:"default_recommendation_limit" validate:"gte=1"`

	// MaxRecommendationLimit caps the limit query parameter of recommendation endpoints.
	MaxRecommendationLimit int `koanf:"max_recommendation_limit" validate:"gtefield=DefaultRecommendationLimit"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gte=1"`

	// Points overrides the points awarded per activity kind.
	Points map[string]int64 `koanf:"points"`

	// DefaultPoints is awarded for activity kinds without an entry in Points.
	DefaultPoints int64 `koanf:"default_points" validate:"gte=0"`

	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"gte=0"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MetricsNamespace prefixes every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config with defaults. The context is reserved for loaders
// that need it.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                   "info",
		LogFormat:                  "text",
		Addr:                       ":9080",
		ActivityQueueSize:          10_000,
		WorkerCount:                runtime.NumCPU() * 2,
		DedupeSize:                 100_000,
		DefaultRecommendationLimit: 10,
		MaxRecommendationLimit:     50,
		MaxLeaderboardLimit:        100,
		DefaultPoints:              1,
		RateLimitPerMinute:         600,
		CORSAllowedOrigins:         []string{"*"},
		MetricsNamespace:           "campusconnect",
	}
}
