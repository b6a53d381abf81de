// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"runtime"
	"time"
)

// Store backends accepted by StoreBackend.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// PublicBaseURL is the origin used when building share links and report URLs.
	PublicBaseURL string `koanf:"public_base_url"`

	// StoreBackend selects the local score store substrate: file or sqlite.
	StoreBackend string `koanf:"store_backend"`
	// StorePath is the JSON document or SQLite database path.
	StorePath string `koanf:"store_path"`

	// ScoreWeights overrides per-category weights of the comparison score.
	ScoreWeights map[string]float64 `koanf:"score_weights"`
	// RequirementsFile optionally replaces the built-in requirement rows.
	RequirementsFile string `koanf:"requirements_file"`

	// RemoteURL and RemoteAnonKey enable the cloud backend. Both empty means local only.
	RemoteURL     string        `koanf:"remote_url"`
	RemoteAnonKey string        `koanf:"remote_anon_key"`
	RemoteTimeout time.Duration `koanf:"remote_timeout"`
	// JWTSecret verifies session tokens locally when set.
	JWTSecret string `koanf:"jwt_secret"`

	// RedisAddr backs the averages cache; empty keeps it in memory.
	RedisAddr   string        `koanf:"redis_addr"`
	AveragesTTL time.Duration `koanf:"averages_ttl"`

	// Sync pipeline sizing.
	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`
	DedupeSize  int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
	// LeaderboardRefresh is how often published profiles are re-ranked.
	LeaderboardRefresh time.Duration `koanf:"leaderboard_refresh"`

	// RateLimitRPS and RateLimitBurst bound API requests per second. Zero disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// Report e-mail delivery.
	MailAPIURL string `koanf:"mail_api_url"`
	MailAPIKey string `koanf:"mail_api_key"`
	MailFrom   string `koanf:"mail_from"`
}

// New returns a Config holding the defaults. Context is accepted first to
// follow the project convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		PublicBaseURL:       "http://localhost:9080",
		StoreBackend:        StoreFile,
		StorePath:           "satoshi-data.json",
		RemoteTimeout:       10 * time.Second,
		AveragesTTL:         5 * time.Minute,
		QueueSize:           1024,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		MaxLeaderboardLimit: 100,
		LeaderboardRefresh:  time.Minute,
		RateLimitRPS:        50,
		RateLimitBurst:      100,
		MailAPIURL:          "https://api.resend.com/emails",
		MailFrom:            "Could I Be Satoshi <noreply@example.com>",
	}
}

// CloudEnabled reports whether a remote backend is configured.
func (c *Config) CloudEnabled() bool {
	return c.RemoteURL != "" && c.RemoteAnonKey != ""
}

// MailEnabled reports whether report e-mails can be sent.
func (c *Config) MailEnabled() bool {
	return c.MailAPIKey != "" && c.MailAPIURL != ""
}
