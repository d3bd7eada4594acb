// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers sources on top.
// - Nested sections map to nested keys: storage.backend, mirror.workers, ...
package config

import "time"

// Storage backends understood by the persistence factory.
const (
	BackendNone   = ""
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendS3     = "s3"
	BackendSQL    = "sql"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimit `koanf:"rate_limit"`
	CORS      CORS      `koanf:"cors"`
	Engine    Engine    `koanf:"engine"`
	Storage   Storage   `koanf:"storage"`
	Mirror    Mirror    `koanf:"mirror"`
	MCP       MCP       `koanf:"mcp"`

	// IdempotencySize bounds the number of remembered Idempotency-Key values.
	IdempotencySize int `koanf:"idempotency_size"`
}

// RateLimit is a per-client token bucket. RPS <= 0 disables limiting.
type RateLimit struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// CORS lists the origins allowed to call the API from a browser.
type CORS struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Engine tunes tournament rules.
type Engine struct {
	// Seed makes group draws reproducible; 0 seeds from the clock.
	Seed       int64 `koanf:"seed"`
	MaxScore   int   `koanf:"max_score"`
	PointsWin  int   `koanf:"points_win"`
	PointsDraw int   `koanf:"points_draw"`
	PointsLoss int   `koanf:"points_loss"`
}

// Storage selects and configures a persistence backend.
type Storage struct {
	Backend  string `koanf:"backend"`
	Path     string `koanf:"path"`
	RedisURL string `koanf:"redis_url"`
	Key      string `koanf:"key"`
	S3       S3     `koanf:"s3"`
	SQL      SQL    `koanf:"sql"`
}

// S3 addresses an S3-compatible bucket. Endpoint targets R2 or MinIO.
type S3 struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	PathStyle bool   `koanf:"path_style"`
}

// SQL configures the gorm backend. Driver is sqlite or postgres.
type SQL struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// Mirror is an optional second backend written asynchronously after every save.
type Mirror struct {
	Storage      `koanf:",squash"`
	Workers      int           `koanf:"workers"`
	QueueSize    int           `koanf:"queue_size"`
	Retries      int           `koanf:"retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

// MCP exposes read-only tournament tools over the Model Context Protocol.
type MCP struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       RateLimit{RPS: 50, Burst: 100},
		CORS:            CORS{AllowedOrigins: []string{"*"}},
		Engine: Engine{
			MaxScore:   10,
			PointsWin:  3,
			PointsDraw: 1,
			PointsLoss: 0,
		},
		Storage: Storage{
			Backend: BackendFile,
			Path:    "tournaments.json",
			Key:     "tournaments",
			SQL:     SQL{Driver: "sqlite", DSN: "pong.db"},
		},
		Mirror: Mirror{
			Workers:      2,
			QueueSize:    256,
			Retries:      3,
			RetryBackoff: 200 * time.Millisecond,
		},
		MCP:             MCP{Enabled: true, Path: "/mcp"},
		IdempotencySize: 10_000,
	}
}
