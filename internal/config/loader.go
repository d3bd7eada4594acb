package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys.
const (
	envPrefix  = "PONG_"
	envConfig  = "PONG_CONFIG"
	envDotFile = "PONG_ENV_FILE"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PONG_CONFIG is set
//  3. env (prefix PONG_, "__" separates nested keys: PONG_STORAGE__BACKEND)
//
// A .env file (or PONG_ENV_FILE) is read first and only fills variables that
// are not already set.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotFile)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
}

// Validate checks the settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Engine.MaxScore < 1 {
		return fmt.Errorf("%w: engine.max_score must be positive", ErrInvalidConfig)
	}
	if !(c.Engine.PointsWin > c.Engine.PointsDraw && c.Engine.PointsDraw >= c.Engine.PointsLoss) {
		return fmt.Errorf("%w: engine points must satisfy win > draw >= loss", ErrInvalidConfig)
	}
	if err := c.Storage.validate("storage"); err != nil {
		return err
	}
	if c.Mirror.Backend != BackendNone {
		if err := c.Mirror.Storage.validate("mirror"); err != nil {
			return err
		}
		if c.Mirror.Workers < 1 || c.Mirror.QueueSize < 1 {
			return fmt.Errorf("%w: mirror.workers and mirror.queue_size must be positive", ErrInvalidConfig)
		}
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("%w: mcp.path must start with /", ErrInvalidConfig)
	}
	return nil
}

func (s Storage) validate(section string) error {
	switch s.Backend {
	case BackendMemory:
	case BackendFile:
		if s.Path == "" {
			return fmt.Errorf("%w: %s.path is required for the file backend", ErrInvalidConfig, section)
		}
	case BackendRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("%w: %s.redis_url is required for the redis backend", ErrInvalidConfig, section)
		}
	case BackendS3:
		if s.S3.Bucket == "" {
			return fmt.Errorf("%w: %s.s3.bucket is required for the s3 backend", ErrInvalidConfig, section)
		}
	case BackendSQL:
		if s.SQL.Driver != "sqlite" && s.SQL.Driver != "postgres" {
			return fmt.Errorf("%w: %s.sql.driver must be sqlite or postgres", ErrInvalidConfig, section)
		}
		if s.SQL.DSN == "" {
			return fmt.Errorf("%w: %s.sql.dsn is required for the sql backend", ErrInvalidConfig, section)
		}
	default:
		return fmt.Errorf("%w: unknown %s.backend %q", ErrInvalidConfig, section, s.Backend)
	}
	return nil
}
