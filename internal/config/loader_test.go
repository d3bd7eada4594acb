package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/pong/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("PONG_ADDR", ":8080")
			t.Setenv("PONG_LOG_FORMAT", "json")
			t.Setenv("PONG_IDEMPOTENCY_SIZE", "42")
			t.Setenv("PONG_STORAGE__BACKEND", "redis")
			t.Setenv("PONG_STORAGE__REDIS_URL", "redis://localhost:6379/0")
			t.Setenv("PONG_ENGINE__SEED", "42")
			t.Setenv("PONG_RATE_LIMIT__RPS", "2.5")
			t.Setenv("PONG_CORS__ALLOWED_ORIGINS", "https://a.example,https://b.example")
			t.Setenv("PONG_MIRROR__BACKEND", "s3")
			t.Setenv("PONG_MIRROR__S3__BUCKET", "backups")
			t.Setenv("PONG_MIRROR__RETRY_BACKOFF", "1s")

			cfg, err := config.Load(ctx)

			convey.Convey("Then nested keys override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.IdempotencySize, convey.ShouldEqual, 42)
				convey.So(cfg.Storage.Backend, convey.ShouldEqual, config.BackendRedis)
				convey.So(cfg.Storage.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")
				convey.So(cfg.Engine.Seed, convey.ShouldEqual, 42)
				convey.So(cfg.RateLimit.RPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.RateLimit.Burst, convey.ShouldEqual, 100)
				convey.So(cfg.CORS.AllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
				convey.So(cfg.Mirror.Backend, convey.ShouldEqual, config.BackendS3)
				convey.So(cfg.Mirror.S3.Bucket, convey.ShouldEqual, "backups")
				convey.So(cfg.Mirror.RetryBackoff, convey.ShouldEqual, time.Second)
				convey.So(cfg.Mirror.Workers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeTempFile(t, "pong.yaml", `
# comments are fine
addr: ":9090"
engine:
  max_score: 21
  points_win: 2
  points_draw: 1
storage:
  backend: sql
  sql:
    driver: postgres
    dsn: "postgres://pong@localhost/pong"
mcp:
  enabled: false
`)
			t.Setenv("PONG_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Engine.MaxScore, convey.ShouldEqual, 21)
				convey.So(cfg.Engine.PointsWin, convey.ShouldEqual, 2)
				convey.So(cfg.Storage.Backend, convey.ShouldEqual, config.BackendSQL)
				convey.So(cfg.Storage.SQL.Driver, convey.ShouldEqual, "postgres")
				convey.So(cfg.Storage.Key, convey.ShouldEqual, "tournaments")
				convey.So(cfg.MCP.Enabled, convey.ShouldBeFalse)
			})

			convey.Convey("And env vars take precedence over the file", func() {
				t.Setenv("PONG_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Engine.MaxScore, convey.ShouldEqual, 21)
			})
		})

		convey.Convey("When a .env file is given", func() {
			path := writeTempFile(t, "pong.env", "PONG_ADDR=:6060\nPONG_LOG_LEVEL=debug\n")
			t.Setenv("PONG_ENV_FILE", path)
			t.Setenv("PONG_LOG_LEVEL", "warn")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills only unset variables", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			})
			os.Unsetenv("PONG_ADDR")
		})

		convey.Convey("When the .env file named explicitly is missing", func() {
			t.Setenv("PONG_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv("PONG_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the YAML file empties addr", func() {
			t.Setenv("PONG_CONFIG", writeTempFile(t, "empty.yaml", "addr: \"\"\n"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars(t *testing.T) {
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] != '=' {
				continue
			}
			if key := kv[:i]; len(key) > 5 && key[:5] == "PONG_" {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			break
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
