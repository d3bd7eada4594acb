package config_test

import (
	"errors"
	"testing"

	"github.com/okian/pong/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Engine.MaxScore, convey.ShouldEqual, 10)
			convey.So(cfg.Engine.PointsWin, convey.ShouldEqual, 3)
			convey.So(cfg.Engine.PointsDraw, convey.ShouldEqual, 1)
			convey.So(cfg.Storage.Backend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.Storage.Key, convey.ShouldEqual, "tournaments")
			convey.So(cfg.Mirror.Backend, convey.ShouldEqual, config.BackendNone)
			convey.So(cfg.MCP.Path, convey.ShouldEqual, "/mcp")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		cfg := config.New()

		cases := map[string]func(){
			"empty addr":             func() { cfg.Addr = "" },
			"unknown log format":     func() { cfg.LogFormat = "xml" },
			"zero max score":         func() { cfg.Engine.MaxScore = 0 },
			"draw worth a win":       func() { cfg.Engine.PointsDraw = 3 },
			"unknown backend":        func() { cfg.Storage.Backend = "tape" },
			"file without path":      func() { cfg.Storage.Path = "" },
			"redis without url":      func() { cfg.Storage.Backend = config.BackendRedis },
			"s3 without bucket":      func() { cfg.Storage.Backend = config.BackendS3 },
			"unsupported sql driver": func() { cfg.Storage.Backend, cfg.Storage.SQL.Driver = config.BackendSQL, "mysql" },
			"mirror without workers": func() { cfg.Mirror.Backend, cfg.Mirror.Workers = config.BackendMemory, 0 },
			"relative mcp path":      func() { cfg.MCP.Path = "mcp" },
		}
		for name, breakIt := range cases {
			convey.Convey("When it has "+name, func() {
				breakIt()
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When a mirror is fully configured", func() {
			cfg.Mirror.Backend = config.BackendMemory
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
