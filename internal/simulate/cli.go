package simulate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/pong/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger on stdout and, when logFile is set, on
// that file too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func(), error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	var out io.Writer = os.Stdout
	closeFn := func() {}
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closeFn = func() { _ = file.Close() }
	}
	if err := logger.Init(logger.WithOutput(out), logger.WithLevel(level)); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closeFn, nil
}

// LogStats writes the final statistics.
func LogStats(ctx context.Context, stats *Stats) {
	var rps float64
	if stats.Duration > 0 {
		rps = float64(stats.Requests) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.String("tournament", stats.TournamentID),
		logger.Int("teams", stats.Teams),
		logger.Int("groups", stats.Groups),
		logger.Int("groupMatches", stats.GroupMatches),
		logger.Int("knockoutMatches", stats.KnockoutMatches),
		logger.Int("rounds", stats.Rounds),
		logger.Any("requests", stats.Requests),
		logger.Any("failed", stats.Failed),
		logger.Any("replays", stats.Replays),
		logger.String("champion", stats.Champion),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", rps))
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Pong Tournament Simulator
=========================

Plays a whole tournament against a running pong server: registers teams,
scores the group phase concurrently, seeds the bracket and plays it until a
champion is crowned.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -name string
        Tournament name (default: generated)
  -teams int
        Number of teams (default 12)
  -groups int
        Number of groups (default 3)
  -qualifiers int
        Teams per group entering the knockout, 0 for all (default 2)
  -third-place
        Play a third-place match
  -max-score int
        Cups per side (default 10)
  -concurrency int
        Concurrent score submissions (default 8)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed for names and scores (default: random)
  -log string
        Also write the log to this file
  -verbose
        Log every request
  -help
        Show this help message

Examples:
  # A default tournament
  go run ./cmd/simulate

  # A bigger field with a third-place match
  go run ./cmd/simulate -teams 32 -groups 8 -third-place -url http://localhost:8080
`)
}
