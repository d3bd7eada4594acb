package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pong/internal/simulate"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		name        = flag.String("name", "", "Tournament name (default: generated)")
		teams       = flag.Int("teams", simulate.DefaultTeams, "Number of teams")
		groups      = flag.Int("groups", simulate.DefaultGroups, "Number of groups")
		qualifiers  = flag.Int("qualifiers", simulate.DefaultQualifiers, "Teams per group entering the knockout, 0 for all")
		thirdPlace  = flag.Bool("third-place", false, "Play a third-place match")
		maxScore    = flag.Int("max-score", simulate.DefaultMaxScore, "Cups per side")
		concurrency = flag.Int("concurrency", simulate.DefaultConcurrency, "Concurrent score submissions")
		timeout     = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		seed        = flag.Uint64("seed", 0, "Seed for names and scores (default: random)")
		logFile     = flag.String("log", "", "Also write the log to this file")
		verbose     = flag.Bool("verbose", false, "Log every request")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closeLog, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL:     *baseURL,
		Name:        *name,
		Teams:       *teams,
		Groups:      *groups,
		Qualifiers:  *qualifiers,
		ThirdPlace:  *thirdPlace,
		MaxScore:    *maxScore,
		Concurrency: *concurrency,
		Timeout:     *timeout,
		Seed:        *seed,
		Verbose:     *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Invalid options: " + err.Error() + "\n")
		os.Exit(2)
	}

	stats, err := runner.Run(ctx)
	simulate.LogStats(ctx, stats)
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
