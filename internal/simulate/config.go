// Package simulate drives a running pong server through a whole tournament.
package simulate

import "time"

// Config holds configuration for a simulated tournament.
type Config struct {
	BaseURL     string        // Base URL of the service
	Name        string        // Tournament name; generated when empty
	Teams       int           // Number of teams to register
	Groups      int           // Number of groups
	Qualifiers  int           // Teams per group entering the bracket; 0 means all
	ThirdPlace  bool          // Play a third-place match
	MaxScore    int           // Cups per side
	Concurrency int           // Concurrent score submissions
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for names and scores; 0 picks one
	Verbose     bool          // Log every request
}

// Stats holds simulation statistics.
type Stats struct {
	TournamentID    string
	Teams           int
	Groups          int
	GroupMatches    int
	KnockoutMatches int
	Rounds          int
	Requests        int64
	Failed          int64
	Replays         int64
	Champion        string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
