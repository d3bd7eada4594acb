package repository

import (
	"time"

	"github.com/okian/pong/internal/domain/grouping"
	"github.com/okian/pong/internal/domain/standings"
	"github.com/okian/pong/pkg/logger"
)

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithPersister sets where every committed change is saved.
func WithPersister(p Persister) Option {
	return func(s *SnapshotStore) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithAllocator sets the group allocator.
func WithAllocator(a *grouping.Allocator) Option {
	return func(s *SnapshotStore) {
		if a != nil {
			s.allocator = a
		}
	}
}

// WithCalculator sets the standings policy.
func WithCalculator(c *standings.Calculator) Option {
	return func(s *SnapshotStore) {
		if c != nil {
			s.calculator = c
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *SnapshotStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides how tournament, team and match ids are minted.
// newID may be called from concurrent writers.
func WithIDGenerator(newID func() string) Option {
	return func(s *SnapshotStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithDefaultMaxScore sets the score cap for tournaments created without one.
func WithDefaultMaxScore(maxScore int) Option {
	return func(s *SnapshotStore) {
		if maxScore > 0 {
			s.defaultMaxScore = maxScore
		}
	}
}

// WithClock sets the time source used to stamp changes.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}
