package service

import (
	"time"

	"github.com/okian/pong/internal/adapters/mq/worker"
	"github.com/okian/pong/internal/adapters/repository"
	"github.com/okian/pong/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPersister sets the primary backend. Without one, state lives only in memory.
func WithPersister(p repository.Persister) Option {
	return func(s *Service) {
		s.persister = p
	}
}

// WithMirror sets a secondary backend that receives every committed state
// asynchronously.
func WithMirror(m worker.Saver) Option {
	return func(s *Service) {
		s.mirror = m
	}
}

// WithMirrorWorkers sets the number of mirror workers.
func WithMirrorWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.mirrorWorkers = count
		}
	}
}

// WithMirrorQueueSize sets the maximum number of pending mirror jobs.
func WithMirrorQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.mirrorQueueSize = size
		}
	}
}

// WithMirrorRetry sets how often and how patiently a failed mirror write is retried.
func WithMirrorRetry(retries int, backoff time.Duration) Option {
	return func(s *Service) {
		if retries >= 0 {
			s.mirrorRetries = retries
		}
		if backoff > 0 {
			s.mirrorBackoff = backoff
		}
	}
}

// WithIdempotencySize sets how many idempotency keys are remembered.
func WithIdempotencySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.idempotencySize = size
		}
	}
}

// WithSeed makes group allocation reproducible.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = &seed
	}
}

// WithPointsPolicy sets the points for a win, a draw and a loss.
func WithPointsPolicy(win, draw, loss int) Option {
	return func(s *Service) {
		s.points = &[3]int{win, draw, loss}
	}
}

// WithDefaultMaxScore sets the score cap for tournaments created without one.
func WithDefaultMaxScore(maxScore int) Option {
	return func(s *Service) {
		if maxScore > 0 {
			s.maxScore = maxScore
		}
	}
}
