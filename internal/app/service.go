// Package service wires the tournament store, its backends and the mirror
// pipeline, and exposes the engine operations the transports need.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pong/internal/adapters/mq/queue"
	"github.com/okian/pong/internal/adapters/mq/worker"
	"github.com/okian/pong/internal/adapters/repository"
	"github.com/okian/pong/internal/domain/dedupe"
	"github.com/okian/pong/internal/domain/grouping"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/standings"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

const (
	defaultMirrorWorkers   = 2
	defaultMirrorQueueSize = 256
	defaultMirrorRetries   = 3
	defaultMirrorBackoff   = 200 * time.Millisecond
	defaultIdempotencySize = 10000
	mirrorDrainTimeout     = 10 * time.Second
)

// Service implements the engine operations on top of a repository.Store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	deduper     dedupe.Deduper
	mirrorQueue *queue.InMemoryQueue
	mirrorPool  *worker.Pool
	unsubscribe func()

	// Configuration
	persister       repository.Persister
	mirror          worker.Saver
	mirrorWorkers   int
	mirrorQueueSize int
	mirrorRetries   int
	mirrorBackoff   time.Duration
	idempotencySize int
	seed            *int64
	points          *[3]int
	maxScore        int

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		mirrorWorkers:   defaultMirrorWorkers,
		mirrorQueueSize: defaultMirrorQueueSize,
		mirrorRetries:   defaultMirrorRetries,
		mirrorBackoff:   defaultMirrorBackoff,
		idempotencySize: defaultIdempotencySize,
		maxScore:        model.DefaultMaxScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the persisted tournaments and starts the mirror workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.NamedOrDiscard("service")
	}
	s.logger.Info(ctx, "starting tournament service...")

	var allocOpts []grouping.Option
	if s.seed != nil {
		allocOpts = append(allocOpts, grouping.WithSeed(*s.seed))
	}
	var calcOpts []standings.Option
	if s.points != nil {
		calcOpts = append(calcOpts, standings.WithPoints(s.points[0], s.points[1], s.points[2]))
	}
	storeOpts := []repository.Option{
		repository.WithLogger(s.logger.Named("store")),
		repository.WithAllocator(grouping.NewAllocator(allocOpts...)),
		repository.WithCalculator(standings.NewCalculator(calcOpts...)),
		repository.WithDefaultMaxScore(s.maxScore),
	}
	if s.persister != nil {
		storeOpts = append(storeOpts, repository.WithPersister(s.persister))
	}
	store := repository.NewSnapshotStore(storeOpts...)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("load tournaments: %w", err)
	}

	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))

	if s.mirror != nil {
		s.mirrorQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.mirrorQueueSize))
		s.mirrorPool = worker.NewPool(s.mirrorWorkers, s.mirrorQueue, s.mirror,
			worker.WithRetries(s.mirrorRetries),
			worker.WithBackoff(s.mirrorBackoff),
			worker.WithLogger(s.logger.Named("mirror")),
		)
		s.mirrorPool.Start(ctx)
		s.unsubscribe = store.Subscribe(s.enqueueMirror)
	}

	s.started = true
	fields := []logger.Field{
		logger.Int("tournaments", len(store.List(ctx))),
		logger.Int("idempotencySize", s.idempotencySize),
		logger.Bool("mirror", s.mirror != nil),
	}
	if s.persister != nil {
		fields = append(fields, logger.String("backend", s.persister.Name()))
	}
	s.logger.Info(ctx, "tournament service started", fields...)
	return nil
}

// Stop detaches the mirror and waits for its queue to drain.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping tournament service...")

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.mirrorPool != nil {
		drainCtx, cancel := context.WithTimeout(ctx, mirrorDrainTimeout)
		if err := s.mirrorPool.Shutdown(drainCtx); err != nil {
			s.logger.Warn(ctx, "mirror did not drain", logger.Error(err))
		}
		cancel()
		s.mirrorPool = nil
		s.mirrorQueue = nil
	}

	s.started = false
	s.logger.Info(ctx, "tournament service stopped")
}

// enqueueMirror runs under the store's write lock, so it must not block.
func (s *Service) enqueueMirror(c model.Change) {
	if err := s.mirrorQueue.Enqueue(context.Background(), c); err != nil {
		s.logger.Warn(context.Background(), "dropped mirror job",
			logger.Any("version", c.Version),
			logger.String("tournament", c.TournamentID),
			logger.Error(err),
		)
	}
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"mirror":          s.mirror != nil,
		"idempotencySize": s.idempotencySize,
	}
	if !s.started {
		return stats
	}

	var teams, matches, completed int
	list := s.store.List(context.Background())
	for _, t := range list {
		teams += t.Teams.Len()
		matches += len(t.Matches)
		for _, m := range t.Matches {
			if m.Base().Completed {
				completed++
			}
		}
	}
	stats["tournaments"] = len(list)
	stats["teams"] = teams
	stats["matches"] = matches
	stats["completedMatches"] = completed
	stats["version"] = s.store.Version()
	stats["idempotencyKeys"] = s.deduper.Size()
	if s.mirrorQueue != nil {
		queueLen := s.mirrorQueue.Len()
		stats["mirrorQueueLength"] = queueLen
		stats["mirrorLastVersion"] = s.mirrorPool.LastVersion()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
