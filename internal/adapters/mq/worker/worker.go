// Package worker drains mirror jobs and writes them to the secondary backend.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/pong/internal/adapters/mq/queue"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount = 2
	defaultRetries     = 3
	defaultBackoff     = 200 * time.Millisecond
)

// Saver is the mirror backend.
type Saver interface {
	Save(ctx context.Context, tournaments []*model.Tournament) error
	Name() string
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes mirror jobs.
type Worker interface {
	// Run consumes jobs until the queue is drained or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown waits for Run to return.
	Shutdown(ctx context.Context) error
}

// target serializes writes to one mirror and remembers the newest version it
// holds, so a slow worker never overwrites newer state with older.
type target struct {
	mu    sync.Mutex
	saver Saver
	last  uint64
}

func (t *target) lastVersion() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	target  *target
	name    string
	retries int
	backoff time.Duration

	done   chan struct{}
	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a worker that writes to saver.
func NewInMemoryWorker(q Queue, saver Saver, opts ...Option) *InMemoryWorker {
	return newWorker(q, &target{saver: saver}, opts...)
}

func newWorker(q Queue, t *target, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		target:  t,
		name:    "worker",
		retries: defaultRetries,
		backoff: defaultBackoff,
		done:    make(chan struct{}),
		logger:  logger.NamedOrDiscard("mirror"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run implements Worker.Run.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "mirror write failed",
					logger.Any("version", job.Version),
					logger.String("tournament", job.TournamentID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.Shutdown. The queue must be closed for Run to
// finish draining.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process writes one job, skipping versions the mirror already has.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: jobs travel by value through the channel
	t := w.target
	t.mu.Lock()
	defer t.mu.Unlock()

	if job.Version <= t.last {
		metrics.RecordMirrorStale()
		w.logger.Debug(ctx, "skipped stale mirror job",
			logger.Any("version", job.Version), logger.Any("last", t.last))
		return nil
	}

	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := t.saver.Save(ctx, job.Snapshot)
		if err == nil {
			t.last = job.Version
			metrics.RecordMirrorWrite("ok", float64(time.Since(start).Microseconds())/1000)
			return nil
		}
		if attempt >= w.retries {
			metrics.RecordMirrorWrite("error", float64(time.Since(start).Microseconds())/1000)
			metrics.RecordErrorByComponent("mirror", "write_failed")
			return fmt.Errorf("save to %s after %d attempts: %w", t.saver.Name(), attempt+1, err)
		}

		metrics.RecordMirrorRetry()
		delay := w.backoff << attempt
		w.logger.Warn(ctx, "retrying mirror write",
			logger.Int("attempt", attempt+1), logger.Duration("delay", delay), logger.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Pool runs several workers against one mirror.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	target  *target

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	stop    sync.Once

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers writing to saver. opts are
// applied to every worker.
func NewPool(workerCount int, q Queue, saver Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		target:  &target{saver: saver},
		logger:  logger.NamedOrDiscard("mirror-pool"),
	}
	for i := range p.workers {
		p.workers[i] = newWorker(q, p.target, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
	}
	return p
}

// Start runs the workers. They outlive ctx's cancellation so Shutdown can
// drain the queue; Shutdown's own deadline bounds the drain.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.started = true
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "mirror workers started",
		logger.Int("workers", len(p.workers)), logger.String("backend", p.target.saver.Name()))
}

// LastVersion is the newest store version written to the mirror.
func (p *Pool) LastVersion() uint64 {
	return p.target.lastVersion()
}

// Shutdown closes the queue, waits for the workers to drain it and stops
// them when ctx expires first.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.stop.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		p.mu.Lock()
		started, cancel := p.started, p.cancel
		p.mu.Unlock()
		if !started {
			return
		}
		defer cancel()

		for i, w := range p.workers {
			if werr := w.Shutdown(ctx); werr != nil {
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = werr
				cancel()
			}
		}
		metrics.UpdateWorkerActiveCount(0)
		p.logger.Info(ctx, "mirror workers stopped", logger.Any("last_version", p.LastVersion()))
	})
	return err
}
