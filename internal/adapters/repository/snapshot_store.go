package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pong/internal/domain/grouping"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/standings"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

// snapshot is an immutable view of the whole collection. Tournaments reachable
// from a published snapshot are never modified again.
type snapshot struct {
	version uint64
	order   []string
	byID    map[string]*model.Tournament
}

func (s *snapshot) list() []*model.Tournament {
	out := make([]*model.Tournament, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// fork copies the index so it can be edited; tournaments are shared until replaced.
func (s *snapshot) fork() *snapshot {
	next := &snapshot{
		version: s.version,
		order:   append([]string(nil), s.order...),
		byID:    make(map[string]*model.Tournament, len(s.byID)),
	}
	for id, t := range s.byID {
		next.byID[id] = t
	}
	return next
}

func (s *snapshot) put(t *model.Tournament) {
	if _, ok := s.byID[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.byID[t.ID] = t
}

func (s *snapshot) remove(id string) {
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}

// SnapshotStore is a copy-on-write Store. Readers load the current snapshot
// without locking; writers serialize, clone the tournament they change,
// persist the result and only then publish it.
type SnapshotStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[snapshot]

	persister       Persister
	allocator       *grouping.Allocator
	calculator      *standings.Calculator
	logger          logger.Logger
	newID           func() string
	defaultMaxScore int
	now             func() time.Time

	subMu   sync.RWMutex
	subs    map[uint64]Listener
	nextSub uint64
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		newID:           model.NewID,
		defaultMaxScore: model.DefaultMaxScore,
		now:             time.Now,
		subs:            make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.allocator == nil {
		s.allocator = grouping.NewAllocator()
	}
	if s.calculator == nil {
		s.calculator = standings.NewCalculator()
	}
	if s.logger == nil {
		s.logger = logger.NamedOrDiscard("store")
	}
	s.snapshot.Store(&snapshot{byID: make(map[string]*model.Tournament)})
	return s
}

// List implements Store.List.
func (s *SnapshotStore) List(ctx context.Context) []*model.Tournament {
	return s.snapshot.Load().list()
}

// Get implements Store.Get.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*model.Tournament, error) {
	t, ok := s.snapshot.Load().byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: tournament %s", ErrNotFound, id)
	}
	return t, nil
}

// Version implements Store.Version.
func (s *SnapshotStore) Version() uint64 {
	return s.snapshot.Load().version
}

// Subscribe implements Store.Subscribe. Listeners run on the writer's
// goroutine while the write lock is held, so they must not block or call back
// into the store.
func (s *SnapshotStore) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SnapshotStore) notify(c model.Change) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(c)
	}
}

// Load implements Store.Load. Corrupt records are logged and skipped; any
// other persister failure aborts the load and keeps the current state.
func (s *SnapshotStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	loaded, err := s.persister.Load(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCorruptRecord) {
			metrics.RecordPersistError(s.persister.Name(), "load")
			return fmt.Errorf("load from %s: %w", s.persister.Name(), err)
		}
		s.logger.Warn(ctx, "skipped corrupt tournament records",
			logger.String("backend", s.persister.Name()), logger.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := &snapshot{byID: make(map[string]*model.Tournament, len(loaded))}
	for _, t := range loaded {
		s.calculator.Apply(t)
		next.put(t)
	}
	s.snapshot.Store(next)
	metrics.IncrementSnapshotPublishes()
	updateTotals(next)
	s.logger.Info(ctx, "tournaments loaded",
		logger.String("backend", s.persister.Name()), logger.Int("count", len(next.order)))
	return nil
}

// commit runs apply against a fork of the current snapshot and, when it and
// the save succeed, publishes the fork and notifies listeners.
func (s *SnapshotStore) commit(ctx context.Context, op string, kind model.ChangeKind, id string, apply func(next *snapshot) error) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			s.logger.Debug(ctx, "mutation rejected",
				logger.String("op", op), logger.String("tournament", id), logger.Error(err))
		}
		metrics.RecordMutation(op, result, float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Load().fork()
	if err := apply(next); err != nil {
		return err
	}
	next.version++
	list := next.list()

	if s.persister != nil {
		saveStart := time.Now()
		if err := s.persister.Save(ctx, list); err != nil {
			metrics.RecordPersistError(s.persister.Name(), "save")
			s.logger.Error(ctx, "failed to persist tournaments",
				logger.String("op", op), logger.String("backend", s.persister.Name()), logger.Error(err))
			return fmt.Errorf("save to %s: %w", s.persister.Name(), err)
		}
		metrics.RecordPersistLatency(s.persister.Name(), float64(time.Since(saveStart).Microseconds())/1000)
	}

	s.snapshot.Store(next)
	metrics.IncrementSnapshotPublishes()
	updateTotals(next)

	s.notify(model.Change{
		Version:      next.version,
		Kind:         kind,
		Operation:    op,
		TournamentID: id,
		Snapshot:     list,
		At:           s.now(),
	})
	s.logger.Debug(ctx, "mutation committed",
		logger.String("op", op), logger.String("tournament", id), logger.Any("version", next.version))
	return nil
}

// mutate applies fn to a private clone of tournament id.
func (s *SnapshotStore) mutate(ctx context.Context, op, id string, fn func(t *model.Tournament) error) (*model.Tournament, error) {
	var out *model.Tournament
	err := s.commit(ctx, op, model.ChangeUpdated, id, func(next *snapshot) error {
		cur, ok := next.byID[id]
		if !ok {
			return fmt.Errorf("%w: tournament %s", ErrNotFound, id)
		}
		t := cur.Clone()
		if err := fn(t); err != nil {
			return err
		}
		next.put(t)
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func updateTotals(snap *snapshot) {
	var teams, matches, completed int
	for _, t := range snap.byID {
		teams += t.Teams.Len()
		matches += len(t.Matches)
		for _, m := range t.Matches {
			if m.Base().Completed {
				completed++
			}
		}
	}
	metrics.UpdateTournamentTotals(len(snap.byID), teams, matches, completed)
}
