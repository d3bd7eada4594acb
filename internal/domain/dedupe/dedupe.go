// Package dedupe tracks idempotency keys for mutating requests.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 10000

// Deduper records seen idempotency keys to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the request can be retried. Used when the
	// mutation the key guarded failed.
	Unrecord(ctx context.Context, key string)

	// Bind attaches a reference (the affected tournament id) to a recorded key.
	Bind(ctx context.Context, key, ref string)

	// Lookup returns the reference bound to key.
	Lookup(ctx context.Context, key string) (string, bool)

	Size() int64
}

type entry struct {
	seq uint64
	ref string
}

type slot struct {
	key string
	seq uint64
}

// inMemoryDeduper keeps keys in a map and their insertion order in a FIFO.
// Unrecorded keys leave a stale slot behind that eviction skips.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]entry
	fifo    []slot
	nextSeq uint64
	maxSize int // 0 or negative = UNBOUNDED
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]entry)
	return d
}

// SeenAndRecord implements Deduper.SeenAndRecord.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	d.nextSeq++
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.fifo = append(d.fifo, slot{key: key, seq: d.nextSeq})
	}
	d.seen[key] = entry{seq: d.nextSeq}
	d.size.Store(int64(len(d.seen)))
	return false
}

// Unrecord implements Deduper.Unrecord.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; !exists {
		return
	}
	delete(d.seen, key)
	d.size.Store(int64(len(d.seen)))
	if d.maxSize > 0 && len(d.fifo) > 2*d.maxSize {
		d.compact()
	}
}

// Bind implements Deduper.Bind. Unknown keys are ignored.
func (d *inMemoryDeduper) Bind(ctx context.Context, key, ref string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, exists := d.seen[key]; exists {
		e.ref = ref
		d.seen[key] = e
	}
}

// Lookup implements Deduper.Lookup.
func (d *inMemoryDeduper) Lookup(ctx context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, exists := d.seen[key]
	if !exists || e.ref == "" {
		return "", false
	}
	return e.ref, true
}

// evictOldest drops the oldest live key. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for len(d.fifo) > 0 {
		s := d.fifo[0]
		d.fifo[0] = slot{}
		d.fifo = d.fifo[1:]
		if e, ok := d.seen[s.key]; ok && e.seq == s.seq {
			delete(d.seen, s.key)
			return
		}
	}
}

// compact drops stale slots. Must be called with d.mu held.
func (d *inMemoryDeduper) compact() {
	live := make([]slot, 0, len(d.seen))
	for _, s := range d.fifo {
		if e, ok := d.seen[s.key]; ok && e.seq == s.seq {
			live = append(live, s)
		}
	}
	d.fifo = live
}

// Size returns the current number of keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
