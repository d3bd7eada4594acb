// Package grouping partitions teams into balanced groups.
package grouping

import (
	"fmt"
	"math/rand"
	"time"
)

// Allocator shuffles teams and deals them into groups in snake order.
// It is not safe for concurrent use; callers serialize access.
type Allocator struct {
	rng *rand.Rand
}

// NewAllocator creates an allocator. Without options it is seeded from the clock.
func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // shuffling teams, not secrets
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate splits teamIDs into g groups whose sizes differ by at most one.
// The input slice is not modified.
func (a *Allocator) Allocate(teamIDs []string, g int) ([][]string, error) {
	if g < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGroupCount, g)
	}
	if len(teamIDs) > 0 && g > len(teamIDs) {
		return nil, fmt.Errorf("%w: %d groups for %d teams", ErrInvalidGroupCount, g, len(teamIDs))
	}

	shuffled := append([]string(nil), teamIDs...)
	a.shuffle(shuffled)
	return Snake(shuffled, g), nil
}

// shuffle is an in-place Fisher-Yates permutation.
func (a *Allocator) shuffle(ids []string) {
	for i := len(ids) - 1; i > 0; i-- {
		j := a.rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Snake deals ids into g groups, reversing direction on every row:
// 0,1,..,g-1 then g-1,..,1,0 and so on.
func Snake(ids []string, g int) [][]string {
	groups := make([][]string, g)
	for i := range groups {
		groups[i] = make([]string, 0, (len(ids)+g-1)/g)
	}
	for i, id := range ids {
		row, col := i/g, i%g
		if row%2 == 1 {
			col = g - 1 - col
		}
		groups[col] = append(groups[col], id)
	}
	return groups
}
