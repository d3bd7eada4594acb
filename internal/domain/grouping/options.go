package grouping

import "math/rand"

// Option applies a configuration option to the Allocator.
type Option func(*Allocator)

// WithRand sets the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(a *Allocator) {
		if rng != nil {
			a.rng = rng
		}
	}
}

// WithSeed seeds a dedicated random source, making allocation reproducible.
func WithSeed(seed int64) Option {
	return func(a *Allocator) {
		a.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // shuffling teams, not secrets
	}
}
