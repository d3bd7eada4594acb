// Package repository holds the canonical tournament collection and is the only
// place tournament state is mutated.
package repository

import (
	"context"

	"github.com/okian/pong/internal/domain/model"
)

// Listener receives every committed change, in commit order.
type Listener func(model.Change)

// Persister loads and saves the full tournament collection.
type Persister interface {
	Load(ctx context.Context) ([]*model.Tournament, error)
	Save(ctx context.Context, tournaments []*model.Tournament) error
	Name() string
}

// TeamInput is the caller-supplied part of a team.
type TeamInput struct {
	ID      string
	Name    string
	Players []string
}

// Store provides read/write access to tournaments.
//
// Tournaments returned by a Store are shared snapshots and must be treated as
// read-only; every mutation publishes fresh copies.
type Store interface {
	// List returns every tournament in creation order.
	List(ctx context.Context) []*model.Tournament
	// Get returns one tournament or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Tournament, error)

	Create(ctx context.Context, t *model.Tournament) (*model.Tournament, error)
	Replace(ctx context.Context, t *model.Tournament) (*model.Tournament, error)
	Delete(ctx context.Context, id string) error

	AddTeam(ctx context.Context, id string, team TeamInput) (*model.Tournament, error)
	UpdateTeam(ctx context.Context, id string, team TeamInput) (*model.Tournament, error)
	RemoveTeam(ctx context.Context, id, teamID string) (*model.Tournament, error)

	SetGroupCount(ctx context.Context, id string, groups int) (*model.Tournament, error)
	Reshuffle(ctx context.Context, id string) (*model.Tournament, error)

	// RecordScore stores clamped scores and, when complete is set, completes the match.
	RecordScore(ctx context.Context, id, matchID string, score1, score2 int, complete bool) (*model.Tournament, error)
	CompleteMatch(ctx context.Context, id, matchID string) (*model.Tournament, error)
	StartKnockout(ctx context.Context, id string) (*model.Tournament, error)

	// Subscribe registers fn for future changes and returns its cancel func.
	Subscribe(fn Listener) (unsubscribe func())
	// Load replaces the in-memory state with what the persister holds.
	Load(ctx context.Context) error
	// Version is the number of committed changes since Load.
	Version() uint64
}
