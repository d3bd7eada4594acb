// Package persistence stores the tournament collection in one of several
// backends. Every backend keeps the same JSON records produced by model.Encode.
package persistence

import (
	"context"

	"github.com/okian/pong/internal/domain/model"
)

// DefaultKey names the stored collection in key-value backends.
const DefaultKey = "tournaments"

// Persister loads and saves the full tournament collection.
type Persister interface {
	Load(ctx context.Context) ([]*model.Tournament, error)
	Save(ctx context.Context, tournaments []*model.Tournament) error
	Name() string
	Close() error
}
