package persistence

import (
	"context"
	"sync"

	"github.com/okian/pong/internal/domain/model"
)

// Memory keeps the encoded collection in process. Saved tournaments are
// encoded, so later changes to them never leak into what Load returns.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory { return &Memory{} }

// Load implements Persister.Load.
func (m *Memory) Load(ctx context.Context) ([]*model.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return model.Decode(m.data)
}

// Save implements Persister.Save.
func (m *Memory) Save(ctx context.Context, tournaments []*model.Tournament) error {
	data, err := model.Encode(tournaments)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Bytes returns the last saved payload.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...)
}

// Name implements Persister.Name.
func (m *Memory) Name() string { return "memory" }

// Close implements Persister.Close.
func (m *Memory) Close() error { return nil }
