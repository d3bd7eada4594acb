package persistence

import (
	"context"
	"fmt"

	"github.com/okian/pong/internal/config"
)

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.Storage) (Persister, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: file path is required", ErrBackendConfig)
		}
		return NewFile(cfg.Path), nil
	case config.BackendRedis:
		r, err := DialRedis(ctx, cfg.RedisURL, key)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendS3:
		s, err := DialS3(ctx, cfg.S3, key)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQL:
		s, err := OpenSQL(cfg.SQL.Driver, cfg.SQL.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
