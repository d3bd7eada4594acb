package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/pong/internal/domain/model"
)

// RedisClient is the part of go-redis the backend needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis stores the collection under a single key.
type Redis struct {
	client RedisClient
	key    string
	closer func() error
}

// NewRedis wraps an existing client.
func NewRedis(client RedisClient, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key, closer: func() error { return nil }}
}

// DialRedis connects to url (redis:// or rediss://) and checks the connection.
func DialRedis(ctx context.Context, url, key string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %w", ErrBackendConfig, err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	r := NewRedis(client, key)
	r.closer = client.Close
	return r, nil
}

// Load implements Persister.Load. A missing key is an empty collection.
func (r *Redis) Load(ctx context.Context) ([]*model.Tournament, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return model.Decode(data)
}

// Save implements Persister.Save.
func (r *Redis) Save(ctx context.Context, tournaments []*model.Tournament) error {
	data, err := model.Encode(tournaments)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Name implements Persister.Name.
func (r *Redis) Name() string { return "redis" }

// Close implements Persister.Close.
func (r *Redis) Close() error { return r.closer() }
