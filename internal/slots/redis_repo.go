package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/narkk-storefront/pkg/redis"
)

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Touch(ctx context.Context, key string, ttl time.Duration) (string, error)
	Del(ctx context.Context, keys ...string) error
	SlotKey(scope, slot string) string
}

// RedisRepository keeps slots as plain string keys. With a ttl, every read
// or write pushes the expiry out so only idle sessions lose their slots.
type RedisRepository struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisRepository binds the repository to a redis client. A zero ttl keeps slots forever.
func NewRedisRepository(client redisStore, ttl time.Duration) (*RedisRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisRepository{client: client, ttl: ttl}, nil
}

func (r *RedisRepository) Load(ctx context.Context, scope, key string) ([]byte, error) {
	raw, err := r.client.Touch(ctx, r.client.SlotKey(scope, key), r.ttl)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return []byte(raw), nil
}

func (r *RedisRepository) Save(ctx context.Context, scope, key string, value []byte) error {
	if err := r.client.Set(ctx, r.client.SlotKey(scope, key), value, r.ttl); err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, scope, key string) error {
	if err := r.client.Del(ctx, r.client.SlotKey(scope, key)); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}
