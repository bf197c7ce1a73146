package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// releaseScript deletes the lock only when it still holds the caller's
// token, so an expired lock reacquired by another worker is never released
// from under it.
var releaseScript = redis.NewScript(1, `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

type LocksRepository struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewLocksRepository(pool *redis.Pool, logger *zap.SugaredLogger) *LocksRepository {
	return &LocksRepository{pool: pool, logger: logger}
}

// Acquire takes the named lock for ttl. It does not block; acquired is
// false when another holder owns the lock.
func (r *LocksRepository) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return false, fmt.Errorf("get redis connection: %w", err)
	}
	defer conn.Close()

	res, err := redis.String(conn.Do("SET", name, token, "NX", "PX", ttl.Milliseconds()))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return false, nil
		}
		return false, fmt.Errorf("SET NX: %w", err)
	}

	return res == "OK", nil
}

func (r *LocksRepository) Release(ctx context.Context, name, token string) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := releaseScript.Do(conn, name, token); err != nil {
		return fmt.Errorf("release script: %w", err)
	}

	return nil
}
