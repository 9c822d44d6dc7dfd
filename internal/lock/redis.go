package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/stride/backend/internal/logger"
)

const (
	defaultLockTTL      = 30 * time.Second
	defaultPollInterval = 50 * time.Millisecond
	keyPrefix           = "stride:lock:"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker shared across instances. Locks expire after ttl so a
// crashed holder cannot block a user forever.
type Redis struct {
	rdb  goredis.UniversalClient
	ttl  time.Duration
	poll time.Duration
}

// NewRedis connects to addr and verifies the connection
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisWithClient(rdb, ttl), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(rdb goredis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Redis{rdb: rdb, ttl: ttl, poll: defaultPollInterval}
}

// Lock polls SET NX PX until the key is taken or ctx is done
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.rdb, []string{redisKey}, token).Err(); err != nil {
			logger.Ctx(ctx).Warn("failed to release lock", logger.String("key", key), logger.Err(err))
		}
	}, nil
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.rdb.Close()
}
