// Package redislock provides per-key locks shared by every server process through Redis.
package redislock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix         = "pet-wallet:lock:"
	defaultRetryDelay = 10 * time.Millisecond
	releaseTimeout    = time.Second
)

// ErrNotAcquired indicates that the lock stayed taken until the context was done.
var ErrNotAcquired = errors.New("lock not acquired")

// Only the holder of the token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client is the subset of the redis client used by Locker.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Locker acquires locks with SET NX PX. A lock expires after ttl if its holder dies.
type Locker struct {
	client     Client
	ttl        time.Duration
	retryDelay time.Duration
}

// New returns a Locker whose locks expire after ttl.
func New(client Client, ttl time.Duration) *Locker {
	return &Locker{
		client:     client,
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
	}
}

// Lock polls Redis until the lock for key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Join(ErrNotAcquired, ctxErr)
			}

			return nil, err
		}

		if ok {
			break
		}

		timer := time.NewTimer(l.retryDelay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once

	unlock := func() {
		once.Do(func() {
			// The caller's ctx may be done already, the key must be released anyway.
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			if err := releaseScript.Run(releaseCtx, l.client, []string{k}, token).Err(); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("key", k).Msg("cannot release lock")
			}
		})
	}

	return unlock, nil
}
