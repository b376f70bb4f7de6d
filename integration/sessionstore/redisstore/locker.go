package redisstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// releaseScript deletes the lock only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker is a session.Locker shared by every instance using the same Redis.
// Locks expire after TTL so a crashed holder cannot block a key forever.
type Locker struct {
	client redis.UniversalClient
	keys   keys
	ttl    time.Duration
	retry  time.Duration
}

var _ session.Locker = (*Locker)(nil)

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockTTL sets the lock expiry (default 10s).
func WithLockTTL(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithLockRetry sets the polling interval while waiting for a held lock (default 25ms).
func WithLockRetry(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// WithLockPrefix namespaces the lock keys.
func WithLockPrefix(prefix string) LockerOption {
	return func(l *Locker) {
		if prefix != "" {
			l.keys.prefix = prefix
		}
	}
}

// NewLocker creates a distributed locker over client.
func NewLocker(client redis.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		keys:   keys{prefix: DefaultPrefix},
		ttl:    10 * time.Second,
		retry:  25 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls SET NX PX until it owns key or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	name := l.keys.lock(key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return nil, storageError(err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// release even when the caller's context is already done
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.client, []string{name}, token).Err()
	}, nil
}
