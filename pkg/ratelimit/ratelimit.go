// Package ratelimit counts failed attempts per key inside a fixed window.
// Counters live in Redis when a client is configured and in process memory
// otherwise, or while Redis is unreachable.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var failScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type entry struct {
	count   int64
	resetAt time.Time
}

type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
	log    *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]entry
}

func New(client *redis.Client, limit int, window time.Duration, log *zap.Logger) *Limiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{
		client: client,
		limit:  int64(limit),
		window: window,
		prefix: "rate_limit:login:",
		log:    log,
		now:    time.Now,
		local:  make(map[string]entry),
	}
}

// Blocked reports whether key has used up its attempts for the current window.
func (l *Limiter) Blocked(ctx context.Context, key string) bool {
	if l.client != nil {
		count, err := l.client.Get(ctx, l.prefix+key).Int64()
		switch {
		case err == nil:
			return count >= l.limit
		case errors.Is(err, redis.Nil):
			return false
		default:
			l.log.Warn("rate limit lookup failed, using local counter", zap.Error(err))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.current(key)
	return ok && e.count >= l.limit
}

// Fail records one failed attempt for key.
func (l *Limiter) Fail(ctx context.Context, key string) {
	if l.client != nil {
		err := failScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Err()
		if err == nil {
			return
		}
		l.log.Warn("rate limit update failed, using local counter", zap.Error(err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.current(key)
	if !ok {
		e = entry{resetAt: l.now().Add(l.window)}
	}
	e.count++
	l.local[key] = e
}

// Reset forgets every attempt recorded for key.
func (l *Limiter) Reset(ctx context.Context, key string) {
	if l.client != nil {
		if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
			l.log.Warn("rate limit reset failed", zap.Error(err))
		}
	}

	l.mu.Lock()
	delete(l.local, key)
	l.mu.Unlock()
}

// current must be called with mu held.
func (l *Limiter) current(key string) (entry, bool) {
	e, ok := l.local[key]
	if !ok {
		return entry{}, false
	}
	if !l.now().Before(e.resetAt) {
		delete(l.local, key)
		return entry{}, false
	}
	return e, true
}

// Connect parses a redis:// URL and checks the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
