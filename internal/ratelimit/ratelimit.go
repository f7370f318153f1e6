// Package ratelimit caps how often a key (contact, client IP) may act.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"careconnect-backend/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const defaultPerMinute = 60

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New returns a Redis-backed limiter when a client is given and an
// in-process one otherwise
func New(client *redis.Client, prefix string, perMinute int) Limiter {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	if client == nil {
		return NewMemory(perMinute, perMinute)
	}
	return NewRedis(client, prefix, perMinute, time.Minute)
}

// NewRedisClient builds a client from config, nil when Redis is not configured
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Redis is a fixed-window counter shared by every instance of the service
type Redis struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedis(client *redis.Client, prefix string, limit int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, limit: int64(limit), window: window}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.limit, nil
}

// Memory keeps one token bucket per key in process. Keys idle long enough
// to have refilled completely are dropped.
type Memory struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	entries   map[string]*entry
	lastSweep time.Time
	now       func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemory(perMinute, burst int) *Memory {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	if burst <= 0 {
		burst = perMinute
	}
	refill := time.Duration(float64(burst) / float64(perMinute) * float64(time.Minute))
	return &Memory{
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
		idle:    max(refill, time.Minute),
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (l *Memory) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep runs at most once per idle period
func (l *Memory) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.entries, key)
		}
	}
}
