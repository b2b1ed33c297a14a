package ratelimit

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Decision captures a limiter verdict plus header metadata.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines the common interface.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter counts requests per key in fixed one-minute windows.
type MemoryLimiter struct {
	limit int
	mu    sync.Mutex
	store map[string]*window
}

type window struct {
	count int
	start time.Time
}

// NewMemoryLimiter builds the in-process limiter.
func NewMemoryLimiter(limit int) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, store: make(map[string]*window)}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	w, ok := m.store[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		w = &window{start: now}
		m.store[key] = w
	}
	reset := w.start.Add(time.Minute)
	if w.count >= m.limit {
		return Decision{Limit: m.limit, Reset: reset}, nil
	}
	w.count++
	return Decision{Allowed: true, Limit: m.limit, Remaining: m.limit - w.count, Reset: reset}, nil
}

// RedisLimiter coordinates the same fixed-window scheme across
// replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	prefix string
}

// NewRedisLimiter builds the distributed limiter.
func NewRedisLimiter(client *redis.Client, limit int, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, prefix: prefix}
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := r.prefix + ":" + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if count == 1 {
		// First hit in this window owns the expiry.
		if err := r.client.Expire(ctx, redisKey, time.Minute).Err(); err != nil {
			return Decision{}, err
		}
	}
	reset := time.Now().Add(time.Minute)
	if ttl, err := r.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		reset = time.Now().Add(ttl)
	}
	if int(count) > r.limit {
		return Decision{Limit: r.limit, Reset: reset}, nil
	}
	return Decision{Allowed: true, Limit: r.limit, Remaining: r.limit - int(count), Reset: reset}, nil
}
