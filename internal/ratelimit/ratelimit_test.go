package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterBurstThenRefill(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemory(3, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a@b.co")
		assert.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, _ := l.Allow(ctx, "a@b.co")
	assert.False(t, ok)

	// other keys are independent
	ok, _ = l.Allow(ctx, "c@d.co")
	assert.True(t, ok)

	// one token per 20s at 3/minute
	now = now.Add(20 * time.Second)
	ok, _ = l.Allow(ctx, "a@b.co")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a@b.co")
	assert.False(t, ok)
}

func TestNewWithoutRedisIsMemory(t *testing.T) {
	_, ok := New(nil, "otp", 3).(*Memory)
	assert.True(t, ok)
}

func TestMemoryLimiterDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemory(3, 3)
	l.now = func() time.Time { return now }

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := l.Allow(ctx, key)
		assert.NoError(t, err)
	}
	assert.Len(t, l.entries, 3)

	now = now.Add(2 * time.Minute)
	ok, _ := l.Allow(ctx, "10.0.0.4")
	assert.True(t, ok)
	assert.Len(t, l.entries, 1)

	// a returning key starts with a full bucket
	for i := 0; i < 3; i++ {
		ok, _ = l.Allow(ctx, "10.0.0.1")
		assert.True(t, ok, "attempt %d", i)
	}
}

func TestNewFloorsNonPositiveLimit(t *testing.T) {
	m, ok := New(nil, "login", 0).(*Memory)
	assert.True(t, ok)
	assert.Equal(t, 60, m.burst)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	r, ok := New(client, "login", -5).(*Redis)
	assert.True(t, ok)
	assert.Equal(t, int64(60), r.limit)
}
