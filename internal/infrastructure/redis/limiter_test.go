package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := NewLimiter(rdb, "test", 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := l.Allow(ctx, "login", "10.0.0.1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed || d.Count != int64(i) {
			t.Fatalf("hit %d: %+v", i, d)
		}
	}

	d, err := l.Allow(ctx, "login", "10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth hit should be rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v", d.RetryAfter)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := NewLimiter(rdb, "test", 1, time.Minute)
	ctx := context.Background()

	if d, _ := l.Allow(ctx, "login", "a"); !d.Allowed {
		t.Fatal("first hit for a rejected")
	}
	if d, _ := l.Allow(ctx, "login", "b"); !d.Allowed {
		t.Fatal("other subject shares the counter")
	}
	if d, _ := l.Allow(ctx, "verify", "a"); !d.Allowed {
		t.Fatal("other scope shares the counter")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	s, rdb := newMiniRedis(t)
	l := NewLimiter(rdb, "test", 1, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "login", "a")
	if d, _ := l.Allow(ctx, "login", "a"); d.Allowed {
		t.Fatal("second hit inside window allowed")
	}

	s.FastForward(61 * time.Second)

	d, err := l.Allow(ctx, "login", "a")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !d.Allowed || d.Count != 1 {
		t.Fatalf("after window: %+v", d)
	}
}

func TestLimiter_ErrorWhenRedisDown(t *testing.T) {
	s, rdb := newMiniRedis(t)
	l := NewLimiter(rdb, "test", 1, time.Minute)
	s.Close()

	if _, err := l.Allow(context.Background(), "login", "a"); err == nil {
		t.Fatal("expected error with redis down")
	}
}
