package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLocalCounterBlocksAtLimit(t *testing.T) {
	ctx := context.Background()
	l := New(nil, 3, time.Minute, nil)

	for i := 0; i < 2; i++ {
		l.Fail(ctx, "a@welfare.test")
	}
	if l.Blocked(ctx, "a@welfare.test") {
		t.Fatalf("two failures must not block with a limit of three")
	}

	l.Fail(ctx, "a@welfare.test")
	if !l.Blocked(ctx, "a@welfare.test") {
		t.Fatalf("third failure should block")
	}
	if l.Blocked(ctx, "b@welfare.test") {
		t.Fatalf("keys must be counted separately")
	}

	l.Reset(ctx, "a@welfare.test")
	if l.Blocked(ctx, "a@welfare.test") {
		t.Fatalf("reset should clear the counter")
	}
}

func TestLocalCounterExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := New(nil, 1, time.Minute, nil)
	l.now = func() time.Time { return now }

	l.Fail(ctx, "key")
	if !l.Blocked(ctx, "key") {
		t.Fatalf("expected key to be blocked")
	}

	now = now.Add(time.Minute)
	if l.Blocked(ctx, "key") {
		t.Fatalf("window elapsed, key should be free")
	}
}

func TestUnreachableRedisFallsBackToLocal(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	ctx := context.Background()
	l := New(client, 1, time.Minute, nil)

	l.Fail(ctx, "key")
	if !l.Blocked(ctx, "key") {
		t.Fatalf("failure should be counted locally while redis is down")
	}
	l.Reset(ctx, "key")
	if l.Blocked(ctx, "key") {
		t.Fatalf("reset should clear the local counter")
	}
}
