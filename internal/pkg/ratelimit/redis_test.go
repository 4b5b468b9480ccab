package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close redis client: %v", err)
		}
	})

	return NewRedis(client), mr
}

func TestRedisSetFlagNX(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	set, err := store.SetFlagNX(ctx, "cooldown:a", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set {
		t.Fatalf("expected first SetFlagNX to claim the flag")
	}

	set, err = store.SetFlagNX(ctx, "cooldown:a", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set {
		t.Fatalf("expected second SetFlagNX to be rejected")
	}

	mr.FastForward(time.Minute + time.Second)

	set, err = store.SetFlagNX(ctx, "cooldown:a", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set {
		t.Fatalf("expected SetFlagNX to succeed after expiry")
	}
}

func TestRedisHasFlag(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.HasFlag(ctx, "lock:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected missing flag to report false")
	}

	if _, err := store.SetFlagNX(ctx, "lock:a", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err = store.HasFlag(ctx, "lock:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected set flag to report true")
	}
}

func TestRedisIncrement(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	t.Run("SetsTTLOnlyOnCreate", func(t *testing.T) {
		n, err := store.Increment(ctx, "attempts:a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected first increment to return 1, got %d", n)
		}

		ttlAfterCreate := mr.TTL("ratelimit:attempts:a")
		if ttlAfterCreate <= 0 {
			t.Fatalf("expected TTL to be set on create, got %v", ttlAfterCreate)
		}

		mr.FastForward(30 * time.Second)

		n, err = store.Increment(ctx, "attempts:a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected second increment to return 2, got %d", n)
		}

		// The window must not slide on subsequent failures.
		if got := mr.TTL("ratelimit:attempts:a"); got > ttlAfterCreate-30*time.Second {
			t.Fatalf("expected TTL to keep counting down, got %v", got)
		}
	})

	t.Run("CounterExpiresWithWindow", func(t *testing.T) {
		mr.FastForward(time.Minute)

		n, err := store.Increment(ctx, "attempts:a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected counter to restart after expiry, got %d", n)
		}
	})
}

func TestRedisCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx, "attempts:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected missing counter to read 0, got %d", n)
	}

	for range 3 {
		if _, err := store.Increment(ctx, "attempts:a", time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	n, err = store.Count(ctx, "attempts:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected counter to read 3, got %d", n)
	}
}

func TestRedisDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SetFlagNX(ctx, "cooldown:a", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Increment(ctx, "attempts:a", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Delete(ctx, "cooldown:a", "attempts:a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := store.HasFlag(ctx, "cooldown:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected flag to be deleted")
	}

	n, err := store.Count(ctx, "attempts:a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected counter to be deleted, got %d", n)
	}
}
