// Package ratelimit provides TTL'd flags and counters on a shared store.
//
// Flags model cooldowns and locks ("absent means not currently limited"),
// counters model attempt budgets. Increments are atomic with
// TTL-attached-on-create so concurrent bursts never undercount.
package ratelimit

import (
	"context"
	"time"
)

// Store is a shared key/value store with per-key TTL semantics.
//
// Every key expires on its own; callers never persist these durably.
type Store interface {
	// SetFlagNX sets a flag with the given TTL only when it is absent and
	// reports whether this call set it.
	SetFlagNX(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// HasFlag reports whether the flag currently exists.
	HasFlag(ctx context.Context, key string) (bool, error)

	// Increment atomically increments a counter, attaching the TTL when the
	// counter is created by this call, and returns the new value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Count returns the current counter value, or 0 when absent.
	Count(ctx context.Context, key string) (int64, error)

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
}
