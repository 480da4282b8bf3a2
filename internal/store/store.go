package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store closed")

// ZEntry is one member of a sorted set
type ZEntry struct {
	Member string
	Score  float64
}

// Store is the key-value capability the game state lives in: hashes,
// sorted sets, and per-key expiry. Expired keys behave as absent on
// every read. All single-key operations are atomic.
type Store interface {
	// HSet sets fields on the hash at key, creating it if absent.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HGet reads one hash field; the bool reports whether it exists.
	HGet(ctx context.Context, key, field string) (string, bool, error)
	// HGetAll returns all fields of the hash at key (empty map if absent).
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HDel removes fields from the hash at key.
	HDel(ctx context.Context, key string, fields ...string) error
	// Del removes key entirely.
	Del(ctx context.Context, key string) error
	// Expire sets the time-to-live for key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// ZAdd sets the score of member in the sorted set at key.
	ZAdd(ctx context.Context, key, member string, score float64) error
	// ZScore reads member's score; the bool reports whether it exists.
	ZScore(ctx context.Context, key, member string) (float64, bool, error)
	// ZRevRange returns members ordered by score descending (ties broken
	// by member ascending) from rank start through stop inclusive.
	ZRevRange(ctx context.Context, key string, start, stop int) ([]ZEntry, error)

	Close() error
}
