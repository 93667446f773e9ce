// Package cache provides the replay-prevention store for one-time OAuth
// authorization codes.  The store answers exactly one question atomically:
// "has this key been seen before?"  Entries expire on their own so the
// cache stays bounded.
package cache

import (
    "context"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// ReplayStore marks one-time keys as used.  MarkUsed returns true when the
// caller is the first to present the key; every later call within the TTL
// returns false.  The check and the mark are a single atomic step so two
// concurrent presentations of the same key cannot both pass.
type ReplayStore interface {
    MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NewReplayStore returns a Redis-backed store, or the in-process fallback
// when no Redis client is available.  The fallback is correct for a single
// server instance; multi-instance deployments need Redis so all instances
// share one view of used codes.
func NewReplayStore(rdb *redis.Client) ReplayStore {
    if rdb == nil {
        return NewMemoryReplayStore()
    }
    return &redisReplayStore{rdb: rdb}
}

type redisReplayStore struct{ rdb *redis.Client }

// MarkUsed relies on SET NX for the atomic check-and-set.
func (s *redisReplayStore) MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
    return s.rdb.SetNX(ctx, key, "1", ttl).Result()
}

// MemoryReplayStore is the in-process fallback.  A mutex serializes the
// check-and-set; expired entries are purged lazily on each call.
type MemoryReplayStore struct {
    mu      sync.Mutex
    entries map[string]time.Time // key -> expiry
    now     func() time.Time     // injectable for tests
}

func NewMemoryReplayStore() *MemoryReplayStore {
    return &MemoryReplayStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryReplayStore) MarkUsed(_ context.Context, key string, ttl time.Duration) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()

    now := s.now()
    for k, exp := range s.entries {
        if now.After(exp) {
            delete(s.entries, k)
        }
    }
    if exp, ok := s.entries[key]; ok && now.Before(exp) {
        return false, nil
    }
    s.entries[key] = now.Add(ttl)
    return true, nil
}
