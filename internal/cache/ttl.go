// Package cache provides a small TTL-based in-memory store.
//
// It replaces the process-lifetime maps that used to back rate limiting
// and split sessions: entries expire, expiry is injectable for tests, and
// the life cycle is explicit instead of "until the process dies".
package cache

import (
	"sync"
	"time"
)

// TTLStore is a concurrency-safe map whose entries expire after a fixed
// duration. Expired entries are dropped lazily on access and in bulk by
// Purge.
type TTLStore[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewTTLStore creates a store whose entries live for ttl.
func NewTTLStore[V any](ttl time.Duration) *TTLStore[V] {
	return &TTLStore[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set stores value under key, resetting its expiry.
func (s *TTLStore[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Get returns the live value for key, if any.
func (s *TTLStore[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// SetIfAbsent stores value only when no live entry exists for key.
// Returns true when the value was stored. This is the rate-limit
// primitive: a successful SetIfAbsent means "allowed, now on cooldown".
func (s *TTLStore[V]) SetIfAbsent(key string, value V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && !s.now().After(e.expiresAt) {
		return false
	}
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
	return true
}

// Delete removes key immediately.
func (s *TTLStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Purge drops every expired entry and returns how many were removed.
// Call it periodically from a background goroutine if the key space is
// large; small deployments can rely on lazy expiry alone.
func (s *TTLStore[V]) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, including not-yet-purged
// expired ones.
func (s *TTLStore[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
