package cache

import (
	"testing"
	"time"
)

// withClock swaps the store's clock for a controllable one.
func withClock[V any](s *TTLStore[V]) *time.Time {
	current := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }
	return &current
}

func TestTTLStoreExpiry(t *testing.T) {
	store := NewTTLStore[string](time.Minute)
	clock := withClock(store)

	store.Set("k", "v")
	if got, ok := store.Get("k"); !ok || got != "v" {
		t.Fatalf("Get before expiry = %q, %v; want v, true", got, ok)
	}

	*clock = clock.Add(61 * time.Second)
	if _, ok := store.Get("k"); ok {
		t.Error("Get after expiry should miss")
	}
	if store.Len() != 0 {
		t.Errorf("expired entry not dropped on access, Len = %d", store.Len())
	}
}

func TestTTLStoreSetResetsExpiry(t *testing.T) {
	store := NewTTLStore[int](time.Minute)
	clock := withClock(store)

	store.Set("k", 1)
	*clock = clock.Add(45 * time.Second)
	store.Set("k", 2)
	*clock = clock.Add(45 * time.Second)

	if got, ok := store.Get("k"); !ok || got != 2 {
		t.Errorf("Get after refresh = %d, %v; want 2, true", got, ok)
	}
}

func TestTTLStoreSetIfAbsent(t *testing.T) {
	store := NewTTLStore[struct{}](time.Hour)
	clock := withClock(store)

	if !store.SetIfAbsent("user@example.com", struct{}{}) {
		t.Fatal("first SetIfAbsent should succeed")
	}
	if store.SetIfAbsent("user@example.com", struct{}{}) {
		t.Error("second SetIfAbsent within TTL should be rejected")
	}

	*clock = clock.Add(2 * time.Hour)
	if !store.SetIfAbsent("user@example.com", struct{}{}) {
		t.Error("SetIfAbsent after expiry should succeed again")
	}
}

func TestTTLStorePurge(t *testing.T) {
	store := NewTTLStore[int](time.Minute)
	clock := withClock(store)

	store.Set("a", 1)
	store.Set("b", 2)
	*clock = clock.Add(2 * time.Minute)
	store.Set("c", 3)

	if removed := store.Purge(); removed != 2 {
		t.Errorf("Purge removed %d, want 2", removed)
	}
	if _, ok := store.Get("c"); !ok {
		t.Error("live entry removed by Purge")
	}
}
