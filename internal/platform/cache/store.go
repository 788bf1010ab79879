package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/sleeper-trades/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
	storedAt  time.Time
}

// Store is a TTL key/value cache with an optional capacity bound.
// When full, the stalest entry (earliest stored) is evicted to make room.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	flight   resilience.SingleFlight
}

// NewStore builds a store with the given TTL and capacity.
// ttl <= 0 means entries never expire; capacity <= 0 means unbounded.
func NewStore(ttl time.Duration, capacity int) *Store {
	return &Store{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	now := time.Now()
	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	if s.capacity > 0 {
		if _, exists := s.entries[key]; !exists && len(s.entries) >= s.capacity {
			s.evictStalestLocked(now)
		}
	}
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
		storedAt:  now,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value for key, loading and caching it on miss.
// Concurrent misses for the same key are coalesced into a single load.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// evictStalestLocked drops an expired entry when one exists, otherwise the
// entry stored longest ago. Callers must hold the write lock.
func (s *Store) evictStalestLocked(now time.Time) {
	victim := ""
	var victimStoredAt time.Time
	for key, e := range s.entries {
		if s.ttl > 0 && !e.expiresAt.After(now) {
			victim = key
			break
		}
		if victim == "" || e.storedAt.Before(victimStoredAt) {
			victim = key
			victimStoredAt = e.storedAt
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}
