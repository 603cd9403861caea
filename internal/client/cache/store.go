// Package cache is the client's process-wide query cache: read-through
// entries keyed by query identity, coarse prefix invalidation after
// mutations, staleness windows, and age-based eviction.
//
// Concurrent reads are always safe. Writes happen only from mutation success
// handlers and the invalidation policy.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     any
	stale     bool
	fetchedAt time.Time
}

// Store holds cached query results.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time
}

// NewStore builds a Store. Entries older than staleTime read as misses;
// entries older than gcTime are dropped by GC.
func NewStore(staleTime, gcTime time.Duration) *Store {
	return &Store{
		entries:   make(map[string]*entry),
		staleTime: staleTime,
		gcTime:    gcTime,
		now:       time.Now,
	}
}

// Get returns the cached value for key. A stale or expired entry reads as a
// miss so the caller refetches.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	if s.staleTime > 0 && s.now().Sub(e.fetchedAt) > s.staleTime {
		return nil, false
	}
	return e.value, true
}

// Set stores a fresh value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{value: value, fetchedAt: s.now()}
}

// Invalidate marks every entry in the given prefix families stale and
// returns how many entries were touched.
func (s *Store) Invalidate(prefixes ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for key, e := range s.entries {
		for _, prefix := range prefixes {
			if keyMatches(key, prefix) {
				if !e.stale {
					e.stale = true
					touched++
				}
				break
			}
		}
	}
	return touched
}

// Clear drops every entry. Called on logout so one account's cached lists
// never leak into another session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// GC evicts entries older than the eviction age and returns the count.
func (s *Store) GC() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	cutoff := s.now().Add(-s.gcTime)
	for key, e := range s.entries {
		if e.fetchedAt.Before(cutoff) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// Fetch is the read-through path: serve the cached value when fresh,
// otherwise call fn and cache its result. Errors are never cached.
func Fetch[T any](ctx context.Context, s *Store, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	var zero T
	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	s.Set(key, v)
	return v, nil
}
