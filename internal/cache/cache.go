// Package cache provides an in-memory TTL cache with single-flight
// computation: concurrent requests for the same key trigger at most one
// underlying compute.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store caches computed values per key with a wall-clock TTL. A TTL <= 0
// disables caching entirely: every call recomputes, though concurrent calls
// for one key still collapse into a single computation.
type Store[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
	group   singleflight.Group
	now     func() time.Time
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached value for key while fresh, otherwise runs
// compute and stores the result. force skips the freshness check but still
// joins an in-flight computation instead of starting a second one. A failed
// compute leaves any previous entry untouched; the error is returned to this
// caller only.
func (s *Store[T]) GetOrCompute(ctx context.Context, key string, force bool, compute func(context.Context) (T, error)) (T, error) {
	if !force {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.set(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Get returns the value for key if present and not expired.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.ttl <= 0 {
		return zero, false
	}
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return zero, false
	}
	return e.value, true
}

// Invalidate drops the entry for key, if any.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Size returns the number of stored entries, expired ones included.
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CleanExpired removes expired entries and returns how many were dropped.
func (s *Store[T]) CleanExpired() int {
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

func (s *Store[T]) set(key string, value T) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[T]{value: value, expiresAt: s.now().Add(s.ttl)}
}
