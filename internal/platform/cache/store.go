package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/last-man-standing/internal/platform/resilience"
)

type entry struct {
	value    any
	storedAt time.Time
	expired  bool
}

// Entry is a cached value with the time it was stored.
type Entry struct {
	Value    any
	StoredAt time.Time
	// Fresh is false once the entry outlived the store TTL.
	Fresh bool
}

// Store is an in-process TTL cache. Expired entries are not evicted: they stay
// available through Lookup as the last good value for a key, so callers can
// serve stale data when the loader fails.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces the clock used to stamp and age entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value only while it is fresh.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	e, ok := s.Lookup(ctx, key)
	if !ok || !e.Fresh {
		return nil, false
	}
	return e.Value, true
}

// Lookup returns the last stored value for key regardless of age.
func (s *Store) Lookup(_ context.Context, key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}

	return Entry{
		Value:    e.value,
		StoredAt: e.storedAt,
		Fresh:    !e.expired && (s.ttl <= 0 || s.now().Sub(e.storedAt) < s.ttl),
	}, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:    value,
		storedAt: s.now(),
	}
	s.mu.Unlock()
}

// Expire marks key as no longer fresh without dropping it, so the next
// GetOrLoad reloads while Lookup still returns the old value.
func (s *Store) Expire(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.expired = true
		s.entries[key] = e
	}
	s.mu.Unlock()
}

// GetOrLoad returns the fresh cached value or calls loader once per key across
// concurrent callers and stores its result.
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

// GetOrLoadStale behaves like GetOrLoad but, when the loader fails and a previous
// value exists for key, returns that value with stale=true and the load error
// swallowed. The load error is returned only when nothing was ever stored.
func (s *Store) GetOrLoadStale(ctx context.Context, key string, loader func(context.Context) (any, error)) (value any, stale bool, err error) {
	value, err = s.GetOrLoad(ctx, key, loader)
	if err == nil {
		return value, false, nil
	}

	last, ok := s.Lookup(ctx, key)
	if !ok {
		return nil, false, err
	}
	return last.Value, true, nil
}
