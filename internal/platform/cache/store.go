package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries bounds the store; a season of event files is a few
// hundred entries.
const DefaultMaxEntries = 512

type Option func(*Store)

// WithMaxEntries caps the number of live keys. Values below one disable the cap.
func WithMaxEntries(n int) Option {
	return func(s *Store) { s.maxEntries = n }
}

type entry struct {
	value     any
	expiresAt time.Time
	storedAt  uint64
}

// Stats counts lookups since the store was created.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Store is an in-process TTL cache for feed payloads and derived tables.
// A nil *Store is a valid pass-through that never caches.
type Store struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	flight     singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64

	mu      sync.Mutex
	entries map[string]entry
	seq     uint64
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if s == nil || key == "" {
		return nil, false
	}

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && s.expired(e) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if s == nil || key == "" {
		return
	}

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked()
	}
	s.seq++
	s.entries[key] = entry{value: value, expiresAt: expiresAt, storedAt: s.seq}
}

// evictLocked drops expired entries, or the oldest one when none expired.
func (s *Store) evictLocked() {
	var (
		oldestKey string
		oldestSeq uint64
		dropped   bool
	)
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
			dropped = true
			continue
		}
		if oldestKey == "" || e.storedAt < oldestSeq {
			oldestKey, oldestSeq = key, e.storedAt
		}
	}
	if !dropped && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

func (s *Store) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	return Stats{Entries: n, Hits: s.hits.Load(), Misses: s.misses.Load()}
}

// GetOrLoad returns the cached value for key or runs loader once across
// concurrent callers. The loader ignores the cancellation of whichever caller
// started it; a caller whose ctx ends stops waiting and gets ctx.Err().
// Loader errors are returned and never cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if s == nil || key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		loaded, err := loader(flightCtx)
		if err != nil {
			return nil, err
		}
		s.Set(flightCtx, key, loaded)
		return loaded, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Load is the typed form of GetOrLoad.
func Load[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	value, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q holds %T", key, value)
	}
	return typed, nil
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && !e.expiresAt.After(s.now())
}
