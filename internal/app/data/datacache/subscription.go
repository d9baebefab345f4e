// internal/app/data/datacache/subscription.go

// Package datacache serves entity collections cache-first. Each Subscription
// owns one logical feed (an entity type scoped to the active organization):
// it answers from the TTL cache when it can, fetches from the store when it
// must, and falls back to an expired cache copy when the store is down.
package datacache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ErrClosed is returned by Load and Refresh after Close.
var ErrClosed = errors.New("subscription closed")

// FetchFunc loads the authoritative collection from the store.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// KeyFunc derives the cache key at call time. Deriving per operation (rather
// than fixing the key at construction) means an organization switch takes
// effect on the next Load/Refresh without rebuilding the subscription.
type KeyFunc func() string

// Snapshot is the externally visible state of a subscription at one instant.
type Snapshot[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
	AsOf    time.Time
}

// Subscription is a cache-backed feed of T. All state transitions happen
// under mu; every fetch carries a sequence stamp taken at initiation, and a
// fetch whose stamp is no longer the latest discards its result. That keeps
// a slow older fetch from clobbering the outcome of a newer one.
type Subscription[T any] struct {
	cache *cachestore.Store
	ttl   time.Duration
	key   KeyFunc
	fetch FetchFunc[T]
	log   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	data    T
	hasData bool
	loading bool
	err     error
	asOf    time.Time
	closed  bool
}

func New[T any](cache *cachestore.Store, ttl time.Duration, key KeyFunc, fetch FetchFunc[T], logger *zap.Logger) *Subscription[T] {
	return &Subscription[T]{
		cache: cache,
		ttl:   ttl,
		key:   key,
		fetch: fetch,
		log:   logger,
	}
}

// Load serves the feed cache-first. A fresh cache entry is returned
// immediately and revalidated in the background; a miss falls through to a
// synchronous fetch. A cache entry whose payload no longer decodes as T is
// invalidated and treated as a miss.
func (s *Subscription[T]) Load(ctx context.Context) (T, error) {
	key := s.key()

	if entry, ok := s.cache.Get(ctx, key, s.ttl); ok {
		var v T
		if err := json.Unmarshal(entry.Payload, &v); err == nil {
			stamp, ok := s.applyCachedAndBegin(v, entry.Time())
			if !ok {
				var zero T
				return zero, ErrClosed
			}
			go s.revalidate(stamp, key)
			return v, nil
		}
		s.cache.Invalidate(ctx, key)
	}

	stamp, ok := s.begin()
	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return s.complete(ctx, stamp, key)
}

// Refresh fetches synchronously, bypassing the cache read. Mutations call it
// after invalidating the key so the next snapshot reflects the store.
func (s *Subscription[T]) Refresh(ctx context.Context) (T, error) {
	key := s.key()
	stamp, ok := s.begin()
	if !ok {
		var zero T
		return zero, ErrClosed
	}
	return s.complete(ctx, stamp, key)
}

// InvalidateCache removes the feed's cache entry without re-fetching.
func (s *Subscription[T]) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx, s.key())
}

// Snapshot returns the current state without touching cache or store.
func (s *Subscription[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Data:    s.data,
		HasData: s.hasData,
		Loading: s.loading,
		Err:     s.err,
		AsOf:    s.asOf,
	}
}

// Close marks the subscription defunct. In-flight fetches finish but their
// results are dropped silently.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.loading = false
}

// begin stamps a new fetch. The stamp is the latest until another begin.
func (s *Subscription[T]) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.seq++
	s.loading = true
	return s.seq, true
}

// applyCachedAndBegin exposes a decoded cache entry and stamps the
// background revalidation in one critical section. The hit is a produced
// result, so loading clears here; the stamp alone guards the revalidation.
func (s *Subscription[T]) applyCachedAndBegin(v T, asOf time.Time) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	s.data = v
	s.hasData = true
	s.err = nil
	s.asOf = asOf
	s.seq++
	s.loading = false
	return s.seq, true
}

// revalidate runs a stamped fetch detached from the request that triggered it.
func (s *Subscription[T]) revalidate(stamp uint64, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := s.complete(ctx, stamp, key); err != nil {
		s.log.Debug("background revalidation failed",
			zap.String("key", key), zap.Error(err))
	}
}

// complete runs the fetch for a stamped request and applies the result if the
// stamp is still the latest. On fetch failure with no data held, an expired
// cache entry is served instead; the fetch error stays recorded either way.
func (s *Subscription[T]) complete(ctx context.Context, stamp uint64, key string) (T, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return s.completeError(ctx, stamp, key, err)
	}

	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || stamp != s.seq {
		return s.data, nil
	}
	// The cache write happens inside the critical section so a superseding
	// fetch cannot interleave between apply and write.
	s.cache.Set(ctx, key, data)
	s.data = data
	s.hasData = true
	s.err = nil
	s.asOf = now
	s.loading = false
	return data, nil
}

func (s *Subscription[T]) completeError(ctx context.Context, stamp uint64, key string, fetchErr error) (T, error) {
	// Read the stale copy outside the lock; it is only used if we still hold
	// no data when the result is applied.
	var stale T
	var staleAt time.Time
	staleOK := false
	if entry, ok := s.cache.GetIgnoringExpiry(ctx, key); ok {
		if err := json.Unmarshal(entry.Payload, &stale); err == nil {
			staleOK = true
			staleAt = entry.Time()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || stamp != s.seq {
		return s.data, nil
	}
	s.loading = false
	s.err = fetchErr
	if !s.hasData && staleOK {
		s.data = stale
		s.hasData = true
		s.asOf = staleAt
		s.log.Warn("fetch failed, serving expired cache entry",
			zap.String("key", key), zap.Error(fetchErr))
		return stale, nil
	}
	return s.data, fetchErr
}
