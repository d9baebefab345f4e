// internal/app/store/cache/cachestore.go

// Package cachestore persists TTL'd snapshots of entity collections. Caching
// here is purely a performance optimization: every failure path degrades to
// a cache miss (and a log line), never to an error for the caller.
package cachestore

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Entry is one cached snapshot: the serialized payload and the instant it
// was captured.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
}

// Time returns the capture instant of the entry.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Store wraps a KV with TTL semantics.
type Store struct {
	kv  KV
	log *zap.Logger
}

func New(kv KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, log: logger}
}

// Key builds the cache key for an entity collection scoped to an
// organization. Keys differ per organization so a switch never serves
// another organization's rows.
func Key(entity string, orgID primitive.ObjectID) string {
	if orgID.IsZero() {
		return entity + "-no-org"
	}
	return entity + "-" + orgID.Hex()
}

// Get returns the entry for key if it is present, parseable, and younger
// than ttl. A corrupt entry is deleted and reported as a miss (self-heal).
// An expired entry is reported as a miss but kept in place: it is only ever
// overwritten by the next Set or removed by Invalidate, so the error path
// can still serve it via GetIgnoringExpiry.
func (s *Store) Get(ctx context.Context, key string, ttl time.Duration) (Entry, bool) {
	entry, ok := s.read(ctx, key)
	if !ok {
		return Entry{}, false
	}
	if time.Now().UnixMilli() >= entry.Timestamp+ttl.Milliseconds() {
		s.log.Debug("cache expired", zap.String("key", key))
		return Entry{}, false
	}
	s.log.Debug("cache hit", zap.String("key", key))
	return entry, true
}

// GetIgnoringExpiry returns the entry for key regardless of age. Error-path
// fallback only: a live read must go through Get.
func (s *Store) GetIgnoringExpiry(ctx context.Context, key string) (Entry, bool) {
	return s.read(ctx, key)
}

// Set captures payload under key with the current timestamp, replacing any
// prior entry. Write failures are logged and swallowed.
func (s *Store) Set(ctx context.Context, key string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	entry := Entry{Payload: raw, Timestamp: time.Now().UnixMilli()}
	data, err := json.Marshal(entry)
	if err != nil {
		s.log.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.log.Debug("cache set", zap.String("key", key))
}

// Invalidate removes the entry for key. Idempotent.
func (s *Store) Invalidate(ctx context.Context, key string) {
	s.remove(ctx, key)
	s.log.Debug("cache invalidated", zap.String("key", key))
}

func (s *Store) read(ctx context.Context, key string) (Entry, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Timestamp == 0 {
		// Corrupt entry: delete it and treat as a miss.
		s.log.Warn("cache entry corrupt, removing", zap.String("key", key), zap.Error(err))
		s.remove(ctx, key)
		return Entry{}, false
	}
	return entry, true
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.kv.Delete(ctx, key); err != nil {
		s.log.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
