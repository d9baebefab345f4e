package datacache_test

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	"go.uber.org/zap"
)

func newCache() *cachestore.Store {
	return cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
}

func fixedKey(key string) datacache.KeyFunc {
	return func() string { return key }
}

func staticFetch(v []string) datacache.FetchFunc[[]string] {
	return func(context.Context) ([]string, error) { return v, nil }
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestLoad_MissFetchesAndCaches(t *testing.T) {
	cache := newCache()
	sub := datacache.New(cache, time.Minute, fixedKey("people-x"), staticFetch([]string{"ana"}), zap.NewNop())
	defer sub.Close()

	got, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ana"}) {
		t.Errorf("Load = %v, want [ana]", got)
	}

	// The fetched collection is now cached.
	entry, ok := cache.Get(context.Background(), "people-x", time.Minute)
	if !ok {
		t.Fatal("expected a cache entry after the fetch")
	}
	var cached []string
	if err := json.Unmarshal(entry.Payload, &cached); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cached, []string{"ana"}) {
		t.Errorf("cached = %v, want [ana]", cached)
	}

	snap := sub.Snapshot()
	if !snap.HasData || snap.Err != nil || snap.Loading {
		t.Errorf("snapshot = %+v, want settled data", snap)
	}
}

func TestLoad_HitServesImmediatelyThenRevalidates(t *testing.T) {
	cache := newCache()
	cache.Set(context.Background(), "teams-x", []string{"cached"})

	sub := datacache.New(cache, time.Minute, fixedKey("teams-x"), staticFetch([]string{"fresh"}), zap.NewNop())
	defer sub.Close()

	got, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// The cached value is served without waiting for the store.
	if !reflect.DeepEqual(got, []string{"cached"}) {
		t.Errorf("Load = %v, want [cached]", got)
	}

	// Background revalidation replaces it with the store's answer.
	waitFor(t, func() bool {
		snap := sub.Snapshot()
		return reflect.DeepEqual(snap.Data, []string{"fresh"}) && !snap.Loading
	})
}

func TestLoad_HitClearsLoadingBeforeRevalidationFinishes(t *testing.T) {
	cache := newCache()
	cache.Set(context.Background(), "assets-x", []string{"cached"})

	started := make(chan struct{})
	release := make(chan struct{})
	sub := datacache.New(cache, time.Minute, fixedKey("assets-x"),
		func(context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"fresh"}, nil
		}, zap.NewNop())
	defer sub.Close()

	got, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"cached"}) {
		t.Fatalf("Load = %v, want [cached]", got)
	}

	// The hit produced a result, so the snapshot must read as settled even
	// while the background fetch is still blocked.
	<-started
	if snap := sub.Snapshot(); snap.Loading {
		t.Errorf("snapshot = %+v, want Loading false after a cache hit", snap)
	}

	close(release)
	waitFor(t, func() bool {
		snap := sub.Snapshot()
		return reflect.DeepEqual(snap.Data, []string{"fresh"}) && !snap.Loading
	})
}

func TestLoad_FetchFailureFallsBackToExpiredEntry(t *testing.T) {
	// An entry far past any TTL, written straight through the KV.
	kv := cachestore.NewMemoryKV()
	cache := cachestore.New(kv, zap.NewNop())
	stale := cachestore.Entry{
		Payload:   json.RawMessage(`["stale"]`),
		Timestamp: time.Now().Add(-24 * time.Hour).UnixMilli(),
	}
	raw, _ := json.Marshal(stale)
	if err := kv.Set(context.Background(), "assets-x", raw); err != nil {
		t.Fatal(err)
	}

	fetchErr := errors.New("store down")
	sub := datacache.New(cache, time.Minute, fixedKey("assets-x"),
		func(context.Context) ([]string, error) { return nil, fetchErr }, zap.NewNop())
	defer sub.Close()

	got, err := sub.Load(context.Background())
	if err != nil {
		t.Fatalf("Load should serve the stale copy, got error %v", err)
	}
	if !reflect.DeepEqual(got, []string{"stale"}) {
		t.Errorf("Load = %v, want [stale]", got)
	}

	// The failure stays visible even though data was served.
	snap := sub.Snapshot()
	if !errors.Is(snap.Err, fetchErr) {
		t.Errorf("snapshot err = %v, want %v", snap.Err, fetchErr)
	}
	if !snap.HasData {
		t.Error("expected stale data to be held")
	}
}

func TestLoad_FetchFailureWithoutFallbackReturnsError(t *testing.T) {
	fetchErr := errors.New("store down")
	sub := datacache.New(newCache(), time.Minute, fixedKey("people-x"),
		func(context.Context) ([]string, error) { return nil, fetchErr }, zap.NewNop())
	defer sub.Close()

	if _, err := sub.Load(context.Background()); !errors.Is(err, fetchErr) {
		t.Errorf("Load err = %v, want %v", err, fetchErr)
	}
	snap := sub.Snapshot()
	if snap.HasData {
		t.Error("expected no data after a failed first load")
	}
}

func TestRefresh_BypassesCacheRead(t *testing.T) {
	cache := newCache()
	cache.Set(context.Background(), "licenses-x", []string{"cached"})

	sub := datacache.New(cache, time.Minute, fixedKey("licenses-x"), staticFetch([]string{"fresh"}), zap.NewNop())
	defer sub.Close()

	got, err := sub.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Errorf("Refresh = %v, want [fresh] even with a warm cache", got)
	}
}

func TestNewestRequestWins(t *testing.T) {
	cache := newCache()

	var mu sync.Mutex
	var calls []chan []string
	started := make(chan int, 4)
	fetch := func(context.Context) ([]string, error) {
		mu.Lock()
		ch := make(chan []string, 1)
		calls = append(calls, ch)
		n := len(calls)
		mu.Unlock()
		started <- n
		return <-ch, nil
	}

	sub := datacache.New(cache, time.Minute, fixedKey("people-x"), fetch, zap.NewNop())
	defer sub.Close()

	var wg sync.WaitGroup
	results := make([][]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = sub.Refresh(context.Background())
		}(i)
		<-started // the i-th fetch is registered before the next begins
	}

	// Resolve the newer request first, then the older one.
	mu.Lock()
	first, second := calls[0], calls[1]
	mu.Unlock()
	second <- []string{"new"}
	waitFor(t, func() bool {
		return reflect.DeepEqual(sub.Snapshot().Data, []string{"new"})
	})
	first <- []string{"old"}
	wg.Wait()

	// The older resolution is discarded, in state and in cache.
	if got := sub.Snapshot().Data; !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("snapshot data = %v, want [new]", got)
	}
	entry, ok := cache.Get(context.Background(), "people-x", time.Minute)
	if !ok {
		t.Fatal("expected a cache entry")
	}
	var cached []string
	if err := json.Unmarshal(entry.Payload, &cached); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cached, []string{"new"}) {
		t.Errorf("cached = %v, want [new]", cached)
	}
}

func TestKeyFuncIsReDerivedPerOperation(t *testing.T) {
	cache := newCache()
	key := "people-orgA"
	sub := datacache.New(cache, time.Minute, func() string { return key }, staticFetch([]string{"a"}), zap.NewNop())
	defer sub.Close()

	if _, err := sub.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	key = "people-orgB"
	if _, err := sub.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Both keys were written; neither clobbered the other.
	if _, ok := cache.Get(context.Background(), "people-orgA", time.Minute); !ok {
		t.Error("expected org A entry")
	}
	if _, ok := cache.Get(context.Background(), "people-orgB", time.Minute); !ok {
		t.Error("expected org B entry")
	}
}

func TestInvalidateCache_NoRefetch(t *testing.T) {
	cache := newCache()
	fetches := 0
	sub := datacache.New(cache, time.Minute, fixedKey("teams-x"),
		func(context.Context) ([]string, error) { fetches++; return []string{"a"}, nil }, zap.NewNop())
	defer sub.Close()

	if _, err := sub.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	sub.InvalidateCache(context.Background())

	if _, ok := cache.GetIgnoringExpiry(context.Background(), "teams-x"); ok {
		t.Error("expected cache entry removed")
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (invalidate must not re-fetch)", fetches)
	}
}

func TestClose_DiscardsLateResolutions(t *testing.T) {
	cache := newCache()
	release := make(chan struct{})
	started := make(chan struct{})
	sub := datacache.New(cache, time.Minute, fixedKey("people-x"),
		func(context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"late"}, nil
		}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		sub.Refresh(context.Background())
		close(done)
	}()
	<-started

	sub.Close()
	close(release)
	<-done

	snap := sub.Snapshot()
	if snap.HasData {
		t.Error("expected the late resolution to be dropped")
	}
	if _, err := sub.Refresh(context.Background()); !errors.Is(err, datacache.ErrClosed) {
		t.Errorf("Refresh after Close = %v, want ErrClosed", err)
	}
	if _, err := sub.Load(context.Background()); !errors.Is(err, datacache.ErrClosed) {
		t.Errorf("Load after Close = %v, want ErrClosed", err)
	}
}
