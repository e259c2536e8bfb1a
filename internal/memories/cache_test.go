package memories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/everkeep/backend/internal/store"
)

func TestQueryFreshHitSkipsFetch(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{})
		if err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
		if got != "value" {
			t.Fatalf("query %d: unexpected value %q", i, got)
		}
	}

	if fetches.Load() != 1 {
		t.Fatalf("expected a single fetch, got %d", fetches.Load())
	}
}

func TestQueryColdErrorSurfaces(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	boom := errors.New("boom")
	_, err := Query(context.Background(), cache, "k", func(context.Context) (string, error) {
		return "", boom
	}, QueryOptions[string]{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error on cold start, got %v", err)
	}
}

func TestQueryServesStaleWhileRevalidating(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	current := time.Now()
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		if fetches.Add(1) == 1 {
			return "old", nil
		}
		return "new", nil
	}

	if got, _ := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{}); got != "old" {
		t.Fatalf("expected initial value, got %q", got)
	}

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()

	// The stale read must answer with the old value immediately.
	if got, _ := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{}); got != "old" {
		t.Fatalf("expected stale value while revalidating, got %q", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if got == "new" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("background refresh never landed, still seeing %q", got)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestQueryKeepsStaleValueWhenRefreshFails(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	current := time.Now()
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		if fetches.Add(1) == 1 {
			return "only", nil
		}
		return "", errors.New("backend down")
	}

	if got, _ := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{}); got != "only" {
		t.Fatalf("expected initial value, got %q", got)
	}

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()

	for i := 0; i < 5; i++ {
		got, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{})
		if err != nil {
			t.Fatalf("stale read %d errored: %v", i, err)
		}
		if got != "only" {
			t.Fatalf("stale read %d: expected %q got %q", i, "only", got)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestQueryDeduplicatesConcurrentColdFetches(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	release := make(chan struct{})
	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		<-release
		return "shared", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{})
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = got
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if fetches.Load() != 1 {
		t.Fatalf("expected one shared fetch, got %d", fetches.Load())
	}
	for i, got := range results {
		if got != "shared" {
			t.Fatalf("caller %d got %q", i, got)
		}
	}
}

func TestAcceptDiscardsOutOfOrderResponses(t *testing.T) {
	cache := NewCache(time.Hour, nil)
	passthrough := func(cached, fresh any) any { return fresh }

	cache.accept("k", 2, "second", passthrough, false)
	got := cache.accept("k", 1, "first", passthrough, false)

	if got != "second" {
		t.Fatalf("late response should be discarded, accept returned %q", got)
	}

	value, err := Query(context.Background(), cache, "k", func(context.Context) (string, error) {
		t.Fatal("fetch should not run for a warm key")
		return "", nil
	}, QueryOptions[string]{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if value != "second" {
		t.Fatalf("expected newest accepted value, got %q", value)
	}
}

func TestQueryWarmStartFromPersistentStore(t *testing.T) {
	kv := store.NewInMemoryKV()

	first := NewCache(time.Hour, kv)
	if _, err := Query(context.Background(), first, "k", func(context.Context) (string, error) {
		return "persisted", nil
	}, QueryOptions[string]{Persist: true}); err != nil {
		t.Fatalf("seed query: %v", err)
	}

	// A second cache over the same store answers before any fetch succeeds.
	second := NewCache(time.Hour, kv)
	got, err := Query(context.Background(), second, "k", func(context.Context) (string, error) {
		t.Fatal("fetch should not run when the persisted copy is fresh")
		return "", nil
	}, QueryOptions[string]{Persist: true})
	if err != nil {
		t.Fatalf("warm query: %v", err)
	}
	if got != "persisted" {
		t.Fatalf("expected persisted value, got %q", got)
	}
}

func TestInvalidateForcesRefetchAndDropsPersistedCopy(t *testing.T) {
	kv := store.NewInMemoryKV()
	cache := NewCache(time.Hour, kv)

	var fetches atomic.Int64
	fetch := func(context.Context) (string, error) {
		fetches.Add(1)
		return "v", nil
	}

	if _, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{Persist: true}); err != nil {
		t.Fatalf("query: %v", err)
	}

	cache.Invalidate(context.Background(), "k")

	if _, _, err := kv.Get(context.Background(), "k"); err != nil {
		t.Fatalf("kv get: %v", err)
	} else if _, found, _ := kv.Get(context.Background(), "k"); found {
		t.Fatal("expected the persisted copy to be removed")
	}

	if _, err := Query(context.Background(), cache, "k", fetch, QueryOptions[string]{Persist: true}); err != nil {
		t.Fatalf("query after invalidate: %v", err)
	}
	if fetches.Load() != 2 {
		t.Fatalf("expected a refetch after invalidation, got %d fetches", fetches.Load())
	}
}

func TestQueryReconcileKeepsCachedReference(t *testing.T) {
	cache := NewCache(time.Hour, nil)

	current := time.Now()
	var mu sync.Mutex
	cache.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	reconciled := make(chan string, 1)
	opts := QueryOptions[string]{
		Reconcile: func(cached, fresh string) string {
			reconciled <- fresh
			return cached
		},
	}

	if _, err := Query(context.Background(), cache, "k", func(context.Context) (string, error) {
		return "one", nil
	}, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mu.Lock()
	current = current.Add(2 * time.Hour)
	mu.Unlock()

	if got, _ := Query(context.Background(), cache, "k", func(context.Context) (string, error) {
		return "two", nil
	}, opts); got != "one" {
		t.Fatalf("expected stale value, got %q", got)
	}

	select {
	case fresh := <-reconciled:
		if fresh != "two" {
			t.Fatalf("reconcile saw %q", fresh)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile never ran")
	}

	// Once the refresh lands the entry is fresh again and still carries the
	// cached value.
	deadline := time.Now().Add(2 * time.Second)
	for {
		cache.mu.Lock()
		accepted := cache.entries["k"].accepted
		cache.mu.Unlock()
		if accepted >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("background refresh never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := Query(context.Background(), cache, "k", func(context.Context) (string, error) {
		t.Fatal("fetch should not run for a fresh entry")
		return "", nil
	}, opts)
	if err != nil {
		t.Fatalf("final query: %v", err)
	}
	if got != "one" {
		t.Fatalf("expected the reconciled cached value, got %q", got)
	}
}
