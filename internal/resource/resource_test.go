package resource

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/hr-dashboard/internal/logging"
)

var fixedNow = time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)

func newTestLoader() *Loader[int] {
	return NewLoader[int](NewMemoryCache[int](8, time.Hour), func() time.Time { return fixedNow }, logging.Discard())
}

func TestLoader_CachesSuccess(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		result := loader.Get(context.Background(), "k", fetch)
		if result.State != StateSuccess || result.Value != 42 {
			t.Fatalf("unexpected result %+v", result)
		}
		if !result.FetchedAt.Equal(fixedNow) {
			t.Fatalf("unexpected fetched at %v", result.FetchedAt)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", calls.Load())
	}
}

func TestLoader_SharesConcurrentFetch(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		return 7, nil
	}

	const callers = 5
	results := make(chan Result[int], callers)
	go func() { results <- loader.Get(context.Background(), "shared", fetch) }()
	<-started

	if got := loader.Peek(context.Background(), "shared"); got.State != StateLoading {
		t.Fatalf("expected loading while in flight, got %v", got.State)
	}

	var wg sync.WaitGroup
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- loader.Get(context.Background(), "shared", fetch)
		}()
	}
	// Give followers a moment to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if result := <-results; result.Value != 7 {
			t.Fatalf("unexpected result %+v", result)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single shared fetch, got %d", calls.Load())
	}
}

func TestLoader_CancelledCallerDoesNotPopulateCache(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(context.Context) (int, error) {
		cancel()
		return 1, nil
	}

	result := loader.Get(ctx, "k", fetch)
	if result.State != StateFailure || !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected cancellation failure, got %+v", result)
	}

	if got := loader.Peek(context.Background(), "k"); got.State != StateLoading {
		t.Fatalf("cancellation must not be recorded, got %v", got.State)
	}

	result = loader.Get(context.Background(), "k", func(context.Context) (int, error) { return 2, nil })
	if result.Value != 2 {
		t.Fatalf("expected fresh fetch after cancellation, got %+v", result)
	}
}

func TestLoader_FailuresAreNotRetriedUntilNextGet(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	}

	result := loader.Get(context.Background(), "k", fetch)
	if result.State != StateFailure || !errors.Is(result.Err, boom) {
		t.Fatalf("expected failure, got %+v", result)
	}

	for i := 0; i < 3; i++ {
		if got := loader.Peek(context.Background(), "k"); got.State != StateFailure {
			t.Fatalf("expected failure state, got %v", got.State)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("Peek must not fetch, got %d calls", calls.Load())
	}

	loader.Get(context.Background(), "k", fetch)
	if calls.Load() != 2 {
		t.Fatalf("expected explicit Get to refetch, got %d calls", calls.Load())
	}
}

func TestLoader_InvalidateForcesRefetch(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	loader.Get(context.Background(), "k", fetch)
	loader.Invalidate(context.Background(), "k")
	if got := loader.Peek(context.Background(), "k"); got.State != StateLoading {
		t.Fatalf("expected loading after invalidate, got %v", got.State)
	}
	if result := loader.Get(context.Background(), "k", fetch); result.Value != 2 {
		t.Fatalf("expected refetched value 2, got %+v", result)
	}
}

func TestLoader_InvalidateDiscardsInFlightFetch(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	slow := make(chan Result[int], 1)
	go func() {
		slow <- loader.Get(ctx, "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	loader.Invalidate(ctx, "k")
	if result := loader.Get(ctx, "k", func(context.Context) (int, error) { return 2, nil }); result.Value != 2 {
		t.Fatalf("expected reloaded value 2, got %+v", result)
	}

	close(release)
	if result := <-slow; result.Value != 1 {
		t.Fatalf("expected the earlier caller to receive its own fetch, got %+v", result)
	}

	result := loader.Get(ctx, "k", func(context.Context) (int, error) {
		t.Fatal("expected a cache hit")
		return 0, nil
	})
	if result.Value != 2 {
		t.Fatalf("fetch started before invalidate replaced the reloaded entry: got %d", result.Value)
	}
}

func TestLoader_AlreadyCancelledContext(t *testing.T) {
	t.Parallel()

	loader := newTestLoader()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := loader.Get(ctx, "k", func(context.Context) (int, error) {
		t.Fatal("fetch must not run")
		return 0, nil
	})
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %+v", result)
	}
}

func TestMemoryCache_Expires(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache[string](4, 20*time.Millisecond)
	ctx := context.Background()
	cache.Set(ctx, "a", Entry[string]{Value: "x"})
	if entry, ok := cache.Get(ctx, "a"); !ok || entry.Value != "x" {
		t.Fatalf("expected hit, got %+v %v", entry, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := cache.Get(ctx, "a"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache[int](2, time.Hour)
	ctx := context.Background()
	cache.Set(ctx, "a", Entry[int]{Value: 1})
	cache.Set(ctx, "b", Entry[int]{Value: 2})
	cache.Set(ctx, "c", Entry[int]{Value: 3})

	if _, ok := cache.Get(ctx, "a"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
	cache.Delete(ctx, "b")
	if _, ok := cache.Get(ctx, "b"); ok {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestRedisCache_UnreachableServerIsAMiss(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache[int](client, "test:", time.Minute, logging.Discard())
	ctx := context.Background()
	cache.Set(ctx, "k", Entry[int]{Value: 1})
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatal("expected miss when redis is unreachable")
	}
	cache.Delete(ctx, "k")

	loader := NewLoader[int](cache, nil, logging.Discard())
	if result := loader.Get(ctx, "k", func(context.Context) (int, error) { return 5, nil }); result.Value != 5 {
		t.Fatalf("expected loader to fall back to fetching, got %+v", result)
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := Key("secret-token", "user", "week", "2024-03-11")
	b := Key("other-token", "user", "week", "2024-03-11")
	if a == b {
		t.Fatal("keys for different tokens must differ")
	}
	if strings.Contains(a, "secret-token") {
		t.Fatalf("token leaked into key %q", a)
	}
	if !strings.HasSuffix(a, "|user|week|2024-03-11") {
		t.Fatalf("unexpected key layout %q", a)
	}
	if Key("secret-token", "user") != Key("secret-token", "user") {
		t.Fatal("keys must be deterministic")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	for state, want := range map[State]string{StateLoading: "loading", StateSuccess: "success", StateFailure: "failure"} {
		if got := state.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
