package resource

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads a resource from its source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loader provides cache-or-fetch access to one kind of resource.
//
// Failures are remembered for Peek but never cached and never retried on
// their own; the next Get fetches again.
type Loader[T any] struct {
	cache  Cache[T]
	now    func() time.Time
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.Mutex
	inflight map[string]int
	failures map[string]error
	epochs   map[string]uint64
}

// NewLoader wires a Loader over cache. now defaults to time.Now.
func NewLoader[T any](cache Cache[T], now func() time.Time, logger *slog.Logger) *Loader[T] {
	if cache == nil {
		cache = NewMemoryCache[T](0, 0)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{
		cache:    cache,
		now:      now,
		logger:   logger.With("component", "resource.loader"),
		inflight: make(map[string]int),
		failures: make(map[string]error),
		epochs:   make(map[string]uint64),
	}
}

// Get returns the cached value for key or runs fetch. Concurrent calls for the
// same key share one fetch. A caller whose context ends receives its context
// error and leaves the cache untouched.
func (l *Loader[T]) Get(ctx context.Context, key string, fetch FetchFunc[T]) Result[T] {
	if err := ctx.Err(); err != nil {
		return Failure[T](err)
	}
	if entry, ok := l.cache.Get(ctx, key); ok {
		return Success(entry.Value, entry.FetchedAt)
	}

	l.begin(key)
	defer l.end(key)

	entry, err := l.share(ctx, key, fetch)
	// A shared fetch aborted by another caller's cancellation says nothing
	// about this caller; fetch once more under its own context.
	if isContextError(err) && ctx.Err() == nil {
		entry, err = l.share(ctx, key, fetch)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Failure[T](ctxErr)
	}
	if err != nil {
		if !isContextError(err) {
			l.setFailure(key, err)
		}
		l.logger.DebugContext(ctx, "resource fetch failed", "key", key, "error", err)
		return Failure[T](err)
	}
	l.setFailure(key, nil)
	return Success(entry.Value, entry.FetchedAt)
}

// Peek reports the current state of key without fetching.
func (l *Loader[T]) Peek(ctx context.Context, key string) Result[T] {
	l.mu.Lock()
	inflight := l.inflight[key] > 0
	failure := l.failures[key]
	l.mu.Unlock()

	if inflight {
		return Loading[T]()
	}
	if entry, ok := l.cache.Get(ctx, key); ok {
		return Success(entry.Value, entry.FetchedAt)
	}
	if failure != nil {
		return Failure[T](failure)
	}
	return Loading[T]()
}

// Invalidate forgets key so the next Get fetches it again. A fetch already in
// flight still answers its callers but no longer writes to the cache.
func (l *Loader[T]) Invalidate(ctx context.Context, key string) {
	l.mu.Lock()
	l.epochs[key]++
	delete(l.failures, key)
	l.group.Forget(key)
	l.cache.Delete(ctx, key)
	l.mu.Unlock()
}

func (l *Loader[T]) share(ctx context.Context, key string, fetch FetchFunc[T]) (Entry[T], error) {
	ch := l.group.DoChan(key, func() (any, error) {
		epoch := l.epoch(key)
		value, err := fetch(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return nil, err
		}
		entry := Entry[T]{Value: value, FetchedAt: l.now()}
		l.store(ctx, key, epoch, entry)
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return Entry[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry[T]{}, res.Err
		}
		return res.Val.(Entry[T]), nil
	}
}

func (l *Loader[T]) epoch(key string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epochs[key]
}

// store caches entry unless key was invalidated after the fetch began.
func (l *Loader[T]) store(ctx context.Context, key string, epoch uint64, entry Entry[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epochs[key] != epoch {
		l.logger.DebugContext(ctx, "dropping fetch invalidated while in flight", "key", key)
		return
	}
	l.cache.Set(ctx, key, entry)
}

func (l *Loader[T]) begin(key string) {
	l.mu.Lock()
	l.inflight[key]++
	l.mu.Unlock()
}

func (l *Loader[T]) end(key string) {
	l.mu.Lock()
	if l.inflight[key]--; l.inflight[key] <= 0 {
		delete(l.inflight, key)
	}
	l.mu.Unlock()
}

func (l *Loader[T]) setFailure(key string, err error) {
	l.mu.Lock()
	if err == nil {
		delete(l.failures, key)
	} else {
		l.failures[key] = err
	}
	l.mu.Unlock()
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
