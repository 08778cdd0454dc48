package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dosada05/competition-manager/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	fetched time.Time
}

func (s *countingSource) Fetch(ctx context.Context) (*rating.Reference, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return rating.NewReference(s.fetched), nil
}

func newTestCache(src RatingSource, now *time.Time) *RatingReferenceCache {
	cache := NewRatingReferenceCache(src, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cache.now = func() time.Time { return *now }
	return cache
}

func TestRatingReferenceCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	src := &countingSource{fetched: now}
	cache := newTestCache(src, &now)

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())

	now = now.Add(59 * time.Minute)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.calls.Load())

	now = now.Add(2 * time.Minute)
	src.fetched = now
	third, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestRatingReferenceCache_StaleOnError(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	src := &countingSource{fetched: now}
	cache := newTestCache(src, &now)

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	src.err = errors.New("timeout")
	stale, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)

	_, err = cache.Refresh(ctx)
	assert.Error(t, err)
}

func TestRatingReferenceCache_ErrorWithoutSnapshot(t *testing.T) {
	now := time.Now()
	cache := newTestCache(&countingSource{err: errors.New("down")}, &now)

	_, err := cache.Get(context.Background())
	assert.Error(t, err)
}

func TestRatingReferenceCache_SharesConcurrentRefresh(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	src := &countingSource{fetched: now, release: make(chan struct{})}
	cache := newTestCache(src, &now)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*rating.Reference, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = ref
		}(i)
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(callers))
	for _, ref := range results {
		require.NotNil(t, ref)
	}
}

// ctxSource blocks until released and reports whether its context was cancelled first.
type ctxSource struct {
	calls   atomic.Int32
	release chan struct{}
	fetched time.Time
}

func (s *ctxSource) Fetch(ctx context.Context) (*rating.Reference, error) {
	s.calls.Add(1)
	select {
	case <-s.release:
		return rating.NewReference(s.fetched), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestRatingReferenceCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	src := &ctxSource{fetched: now, release: make(chan struct{})}
	cache := newTestCache(src, &now)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Refresh(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		ref *rating.Reference
		err error
	}
	second := make(chan result, 1)
	go func() {
		ref, err := cache.Refresh(context.Background())
		second <- result{ref, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(src.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		require.NotNil(t, res.ref)
		assert.Equal(t, now, res.ref.FetchedAt)
	case <-time.After(time.Second):
		t.Fatal("refresh did not finish")
	}
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestRatingReferenceCache_NoSource(t *testing.T) {
	cache := NewRatingReferenceCache(nil, 0, nil)
	ref, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ref.Len())
}
