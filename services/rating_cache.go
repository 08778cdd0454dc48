package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/competition-manager/rating"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRatingTTL = time.Hour

	defaultFetchTimeout = 30 * time.Second
)

// RatingSource fetches a fresh copy of the external rating table.
type RatingSource interface {
	Fetch(ctx context.Context) (*rating.Reference, error)
}

// RatingReferenceCache keeps the last fetched rating table and refetches it once it
// is older than the TTL. Concurrent refreshes share one fetch.
type RatingReferenceCache struct {
	source       RatingSource
	ttl          time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.RWMutex
	current *rating.Reference
	group   singleflight.Group
}

func NewRatingReferenceCache(source RatingSource, ttl time.Duration, logger *slog.Logger) *RatingReferenceCache {
	if ttl <= 0 {
		ttl = DefaultRatingTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingReferenceCache{
		source:       source,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Get returns the cached table, refreshing it when stale. If the refresh fails
// and an older table exists, the older table is returned.
func (c *RatingReferenceCache) Get(ctx context.Context) (*rating.Reference, error) {
	if c.source == nil {
		return rating.NewReference(time.Time{}), nil
	}

	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	if current != nil && c.now().Sub(current.FetchedAt) < c.ttl {
		return current, nil
	}

	ref, err := c.Refresh(ctx)
	if err != nil {
		if current != nil {
			c.logger.Warn("serving stale rating reference",
				slog.Time("fetched_at", current.FetchedAt),
				slog.Any("error", err),
			)
			return current, nil
		}
		return nil, err
	}
	return ref, nil
}

// Refresh fetches a new table. The shared fetch outlives any single caller's
// cancellation and is bounded by fetchTimeout; a cancelled caller stops waiting.
func (c *RatingReferenceCache) Refresh(ctx context.Context) (*rating.Reference, error) {
	if c.source == nil {
		return rating.NewReference(time.Time{}), nil
	}

	ch := c.group.DoChan("reference", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		ref, err := c.source.Fetch(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh rating reference: %w", err)
		}
		if ref.FetchedAt.IsZero() {
			ref.FetchedAt = c.now()
		}

		c.mu.Lock()
		c.current = ref
		c.mu.Unlock()

		c.logger.Info("rating reference refreshed", slog.Int("teams", ref.Len()))
		return ref, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*rating.Reference), nil
	}
}
