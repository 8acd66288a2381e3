package currency

import (
	"context"
	"fmt"
	"time"

	"storefront.GO/client/request"
	"storefront.GO/core/cache"
)

const (
	ratesPath     = "/api/exchange-rates"
	ratesCacheKey = "currency:snapshot"
	ratesCacheTag = "currency"

	// DefaultRatesTTL bounds how long a fetched snapshot is reused.
	DefaultRatesTTL = 10 * time.Minute
)

// RateClient loads exchange-rate snapshots from the storefront API.
type RateClient struct {
	api   *request.Client
	cache *cache.Cache
	ttl   time.Duration
}

// NewRateClient caches snapshots in c (the process cache when nil) for ttl.
func NewRateClient(api *request.Client, c *cache.Cache, ttl time.Duration) *RateClient {
	if c == nil {
		c = cache.GetInstance()
	}
	if ttl <= 0 {
		ttl = DefaultRatesTTL
	}
	return &RateClient{api: api, cache: c, ttl: ttl}
}

// Snapshot returns the cached snapshot or fetches a new one.
func (r *RateClient) Snapshot(ctx context.Context) (*Snapshot, error) {
	if v, ok := r.cache.Get(ratesCacheKey); ok {
		if snap, ok := v.(*Snapshot); ok {
			return snap, nil
		}
	}
	var snap Snapshot
	if err := r.api.Get(ctx, ratesPath, nil, &snap); err != nil {
		return nil, fmt.Errorf("currency: load rates: %w", err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	r.cache.Set(ratesCacheKey, &snap, r.ttl, ratesCacheTag)
	return &snap, nil
}

// Invalidate drops the cached snapshot.
func (r *RateClient) Invalidate() {
	r.cache.DeleteByTag(ratesCacheTag)
}
