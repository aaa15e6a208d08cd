// Package cache holds short-lived Redis caches in front of expensive
// aggregate queries. The dashboard polls these every few seconds.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skillscope/internal/domain/skill"
	"skillscope/internal/shared/logger"
)

// TaxonomyCountsCache caches the taxonomy tier counts shown on every
// dashboard page. A nil return with nil error is a cache miss.
type TaxonomyCountsCache interface {
	Get(ctx context.Context) (*skill.TaxonomyCounts, error)
	Set(ctx context.Context, counts *skill.TaxonomyCounts) error
	Invalidate(ctx context.Context) error
}

const (
	taxonomyCountsKey = "taxonomy:counts"
	taxonomyCountsTTL = 10 * time.Second
)

type RedisTaxonomyCountsCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisTaxonomyCountsCache(client *redis.Client, log logger.Interface) *RedisTaxonomyCountsCache {
	return &RedisTaxonomyCountsCache{client: client, logger: log}
}

func (c *RedisTaxonomyCountsCache) Get(ctx context.Context) (*skill.TaxonomyCounts, error) {
	raw, err := c.client.Get(ctx, taxonomyCountsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get taxonomy counts from cache: %w", err)
	}

	var counts skill.TaxonomyCounts
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		c.logger.Warnw("discarding unreadable taxonomy counts cache entry", "error", err)
		return nil, nil
	}
	return &counts, nil
}

func (c *RedisTaxonomyCountsCache) Set(ctx context.Context, counts *skill.TaxonomyCounts) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode taxonomy counts: %w", err)
	}
	if err := c.client.Set(ctx, taxonomyCountsKey, payload, taxonomyCountsTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache taxonomy counts: %w", err)
	}
	return nil
}

func (c *RedisTaxonomyCountsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, taxonomyCountsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate taxonomy counts cache: %w", err)
	}
	return nil
}

// NoopTaxonomyCountsCache is used when Redis is not configured; every read
// is a miss.
type NoopTaxonomyCountsCache struct{}

func (NoopTaxonomyCountsCache) Get(ctx context.Context) (*skill.TaxonomyCounts, error) { return nil, nil }
func (NoopTaxonomyCountsCache) Set(ctx context.Context, counts *skill.TaxonomyCounts) error {
	return nil
}
func (NoopTaxonomyCountsCache) Invalidate(ctx context.Context) error { return nil }
