package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/proposalhub/search-sync/pkg/config"
	pkgredis "github.com/proposalhub/search-sync/pkg/redis"
)

const keyPrefix = "proposal-search:"

// QueryCache caches advanced-search responses in Redis. Concurrent misses for
// the same key are collapsed through singleflight. It also implements the
// index manager's Invalidator so any index write drops all cached results.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates a QueryCache over the given Redis client.
func NewQueryCache(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached response for the given params, if present.
func (c *QueryCache) Get(ctx context.Context, p Params) (*Response, bool) {
	key := c.buildKey(p)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &resp, true
}

// Set stores a response with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, p Params, resp *Response) {
	key := c.buildKey(p)
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response or computes and caches it,
// suppressing duplicate concurrent computations for the same key.
func (c *QueryCache) GetOrCompute(ctx context.Context, p Params, computeFn func() (*Response, error)) (*Response, bool, error) {
	if resp, ok := c.Get(ctx, p); ok {
		return resp, true, nil
	}
	key := c.buildKey(p)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.Get(ctx, p); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, p, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*Response), false, nil
}

// Invalidate drops every cached search response. Called after any index
// write.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating search cache: %w", err)
	}
	c.logger.Debug("search cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit/miss counters since process start.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey derives a stable cache key from the canonical rendering of the
// search params.
func (c *QueryCache) buildKey(p Params) string {
	filters := make([]string, 0, len(p.Filters))
	for k, v := range p.Filters {
		filters = append(filters, k+"="+v)
	}
	sort.Strings(filters)

	raw := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(p.Query)),
		fmt.Sprintf("limit=%d", p.Limit),
		fmt.Sprintf("offset=%d", p.Offset),
		strings.Join(filters, ","),
		strings.Join(p.Facets, ","),
		strings.Join(p.Highlight, ","),
		strings.Join(p.Sort, ","),
	}, "|")

	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
