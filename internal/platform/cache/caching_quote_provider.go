// Package cache provides caching decorators for the quote provider.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
)

const (
	defaultQuoteTTL       = time.Minute
	defaultQuoteNamespace = "quotes"
)

// CachingQuoteProvider decorates a QuoteProvider with Redis caching.
// Only successful lookups are cached; errors always reach the caller.
type CachingQuoteProvider struct {
	inner     usecase.QuoteProvider
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.QuoteProvider = (*CachingQuoteProvider)(nil)

// NewCachingQuoteProvider decorates a QuoteProvider with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "quotes".
func NewCachingQuoteProvider(rdb *redis.Client, ttl time.Duration, inner usecase.QuoteProvider, namespace string) *CachingQuoteProvider {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	if namespace == "" {
		namespace = defaultQuoteNamespace
	}
	return &CachingQuoteProvider{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Lookup returns the cached quote when present, otherwise asks the inner provider.
func (c *CachingQuoteProvider) Lookup(ctx context.Context, symbol string) (entity.Quote, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Lookup(ctx, symbol)
	}

	key := c.cacheKey(symbol)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var q entity.Quote
		if err := json.Unmarshal(b, &q); err == nil {
			return q, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the provider
	q, err := c.inner.Lookup(ctx, symbol)
	if err != nil {
		return entity.Quote{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(q); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return q, nil
}

// cacheKey generates a cache key for a symbol.
func (c *CachingQuoteProvider) cacheKey(symbol string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(symbol))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
