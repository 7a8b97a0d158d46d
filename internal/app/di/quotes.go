// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	"github.com/fuzzychicken/cs50-finance/internal/platform/cache"
	"github.com/fuzzychicken/cs50-finance/internal/platform/config"
	"github.com/fuzzychicken/cs50-finance/internal/platform/externalapi/twelvedata"
	infrahttp "github.com/fuzzychicken/cs50-finance/internal/platform/http"
	"github.com/fuzzychicken/cs50-finance/internal/shared/ratelimiter"
)

// NewQuoteProvider creates the Twelve Data quote source with its rate limiter and cache.
// If Redis is available, quotes are cached in Redis.
// Otherwise, it falls back to an in-process cache.
func NewQuoteProvider(cfg config.TwelveData, redisCfg config.Redis, rdb *redis.Client) usecase.QuoteProvider {
	tdCfg := twelvedata.ConfigFrom(cfg)
	client := infrahttp.NewHTTPClient(infrahttp.ClientConfig{Timeout: tdCfg.Timeout})
	limiter := ratelimiter.NewRateLimiter(cfg.RatePerMinute, time.Minute)
	source := twelvedata.NewTwelveDataQuotes(tdCfg, client, limiter)

	if rdb != nil {
		return cache.NewCachingQuoteProvider(rdb, redisCfg.QuoteTTL, source, "quotes")
	}
	return cache.NewLocalQuoteProvider(cfg.LocalCacheTTL, source)
}
