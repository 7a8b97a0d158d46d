package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
)

// LocalQuoteProvider は Redis が使えない場合のプロセス内キャッシュです。
type LocalQuoteProvider struct {
	inner usecase.QuoteProvider
	store *gocache.Cache
}

var _ usecase.QuoteProvider = (*LocalQuoteProvider)(nil)

// NewLocalQuoteProvider は ttl で期限切れになるインメモリキャッシュで inner をラップします。
func NewLocalQuoteProvider(ttl time.Duration, inner usecase.QuoteProvider) *LocalQuoteProvider {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	return &LocalQuoteProvider{
		inner: inner,
		store: gocache.New(ttl, 2*ttl),
	}
}

// Lookup はキャッシュ済みの相場を返し、無ければ inner に問い合わせます。
func (c *LocalQuoteProvider) Lookup(ctx context.Context, symbol string) (entity.Quote, error) {
	if v, ok := c.store.Get(symbol); ok {
		if q, ok := v.(entity.Quote); ok {
			return q, nil
		}
	}

	q, err := c.inner.Lookup(ctx, symbol)
	if err != nil {
		return entity.Quote{}, err
	}
	c.store.SetDefault(symbol, q)
	return q, nil
}
