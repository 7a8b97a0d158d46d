package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	"github.com/fuzzychicken/cs50-finance/internal/platform/externalapi/twelvedata/dto"
	"github.com/fuzzychicken/cs50-finance/internal/platform/logger"
	"github.com/fuzzychicken/cs50-finance/internal/shared/ratelimiter"
)

// defaultFetchTimeout は設定でタイムアウトが指定されていない場合の1回の取得の上限です。
const defaultFetchTimeout = 10 * time.Second

// TwelveDataQuotes はTwelve Dataの /quote エンドポイントで現在値を取得するQuoteProvider実装です。
type TwelveDataQuotes struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
	group   singleflight.Group
}

// TwelveDataQuotesがQuoteProviderを実装していることをコンパイル時に検証します。
var _ usecase.QuoteProvider = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes は指定された設定とHTTPクライアントでTwelveDataQuotesを生成します。
// limiter が nil の場合はレート制限を行いません。
func NewTwelveDataQuotes(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *TwelveDataQuotes {
	return &TwelveDataQuotes{cfg: cfg, client: client, limiter: limiter}
}

// Lookup は銘柄の現在値を取得します。
// 同じ銘柄への同時リクエストは1回のAPI呼び出しにまとめます。
// 共有の取得は呼び出し元のキャンセルから切り離し、独自のタイムアウトで打ち切ります。
// 各呼び出し元は自分の ctx が終わった時点で待機をやめます。
func (t *TwelveDataQuotes) Lookup(ctx context.Context, symbol string) (entity.Quote, error) {
	ch := t.group.DoChan(symbol, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.fetchTimeout())
		defer cancel()
		return t.fetch(fctx, symbol)
	})

	select {
	case <-ctx.Done():
		return entity.Quote{}, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return entity.Quote{}, res.Err
		}
		return res.Val.(entity.Quote), nil
	}
}

func (t *TwelveDataQuotes) fetchTimeout() time.Duration {
	if t.cfg.Timeout > 0 {
		return t.cfg.Timeout
	}
	return defaultFetchTimeout
}

func (t *TwelveDataQuotes) fetch(ctx context.Context, symbol string) (entity.Quote, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return entity.Quote{}, unavailable(symbol, err)
		}
	}

	q := url.Values{}
	// クエリパラメータを追加（APIキーはURLに載せずヘッダーで送る）
	q.Set("symbol", symbol)
	u := fmt.Sprintf("%s/quote?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Quote{}, unavailable(symbol, errors.New("build request"))
	}
	req.Header.Set("Authorization", "apikey "+t.cfg.APIKey)

	res, err := t.client.Do(req)
	if err != nil {
		// *url.Error はURL全体を含むため、原因のエラーだけを残す
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return entity.Quote{}, unavailable(symbol, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusBadRequest:
		return entity.Quote{}, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	case res.StatusCode >= 400:
		return entity.Quote{}, unavailable(symbol, fmt.Errorf("twelvedata http %d", res.StatusCode))
	}

	// JSONレスポンスをDTOにデコード
	var body dto.QuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Quote{}, unavailable(symbol, fmt.Errorf("decode quote: %w", err))
	}
	if body.Status == "error" {
		// Twelve Data はHTTP 200のままボディでエラーを返すことがある
		if body.Code == http.StatusNotFound || body.Code == http.StatusBadRequest {
			return entity.Quote{}, fmt.Errorf("%w: %s: %s", domain.ErrUnknownSymbol, symbol, body.Message)
		}
		return entity.Quote{}, unavailable(symbol, fmt.Errorf("twelvedata %d: %s", body.Code, body.Message))
	}

	price, err := decimal.NewFromString(body.Close)
	if err != nil {
		return entity.Quote{}, unavailable(symbol, fmt.Errorf("parse close %q: %w", body.Close, err))
	}

	quote := entity.Quote{Symbol: body.Symbol, Name: body.Name, Price: price}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.Name == "" {
		quote.Name = quote.Symbol
	}
	return quote, nil
}

func unavailable(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
}
