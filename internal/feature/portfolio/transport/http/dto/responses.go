package dto

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
)

// Amount は金額を10進文字列と表示用のUSD文字列の両方で表します。
type Amount struct {
	Value   string `json:"value"`   // 例: "8500.00"
	Display string `json:"display"` // 例: "$8,500.00"
}

// NewAmount はdecimalの金額をセント単位に丸めてAmountに変換します。
func NewAmount(d decimal.Decimal) Amount {
	cents := d.Round(entity.CashScale).Shift(entity.CashScale).IntPart()
	return Amount{
		Value:   d.StringFixed(entity.CashScale),
		Display: money.New(cents, money.USD).Display(),
	}
}

// TradeResponse は約定した売買1件を表します。
type TradeResponse struct {
	Seq        uint64 `json:"seq"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	Shares     string `json:"shares"`
	Price      Amount `json:"price"`
	Total      Amount `json:"total"`
	ExecutedAt string `json:"executed_at"` // RFC3339 (UTC)
}

// NewTradeResponse は約定結果をレスポンスに変換します。
func NewTradeResponse(tx *entity.Transaction) TradeResponse {
	return TradeResponse{
		Seq:        tx.Seq,
		Symbol:     tx.Symbol,
		Side:       string(tx.Side()),
		Shares:     tx.Shares().String(),
		Price:      NewAmount(tx.Price),
		Total:      NewAmount(tx.Total()),
		ExecutedAt: formatTime(tx.ExecutedAt),
	}
}

// BalanceResponse は入金後の残高を表します。
type BalanceResponse struct {
	Cash Amount `json:"cash"`
}

// HoldingResponse はポートフォリオの1銘柄を表します。
// 価格が取得できなかった場合、priceとvalueは省略されquote_errorが設定されます。
type HoldingResponse struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Shares     string  `json:"shares"`
	Price      *Amount `json:"price,omitempty"`
	Value      *Amount `json:"value,omitempty"`
	QuoteError string  `json:"quote_error,omitempty"`
}

// PortfolioResponse はポートフォリオ全体を表します。
type PortfolioResponse struct {
	Holdings      []HoldingResponse `json:"holdings"`
	Cash          Amount            `json:"cash"`
	HoldingsValue Amount            `json:"holdings_value"`
	Total         Amount            `json:"total"`
	Degraded      bool              `json:"degraded"`
}

// NewPortfolioResponse はポートフォリオビューをレスポンスに変換します。
func NewPortfolioResponse(v *entity.PortfolioView) PortfolioResponse {
	holdings := make([]HoldingResponse, 0, len(v.Entries))
	for _, e := range v.Entries {
		h := HoldingResponse{
			Symbol:     e.Symbol,
			Name:       e.Name,
			Shares:     e.Shares.String(),
			QuoteError: e.QuoteError,
		}
		if !e.Degraded() {
			price, value := NewAmount(e.Price), NewAmount(e.MarketValue)
			h.Price, h.Value = &price, &value
		}
		holdings = append(holdings, h)
	}

	return PortfolioResponse{
		Holdings:      holdings,
		Cash:          NewAmount(v.Cash),
		HoldingsValue: NewAmount(v.HoldingsValue),
		Total:         NewAmount(v.GrandTotal),
		Degraded:      v.Degraded,
	}
}

// NewHistoryResponse は取引履歴をレスポンスに変換します（新しい順のまま）。
func NewHistoryResponse(entries []entity.HistoryEntry) []TradeResponse {
	out := make([]TradeResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TradeResponse{
			Seq:        e.Seq,
			Symbol:     e.Symbol,
			Side:       string(e.Side),
			Shares:     e.Shares.String(),
			Price:      NewAmount(e.Price),
			Total:      NewAmount(e.Total),
			ExecutedAt: formatTime(e.ExecutedAt),
		})
	}
	return out
}

// QuoteResponse は銘柄の現在値を表します。
type QuoteResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  Amount `json:"price"`
}

// NewQuoteResponse は見積もりをレスポンスに変換します。
func NewQuoteResponse(q entity.Quote) QuoteResponse {
	return QuoteResponse{Symbol: q.Symbol, Name: q.Name, Price: NewAmount(q.Price)}
}

// ErrorResponse はエラー時のレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
