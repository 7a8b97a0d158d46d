package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the current market information for a symbol.
type Quote struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}

// PortfolioEntry is one priced holding in a portfolio view.
// When the quote could not be resolved, QuoteError is set and Price/MarketValue are zero.
type PortfolioEntry struct {
	Symbol      string
	Name        string
	Shares      decimal.Decimal
	Price       decimal.Decimal
	MarketValue decimal.Decimal
	QuoteError  string
}

// Degraded reports whether the entry is missing its price.
func (e PortfolioEntry) Degraded() bool { return e.QuoteError != "" }

// PortfolioView is a snapshot of a user's cash and priced holdings.
type PortfolioView struct {
	UserID        uint
	Entries       []PortfolioEntry // sorted by symbol
	Cash          decimal.Decimal
	HoldingsValue decimal.Decimal // Σ market values of non-degraded entries
	GrandTotal    decimal.Decimal // Cash + HoldingsValue
	Degraded      bool
}

// HistoryEntry is one buy or sell in a user's history.
type HistoryEntry struct {
	Seq        uint64
	Symbol     string
	Side       Side
	Shares     decimal.Decimal // absolute
	Price      decimal.Decimal
	Total      decimal.Decimal
	ExecutedAt time.Time
}
