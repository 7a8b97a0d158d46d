package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade, derived from the sign of the share delta.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order selects the ordering of a transaction listing.
type Order int

const (
	// OldestFirst orders by execution time ascending, ties by sequence ascending.
	OldestFirst Order = iota
	// NewestFirst orders by execution time descending, ties by sequence descending.
	NewestFirst
)

// Transaction is one immutable entry of the trade log.
type Transaction struct {
	Seq        uint64          // assigned by the store on append
	UserID     uint
	Symbol     string
	ShareDelta decimal.Decimal // positive for buys, negative for sells
	Price      decimal.Decimal // per-share execution price
	ExecutedAt time.Time
}

// Side reports whether the transaction was a buy or a sell.
func (t Transaction) Side() Side {
	if t.ShareDelta.IsNegative() {
		return SideSell
	}
	return SideBuy
}

// Shares returns the absolute number of shares traded.
func (t Transaction) Shares() decimal.Decimal {
	return t.ShareDelta.Abs()
}

// Total returns the cash value of the trade, always non-negative.
func (t Transaction) Total() decimal.Decimal {
	return CashValue(t.Shares(), t.Price)
}

// CashDelta returns the signed effect of the trade on the cash balance.
func (t Transaction) CashDelta() decimal.Decimal {
	if t.Side() == SideBuy {
		return t.Total().Neg()
	}
	return t.Total()
}

// CashMovementKind names the reason for a balance change.
type CashMovementKind string

const (
	CashDeposit CashMovementKind = "deposit"
	CashBuy     CashMovementKind = "buy"
	CashSell    CashMovementKind = "sell"
)

// CashMovement records one signed change of a cash balance.
type CashMovement struct {
	Seq        uint64
	UserID     uint
	Kind       CashMovementKind
	Amount     decimal.Decimal
	ExecutedAt time.Time
}
