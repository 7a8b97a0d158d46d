// Package entity defines the domain models for the portfolio feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashScale is the number of decimal places cash amounts are kept at.
const CashScale int32 = 2

// PriceScale is the number of decimal places per-share prices are kept at.
// It matches the scale of the stored price column.
const PriceScale int32 = 4

// ShareScale is the maximum number of decimal places accepted for share counts.
const ShareScale int32 = 6

// Account is a user's cash position. The user id is issued by the auth layer.
type Account struct {
	UserID    uint
	Cash      decimal.Decimal // never negative
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Holding is the number of shares of one symbol a user owns.
// A holding with zero shares does not exist.
type Holding struct {
	UserID uint
	Symbol string
	Shares decimal.Decimal
}

// CashValue returns shares × price rounded half-up to cents.
func CashValue(shares, price decimal.Decimal) decimal.Decimal {
	return shares.Mul(price).Round(CashScale)
}
