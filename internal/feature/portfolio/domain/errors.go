// Package domain defines domain-level errors for the portfolio feature.
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors for ledger operations.
// Every failure returned by the engine matches exactly one of these through errors.Is.
var (
	// ErrInvalidInput indicates a non-positive or malformed amount, share count or symbol.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownSymbol indicates that the quote provider does not know the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrInsufficientFunds indicates that the cash balance cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares indicates that a sell exceeds the current holding.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrQuoteUnavailable indicates a quote lookup timeout or transient provider failure.
	// Callers may retry with backoff; the engine never retries on its own.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrStorageUnavailable indicates a failure of the persistence layer.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAccountNotFound indicates that no ledger account exists for the user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidState indicates a write that would break a ledger invariant (e.g. negative shares).
	ErrInvalidState = errors.New("invalid ledger state")
)

// InvalidInputError describes which field of a command was rejected.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// InsufficientFundsError carries the amount required and the balance available.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// Is reports whether target is ErrInsufficientFunds.
func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// InsufficientSharesError carries the requested and held share counts for a symbol.
type InsufficientSharesError struct {
	Symbol    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares of %s: requested %s, available %s",
		e.Symbol, e.Requested.String(), e.Available.String())
}

// Is reports whether target is ErrInsufficientShares.
func (e *InsufficientSharesError) Is(target error) bool { return target == ErrInsufficientShares }

// kinds lists every sentinel in the taxonomy, in the order Kind checks them.
var kinds = []error{
	ErrInvalidInput,
	ErrUnknownSymbol,
	ErrInsufficientFunds,
	ErrInsufficientShares,
	ErrQuoteUnavailable,
	ErrAccountNotFound,
	ErrInvalidState,
	ErrStorageUnavailable,
}

// Kind returns the taxonomy sentinel err matches, or nil when err is outside the taxonomy.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
