package usecase

import (
	"strings"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/shopspring/decimal"
)

// MaxSymbolLength bounds ticker symbols accepted by the engine.
const MaxSymbolLength = 32

// BuyCommand requests the purchase of Shares of Symbol at the current quote.
type BuyCommand struct {
	Symbol string
	Shares decimal.Decimal
}

// Validate checks the command and returns a copy with the symbol normalized.
func (c BuyCommand) Validate() (BuyCommand, error) {
	sym, err := normalizeSymbol(c.Symbol)
	if err != nil {
		return c, err
	}
	if err := validateShares(c.Shares); err != nil {
		return c, err
	}
	c.Symbol = sym
	return c, nil
}

// SellCommand requests the sale of Shares of Symbol at the current quote.
type SellCommand struct {
	Symbol string
	Shares decimal.Decimal
}

// Validate checks the command and returns a copy with the symbol normalized.
func (c SellCommand) Validate() (SellCommand, error) {
	sym, err := normalizeSymbol(c.Symbol)
	if err != nil {
		return c, err
	}
	if err := validateShares(c.Shares); err != nil {
		return c, err
	}
	c.Symbol = sym
	return c, nil
}

// DepositCommand credits Amount to the user's cash balance.
type DepositCommand struct {
	Amount decimal.Decimal
}

// Validate checks that the amount is positive and expressed in whole cents.
func (c DepositCommand) Validate() (DepositCommand, error) {
	if !c.Amount.IsPositive() {
		return c, &domain.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if !c.Amount.Equal(c.Amount.Round(entity.CashScale)) {
		return c, &domain.InvalidInputError{Field: "amount", Reason: "must not have more than 2 decimal places"}
	}
	return c, nil
}

func normalizeSymbol(s string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case sym == "":
		return "", &domain.InvalidInputError{Field: "symbol", Reason: "is required"}
	case len(sym) > MaxSymbolLength:
		return "", &domain.InvalidInputError{Field: "symbol", Reason: "is too long"}
	case strings.ContainsAny(sym, " \t\r\n/?#&"):
		return "", &domain.InvalidInputError{Field: "symbol", Reason: "contains invalid characters"}
	}
	return sym, nil
}

func validateShares(n decimal.Decimal) error {
	if !n.IsPositive() {
		return &domain.InvalidInputError{Field: "shares", Reason: "must be positive"}
	}
	if !n.Equal(n.Round(entity.ShareScale)) {
		return &domain.InvalidInputError{Field: "shares", Reason: "must not have more than 6 decimal places"}
	}
	return nil
}
