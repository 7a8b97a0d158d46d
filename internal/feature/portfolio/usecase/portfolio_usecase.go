// Package usecase implements the portfolio engine: trades, deposits and read-side views over the ledger.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/platform/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQuoteTimeout bounds a single quote lookup.
	DefaultQuoteTimeout = 5 * time.Second
	// DefaultViewConcurrency bounds concurrent quote lookups while building a portfolio view.
	DefaultViewConcurrency = 4
)

// LedgerStore is the durable record of balances, holdings and transactions.
// Interfaces are defined on the consumer side.
type LedgerStore interface {
	// GetBalance returns the cash balance, or domain.ErrAccountNotFound.
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	// AdjustBalance adds delta to the balance and records a cash movement of the given kind.
	// It fails with *domain.InsufficientFundsError when the result would be negative.
	AdjustBalance(ctx context.Context, userID uint, delta decimal.Decimal, kind entity.CashMovementKind) (decimal.Decimal, error)
	// GetHolding returns the shares held, zero when there is no holding.
	GetHolding(ctx context.Context, userID uint, symbol string) (decimal.Decimal, error)
	// SetHolding stores the shares held; zero removes the holding.
	SetHolding(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) error
	// AppendTransaction appends to the trade log and assigns tx.Seq.
	AppendTransaction(ctx context.Context, tx *entity.Transaction) error
	ListTransactions(ctx context.Context, userID uint, order entity.Order) ([]entity.Transaction, error)
	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	ListCashMovements(ctx context.Context, userID uint) ([]entity.CashMovement, error)
	// LockAccount takes an exclusive lock on the account for the rest of the enclosing Atomic call.
	LockAccount(ctx context.Context, userID uint) error
	// Atomic runs fn against a store bound to a single transaction.
	// The transaction commits only if fn returns nil.
	Atomic(ctx context.Context, fn func(tx LedgerStore) error) error
}

// QuoteProvider looks up current prices.
// Implementations return domain.ErrUnknownSymbol for symbols they do not know.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (entity.Quote, error)
}

// Options tunes the engine. Zero values fall back to the defaults.
type Options struct {
	QuoteTimeout    time.Duration
	ViewConcurrency int
	Now             func() time.Time
}

// portfolioUsecase applies trades and deposits against the ledger and builds read-side views.
type portfolioUsecase struct {
	ledger LedgerStore
	quotes QuoteProvider
	locks  *userLocker
	opts   Options
}

// NewPortfolioUsecase creates a portfolio engine.
func NewPortfolioUsecase(ledger LedgerStore, quotes QuoteProvider, opts Options) *portfolioUsecase {
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = DefaultQuoteTimeout
	}
	if opts.ViewConcurrency <= 0 {
		opts.ViewConcurrency = DefaultViewConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &portfolioUsecase{
		ledger: ledger,
		quotes: quotes,
		locks:  newUserLocker(),
		opts:   opts,
	}
}

// Buy purchases shares at the current quote.
// Validation and pricing happen before any state is touched.
func (u *portfolioUsecase) Buy(ctx context.Context, userID uint, cmd BuyCommand) (*entity.Transaction, error) {
	cmd, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	q, err := u.lookup(ctx, cmd.Symbol)
	if err != nil {
		return nil, err
	}
	cost := entity.CashValue(cmd.Shares, q.Price)

	tx := &entity.Transaction{
		UserID:     userID,
		Symbol:     cmd.Symbol,
		ShareDelta: cmd.Shares,
		Price:      q.Price,
	}
	err = u.mutate(ctx, userID, func(s LedgerStore) error {
		balance, err := s.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		if balance.LessThan(cost) {
			return &domain.InsufficientFundsError{Required: cost, Available: balance}
		}
		if _, err := s.AdjustBalance(ctx, userID, cost.Neg(), entity.CashBuy); err != nil {
			return err
		}
		held, err := s.GetHolding(ctx, userID, cmd.Symbol)
		if err != nil {
			return err
		}
		if err := s.SetHolding(ctx, userID, cmd.Symbol, held.Add(cmd.Shares)); err != nil {
			return err
		}
		tx.ExecutedAt = u.opts.Now().UTC()
		return s.AppendTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("buy executed",
		zap.Uint("user_id", userID),
		zap.String("symbol", tx.Symbol),
		zap.String("shares", tx.ShareDelta.String()),
		zap.String("price", tx.Price.String()),
		zap.String("cost", cost.StringFixed(entity.CashScale)),
	)
	return tx, nil
}

// Sell sells shares at the current quote.
func (u *portfolioUsecase) Sell(ctx context.Context, userID uint, cmd SellCommand) (*entity.Transaction, error) {
	cmd, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	held, err := u.ledger.GetHolding(ctx, userID, cmd.Symbol)
	if err != nil {
		return nil, err
	}
	if cmd.Shares.GreaterThan(held) {
		// an unknown account has no holdings either
		if _, err := u.ledger.GetBalance(ctx, userID); err != nil {
			return nil, err
		}
		return nil, &domain.InsufficientSharesError{Symbol: cmd.Symbol, Requested: cmd.Shares, Available: held}
	}

	q, err := u.lookup(ctx, cmd.Symbol)
	if err != nil {
		return nil, err
	}
	proceeds := entity.CashValue(cmd.Shares, q.Price)

	tx := &entity.Transaction{
		UserID:     userID,
		Symbol:     cmd.Symbol,
		ShareDelta: cmd.Shares.Neg(),
		Price:      q.Price,
	}
	err = u.mutate(ctx, userID, func(s LedgerStore) error {
		// another request may have sold in between the first check and the lock
		held, err := s.GetHolding(ctx, userID, cmd.Symbol)
		if err != nil {
			return err
		}
		if cmd.Shares.GreaterThan(held) {
			return &domain.InsufficientSharesError{Symbol: cmd.Symbol, Requested: cmd.Shares, Available: held}
		}
		if _, err := s.AdjustBalance(ctx, userID, proceeds, entity.CashSell); err != nil {
			return err
		}
		if err := s.SetHolding(ctx, userID, cmd.Symbol, held.Sub(cmd.Shares)); err != nil {
			return err
		}
		tx.ExecutedAt = u.opts.Now().UTC()
		return s.AppendTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("sell executed",
		zap.Uint("user_id", userID),
		zap.String("symbol", tx.Symbol),
		zap.String("shares", cmd.Shares.String()),
		zap.String("price", tx.Price.String()),
		zap.String("proceeds", proceeds.StringFixed(entity.CashScale)),
	)
	return tx, nil
}

// Deposit credits cash to the user's balance and returns the new balance.
func (u *portfolioUsecase) Deposit(ctx context.Context, userID uint, cmd DepositCommand) (decimal.Decimal, error) {
	cmd, err := cmd.Validate()
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = u.mutate(ctx, userID, func(s LedgerStore) error {
		b, err := s.AdjustBalance(ctx, userID, cmd.Amount, entity.CashDeposit)
		balance = b
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	logger.Info("deposit executed",
		zap.Uint("user_id", userID),
		zap.String("amount", cmd.Amount.StringFixed(entity.CashScale)),
	)
	return balance, nil
}

// GetPortfolioView prices every holding and totals it with the cash balance.
// A symbol whose quote fails yields a degraded entry instead of failing the view.
func (u *portfolioUsecase) GetPortfolioView(ctx context.Context, userID uint) (*entity.PortfolioView, error) {
	var (
		cash     decimal.Decimal
		holdings []entity.Holding
	)
	// cash and holdings are read from the same snapshot
	err := u.ledger.Atomic(ctx, func(s LedgerStore) error {
		var err error
		if cash, err = s.GetBalance(ctx, userID); err != nil {
			return err
		}
		holdings, err = s.ListHoldings(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]entity.PortfolioEntry, len(holdings))
	var g errgroup.Group
	g.SetLimit(u.opts.ViewConcurrency)
	for i, h := range holdings {
		g.Go(func() error {
			entries[i] = u.priceHolding(ctx, h)
			return nil
		})
	}
	_ = g.Wait()

	view := &entity.PortfolioView{
		UserID:        userID,
		Entries:       entries,
		Cash:          cash,
		HoldingsValue: decimal.Zero,
	}
	for _, e := range entries {
		if e.Degraded() {
			view.Degraded = true
			continue
		}
		view.HoldingsValue = view.HoldingsValue.Add(e.MarketValue)
	}
	view.GrandTotal = view.Cash.Add(view.HoldingsValue)
	return view, nil
}

func (u *portfolioUsecase) priceHolding(ctx context.Context, h entity.Holding) entity.PortfolioEntry {
	entry := entity.PortfolioEntry{
		Symbol:      h.Symbol,
		Shares:      h.Shares,
		Price:       decimal.Zero,
		MarketValue: decimal.Zero,
	}
	q, err := u.lookup(ctx, h.Symbol)
	if err != nil {
		logger.Warn("quote unavailable for holding",
			zap.Uint("user_id", h.UserID),
			zap.String("symbol", h.Symbol),
			zap.Error(err),
		)
		entry.QuoteError = quoteErrorMarker(err)
		return entry
	}
	entry.Name = q.Name
	entry.Price = q.Price
	entry.MarketValue = entity.CashValue(h.Shares, q.Price)
	return entry
}

// quoteErrorMarker returns a fixed description of a failed lookup.
// Provider error text can carry request details and is only logged.
func quoteErrorMarker(err error) string {
	if errors.Is(err, domain.ErrUnknownSymbol) {
		return domain.ErrUnknownSymbol.Error()
	}
	return domain.ErrQuoteUnavailable.Error()
}

// GetHistory returns every buy and sell of the user, most recent first. It never writes.
func (u *portfolioUsecase) GetHistory(ctx context.Context, userID uint) ([]entity.HistoryEntry, error) {
	if _, err := u.ledger.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := u.ledger.ListTransactions(ctx, userID, entity.NewestFirst)
	if err != nil {
		return nil, err
	}
	return ProjectHistory(txs), nil
}

// Quote returns the current quote for a symbol.
func (u *portfolioUsecase) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	sym, err := normalizeSymbol(symbol)
	if err != nil {
		return entity.Quote{}, err
	}
	return u.lookup(ctx, sym)
}

// mutate runs fn atomically while holding the user's lock and the account row lock.
func (u *portfolioUsecase) mutate(ctx context.Context, userID uint, fn func(LedgerStore) error) error {
	unlock, err := u.locks.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	return u.ledger.Atomic(ctx, func(s LedgerStore) error {
		if err := s.LockAccount(ctx, userID); err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		// a cancelled request must not commit
		return ctx.Err()
	})
}

// lookup resolves a quote within the configured timeout.
func (u *portfolioUsecase) lookup(ctx context.Context, symbol string) (entity.Quote, error) {
	qctx, cancel := context.WithTimeout(ctx, u.opts.QuoteTimeout)
	defer cancel()

	q, err := u.quotes.Lookup(qctx, symbol)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnknownSymbol), errors.Is(err, domain.ErrQuoteUnavailable):
		return entity.Quote{}, err
	case ctx.Err() != nil:
		return entity.Quote{}, ctx.Err()
	default:
		return entity.Quote{}, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
	}

	// trades are priced and stored at the same scale
	q.Price = q.Price.Round(entity.PriceScale)
	if !q.Price.IsPositive() {
		return entity.Quote{}, fmt.Errorf("%w: %s: non-positive price %s", domain.ErrQuoteUnavailable, symbol, q.Price)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	return q, nil
}
