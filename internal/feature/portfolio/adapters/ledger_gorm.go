// Package adapters implements the ledger store on top of GORM.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerGorm struct {
	db   *gorm.DB
	inTx bool
	now  func() time.Time
}

var _ usecase.LedgerStore = (*ledgerGorm)(nil)

func NewLedgerRepository(db *gorm.DB) *ledgerGorm {
	return &ledgerGorm{db: db, now: time.Now}
}

func (r *ledgerGorm) withTx(tx *gorm.DB) *ledgerGorm {
	return &ledgerGorm{db: tx, inTx: true, now: r.now}
}

// atomic runs fn inside a transaction, reusing the current one when already bound to it.
func (r *ledgerGorm) atomic(ctx context.Context, fn func(*ledgerGorm) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.withTx(tx))
	})
}

func (r *ledgerGorm) Atomic(ctx context.Context, fn func(tx usecase.LedgerStore) error) error {
	err := r.atomic(ctx, func(s *ledgerGorm) error { return fn(s) })
	return wrapStorage("atomic", err)
}

func (r *ledgerGorm) LockAccount(ctx context.Context, userID uint) error {
	var m AccountModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("user_id").
		Where("user_id = ?", userID).
		Take(&m).Error
	return wrapStorage("lock account", notFound(err, userID))
}

// OpenAccount creates the account with initialCash unless it already exists.
// The initial credit is recorded as a deposit. It reports whether an account was created.
func (r *ledgerGorm) OpenAccount(ctx context.Context, userID uint, initialCash decimal.Decimal) (bool, error) {
	if initialCash.IsNegative() {
		return false, &domain.InvalidInputError{Field: "initial_cash", Reason: "must not be negative"}
	}

	created := false
	err := r.atomic(ctx, func(s *ledgerGorm) error {
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&AccountModel{UserID: userID, Cash: initialCash})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		if initialCash.IsZero() {
			return nil
		}
		return s.db.WithContext(ctx).Create(&CashMovementModel{
			UserID:     userID,
			Kind:       string(entity.CashDeposit),
			Amount:     initialCash,
			ExecutedAt: s.now().UTC(),
		}).Error
	})
	if err != nil {
		return false, wrapStorage("open account", err)
	}
	return created, nil
}

func (r *ledgerGorm) GetAccount(ctx context.Context, userID uint) (*entity.Account, error) {
	var m AccountModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&m).Error
	if err != nil {
		return nil, wrapStorage("get account", notFound(err, userID))
	}
	return m.ToEntity(), nil
}

func (r *ledgerGorm) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	acc, err := r.GetAccount(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Cash, nil
}

func (r *ledgerGorm) AdjustBalance(ctx context.Context, userID uint, delta decimal.Decimal, kind entity.CashMovementKind) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.atomic(ctx, func(s *ledgerGorm) error {
		var acc AccountModel
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Take(&acc).Error
		if err != nil {
			return notFound(err, userID)
		}

		next := acc.Cash.Add(delta)
		if next.IsNegative() {
			return &domain.InsufficientFundsError{Required: delta.Neg(), Available: acc.Cash}
		}
		if err := s.db.WithContext(ctx).
			Model(&AccountModel{}).
			Where("user_id = ?", userID).
			Update("cash", next).Error; err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Create(&CashMovementModel{
			UserID:     userID,
			Kind:       string(kind),
			Amount:     delta,
			ExecutedAt: s.now().UTC(),
		}).Error; err != nil {
			return err
		}
		balance = next
		return nil
	})
	if err != nil {
		return decimal.Zero, wrapStorage("adjust balance", err)
	}
	return balance, nil
}

func (r *ledgerGorm) GetHolding(ctx context.Context, userID uint, symbol string) (decimal.Decimal, error) {
	var m HoldingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, wrapStorage("get holding", err)
	}
	return m.Shares, nil
}

func (r *ledgerGorm) SetHolding(ctx context.Context, userID uint, symbol string, shares decimal.Decimal) error {
	if shares.IsNegative() {
		return fmt.Errorf("%w: %s shares would become %s", domain.ErrInvalidState, symbol, shares)
	}

	q := r.db.WithContext(ctx)
	if shares.IsZero() {
		err := q.Where("user_id = ? AND symbol = ?", userID, symbol).Delete(&HoldingModel{}).Error
		return wrapStorage("delete holding", err)
	}

	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"shares", "updated_at"}),
	}).Create(&HoldingModel{UserID: userID, Symbol: symbol, Shares: shares}).Error
	return wrapStorage("set holding", err)
}

func (r *ledgerGorm) AppendTransaction(ctx context.Context, tx *entity.Transaction) error {
	m := FromTransaction(tx)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return wrapStorage("append transaction", err)
	}
	tx.Seq = m.ID
	return nil
}

func (r *ledgerGorm) ListTransactions(ctx context.Context, userID uint, order entity.Order) ([]entity.Transaction, error) {
	dir := "ASC"
	if order == entity.NewestFirst {
		dir = "DESC"
	}

	var rows []TransactionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("executed_at " + dir).
		Order("id " + dir).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorage("list transactions", err)
	}

	out := make([]entity.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *ledgerGorm) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	var rows []HoldingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND shares > 0", userID).
		Order("symbol ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorage("list holdings", err)
	}

	out := make([]entity.Holding, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *ledgerGorm) ListCashMovements(ctx context.Context, userID uint) ([]entity.CashMovement, error) {
	var rows []CashMovementModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStorage("list cash movements", err)
	}

	out := make([]entity.CashMovement, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func notFound(err error, userID uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user %d", domain.ErrAccountNotFound, userID)
	}
	return err
}

// wrapStorage marks infrastructure failures as domain.ErrStorageUnavailable.
// Domain errors and context cancellation pass through unchanged.
func wrapStorage(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.Kind(err) != nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}
