package adapters

import (
	"time"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountModel is the GORM model for the accounts table.
type AccountModel struct {
	UserID    uint            `gorm:"primaryKey;autoIncrement:false"`
	Cash      decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AccountModel) TableName() string {
	return "accounts"
}

func (m *AccountModel) ToEntity() *entity.Account {
	return &entity.Account{
		UserID:    m.UserID,
		Cash:      m.Cash,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// HoldingModel is the GORM model for the holdings table. Rows exist only for positive share counts.
type HoldingModel struct {
	UserID    uint            `gorm:"primaryKey;autoIncrement:false"`
	Symbol    string          `gorm:"primaryKey;size:32"`
	Shares    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UpdatedAt time.Time
}

func (HoldingModel) TableName() string {
	return "holdings"
}

func (m *HoldingModel) ToEntity() entity.Holding {
	return entity.Holding{UserID: m.UserID, Symbol: m.Symbol, Shares: m.Shares}
}

// TransactionModel is the GORM model for the append-only transactions table.
type TransactionModel struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	UserID     uint            `gorm:"not null;index:idx_transactions_user_time,priority:1"`
	Symbol     string          `gorm:"size:32;not null"`
	ShareDelta decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Price      decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	ExecutedAt time.Time       `gorm:"not null;index:idx_transactions_user_time,priority:2"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

func (m *TransactionModel) ToEntity() entity.Transaction {
	return entity.Transaction{
		Seq:        m.ID,
		UserID:     m.UserID,
		Symbol:     m.Symbol,
		ShareDelta: m.ShareDelta,
		Price:      m.Price,
		ExecutedAt: m.ExecutedAt,
	}
}

func FromTransaction(t *entity.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:         t.Seq,
		UserID:     t.UserID,
		Symbol:     t.Symbol,
		ShareDelta: t.ShareDelta,
		Price:      t.Price,
		ExecutedAt: t.ExecutedAt,
	}
}

// CashMovementModel is the GORM model for the append-only cash_movements table.
type CashMovementModel struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	UserID     uint            `gorm:"not null;index"`
	Kind       string          `gorm:"size:16;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	ExecutedAt time.Time       `gorm:"not null"`
}

func (CashMovementModel) TableName() string {
	return "cash_movements"
}

func (m *CashMovementModel) ToEntity() entity.CashMovement {
	return entity.CashMovement{
		Seq:        m.ID,
		UserID:     m.UserID,
		Kind:       entity.CashMovementKind(m.Kind),
		Amount:     m.Amount,
		ExecutedAt: m.ExecutedAt,
	}
}

// Models lists every ledger model, for AutoMigrate.
func Models() []any {
	return []any{&AccountModel{}, &HoldingModel{}, &TransactionModel{}, &CashMovementModel{}}
}
