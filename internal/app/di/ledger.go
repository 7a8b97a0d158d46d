package di

import (
	"gorm.io/gorm"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/adapters"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/transport/handler"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	"github.com/fuzzychicken/cs50-finance/internal/platform/config"
)

// NewPortfolioUsecase wires the GORM ledger store and the quote provider into the engine.
func NewPortfolioUsecase(db *gorm.DB, quotes usecase.QuoteProvider, cfg config.Ledger) handler.PortfolioUsecase {
	return usecase.NewPortfolioUsecase(adapters.NewLedgerRepository(db), quotes, usecase.Options{
		QuoteTimeout:    cfg.QuoteTimeout,
		ViewConcurrency: cfg.ViewConcurrency,
	})
}

// NewPortfolioHandler builds the HTTP handler for the portfolio feature.
func NewPortfolioHandler(db *gorm.DB, quotes usecase.QuoteProvider, cfg config.Ledger) *handler.PortfolioHandler {
	return handler.NewPortfolioHandler(NewPortfolioUsecase(db, quotes, cfg))
}
