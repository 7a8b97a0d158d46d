// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/transport/http/dto"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	jwtmw "github.com/fuzzychicken/cs50-finance/internal/platform/jwt"
)

// RetryAfterSeconds は見積もり取得に失敗した際にRetry-Afterヘッダーで返す秒数です。
const RetryAfterSeconds = "5"

// PortfolioUsecase は売買・入金・照会のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	Buy(ctx context.Context, userID uint, cmd usecase.BuyCommand) (*entity.Transaction, error)
	Sell(ctx context.Context, userID uint, cmd usecase.SellCommand) (*entity.Transaction, error)
	Deposit(ctx context.Context, userID uint, cmd usecase.DepositCommand) (decimal.Decimal, error)
	GetPortfolioView(ctx context.Context, userID uint) (*entity.PortfolioView, error)
	GetHistory(ctx context.Context, userID uint) ([]entity.HistoryEntry, error)
	Quote(ctx context.Context, symbol string) (entity.Quote, error)
}

// PortfolioHandler はポートフォリオ関連のHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc PortfolioUsecase
}

// NewPortfolioHandler は指定されたusecaseでPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc}
}

// Buy は株式の購入を処理します。
//
// エンドポイント例:
// POST /buy {"symbol":"AAPL","shares":"10"}
func (h *PortfolioHandler) Buy(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req dto.TradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tx, err := h.uc.Buy(c.Request.Context(), uid, usecase.BuyCommand{Symbol: req.Symbol, Shares: req.Shares})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTradeResponse(tx))
}

// Sell は株式の売却を処理します。
//
// エンドポイント例:
// POST /sell {"symbol":"AAPL","shares":"4"}
func (h *PortfolioHandler) Sell(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req dto.TradeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tx, err := h.uc.Sell(c.Request.Context(), uid, usecase.SellCommand{Symbol: req.Symbol, Shares: req.Shares})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTradeResponse(tx))
}

// Deposit は現金の入金を処理し、入金後の残高を返します。
func (h *PortfolioHandler) Deposit(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req dto.DepositReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	balance, err := h.uc.Deposit(c.Request.Context(), uid, usecase.DepositCommand{Amount: req.Amount})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{Cash: dto.NewAmount(balance)})
}

// Portfolio は保有銘柄と現金、評価額の合計を返します。
// 一部の銘柄の価格が取得できない場合も200で返し、degradedをtrueにします。
func (h *PortfolioHandler) Portfolio(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.uc.GetPortfolioView(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPortfolioResponse(view))
}

// History は取引履歴を新しい順に返します。
func (h *PortfolioHandler) History(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	entries, err := h.uc.GetHistory(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryResponse(entries))
}

// Quote は銘柄の現在値を返します。
//
// エンドポイント例:
// GET /quote/AAPL
func (h *PortfolioHandler) Quote(c *gin.Context) {
	q, err := h.uc.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

func userID(c *gin.Context) (uint, bool) {
	uid, ok := jwtmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
	}
	return uid, ok
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body", Code: "invalid_input"})
}

// writeError はドメインエラーの種類をHTTPステータスに変換して返します。
// 5xxの場合は内部の詳細を返さず、ログ用にc.Errorへ記録します。
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	kind := domain.Kind(err)
	switch {
	case errors.Is(kind, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "invalid_input"})
	case errors.Is(kind, domain.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error(), Code: "unknown_symbol"})
	case errors.Is(kind, domain.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "account not found", Code: "account_not_found"})
	case errors.Is(kind, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error(), Code: "insufficient_funds"})
	case errors.Is(kind, domain.ErrInsufficientShares):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error(), Code: "insufficient_shares"})
	case errors.Is(kind, domain.ErrQuoteUnavailable):
		c.Header("Retry-After", RetryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "quote unavailable", Code: "quote_unavailable"})
	case errors.Is(kind, domain.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "storage unavailable", Code: "storage_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Code: "internal"})
	}
}
