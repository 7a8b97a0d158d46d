// Package router はアプリケーションのHTTPルーティングを組み立てます。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portfoliohandler "github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/transport/handler"
	"github.com/fuzzychicken/cs50-finance/internal/platform/http/handler"
	"github.com/fuzzychicken/cs50-finance/internal/platform/http/middleware"
	jwtmw "github.com/fuzzychicken/cs50-finance/internal/platform/jwt"
)

// Options はルーター全体に適用する設定です。
type Options struct {
	JWTSecret   string
	CORSOrigins []string // 空の場合はCORSを無効化
	Logger      *zap.Logger
}

func NewRouter(health *handler.HealthHandler, portfolio *portfoliohandler.PortfolioHandler, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID, "Retry-After"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret), middleware.NoStore())
	{
		auth.POST("/buy", portfolio.Buy)
		auth.POST("/sell", portfolio.Sell)
		auth.POST("/deposit", portfolio.Deposit)
		auth.GET("/portfolio", portfolio.Portfolio)
		auth.GET("/history", portfolio.History)
		auth.GET("/quote/:symbol", portfolio.Quote)
	}

	return r
}
