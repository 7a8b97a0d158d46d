package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fuzzychicken/cs50-finance/internal/app/router"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/adapters"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/domain/entity"
	portfoliohandler "github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/transport/handler"
	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/usecase"
	"github.com/fuzzychicken/cs50-finance/internal/platform/http/handler"
	jwtmw "github.com/fuzzychicken/cs50-finance/internal/platform/jwt"
)

const testSecret = "router-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fixedQuotes は固定価格を返すQuoteProviderです。
type fixedQuotes map[string]string

func (f fixedQuotes) Lookup(_ context.Context, symbol string) (entity.Quote, error) {
	p, ok := f[symbol]
	if !ok {
		return entity.Quote{}, fmt.Errorf("%w: %s", domain.ErrUnknownSymbol, symbol)
	}
	return entity.Quote{Symbol: symbol, Name: symbol + " Inc.", Price: decimal.RequireFromString(p)}, nil
}

type testServer struct {
	engine *gin.Engine
	token  string
}

// setupServer はSQLiteのインメモリDBで実際の配線と同じルーターを構築します。
func setupServer(t *testing.T, opts router.Options) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(adapters.Models()...))

	repo := adapters.NewLedgerRepository(db)
	_, err = repo.OpenAccount(context.Background(), 1, decimal.RequireFromString("10000.00"))
	require.NoError(t, err)

	uc := usecase.NewPortfolioUsecase(repo, fixedQuotes{"AAPL": "150"}, usecase.Options{})
	opts.JWTSecret = testSecret
	r := router.NewRouter(handler.NewHealthHandler(sqlDB), portfoliohandler.NewPortfolioHandler(uc), opts)

	token, err := jwtmw.NewGenerator(testSecret, time.Hour).GenerateToken(1)
	require.NoError(t, err)

	return &testServer{engine: r, token: token}
}

func (s *testServer) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	s := setupServer(t, router.Options{})

	w := s.do(http.MethodGet, "/healthz", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresToken(t *testing.T) {
	s := setupServer(t, router.Options{})

	for _, path := range []string{"/portfolio", "/history", "/quote/AAPL"} {
		w := s.do(http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(http.MethodPost, "/buy", `{"symbol":"AAPL","shares":"1"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestRouter_BuyThenPortfolio はトークン発行から購入、照会までを通しで検証します。
func TestRouter_BuyThenPortfolio(t *testing.T) {
	s := setupServer(t, router.Options{})

	w := s.do(http.MethodPost, "/buy", `{"symbol":"aapl","shares":"10"}`, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	w = s.do(http.MethodGet, "/portfolio", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Holdings []struct {
			Symbol string `json:"symbol"`
			Shares string `json:"shares"`
		} `json:"holdings"`
		Cash struct {
			Value string `json:"value"`
		} `json:"cash"`
		Total struct {
			Display string `json:"display"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "AAPL", got.Holdings[0].Symbol)
	assert.Equal(t, "10", got.Holdings[0].Shares)
	assert.Equal(t, "8500.00", got.Cash.Value)
	assert.Equal(t, "$10,000.00", got.Total.Display)

	w = s.do(http.MethodGet, "/history", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"side":"buy"`)
}

func TestRouter_DomainErrors(t *testing.T) {
	s := setupServer(t, router.Options{})

	w := s.do(http.MethodPost, "/buy", `{"symbol":"AAPL","shares":"1000"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/sell", `{"symbol":"AAPL","shares":"1"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/quote/NOPE", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/buy", `{"symbol":"AAPL","shares":"0"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	s := setupServer(t, router.Options{CORSOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/portfolio", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
