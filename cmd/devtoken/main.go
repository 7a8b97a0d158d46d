// devtoken opens a ledger account for a user id and prints a signed bearer token for it.
//
//	go run ./cmd/devtoken -user 1
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/adapters"
	"github.com/fuzzychicken/cs50-finance/internal/platform/config"
	"github.com/fuzzychicken/cs50-finance/internal/platform/db"
	jwtmw "github.com/fuzzychicken/cs50-finance/internal/platform/jwt"
	"github.com/fuzzychicken/cs50-finance/internal/platform/logger"
)

func main() {
	userID := flag.Uint("user", 1, "ledger user id")
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("user id must be positive")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := db.OpenDB(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	initialCash, err := cfg.Ledger.InitialCashAmount()
	if err != nil {
		logger.Fatal("invalid initial cash", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uid := uint(*userID)
	created, err := adapters.NewLedgerRepository(gdb).OpenAccount(ctx, uid, initialCash)
	if err != nil {
		logger.Fatal("failed to open account", zap.Uint("user_id", uid), zap.Error(err))
	}
	if created {
		logger.Info("account opened", zap.Uint("user_id", uid), zap.String("cash", initialCash.StringFixed(2)))
	} else {
		logger.Info("account already exists", zap.Uint("user_id", uid))
	}

	token, err := jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration).GenerateToken(uid)
	if err != nil {
		logger.Fatal("failed to generate token", zap.Error(err))
	}
	fmt.Println(token)
}
