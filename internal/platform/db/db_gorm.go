// Package db はデータベース接続の初期化とスキーマ管理を提供します。
package db

import (
	"fmt"
	"time"

	"github.com/fuzzychicken/cs50-finance/internal/feature/portfolio/adapters"
	"github.com/fuzzychicken/cs50-finance/internal/platform/config"
	"github.com/fuzzychicken/cs50-finance/internal/platform/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// retryInterval は接続リトライの待機間隔です。
var retryInterval = 3 * time.Second

// Opener はDSNからGORM接続を開く関数です。テストで差し替え可能にするため注入します。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はPostgreSQL用のDSN文字列を組み立てます。
// InstanceName が設定されている場合はCloud SQLのUnixソケットを優先します。
func BuildDSN(cfg config.Database) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// ConnectWithRetry は timeout に達するまで接続をリトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		logger.Warn("db connect failed, retrying", zap.Error(err), zap.Duration("interval", retryInterval))
		time.Sleep(retryInterval)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
}

// PostgresOpener はGORMのPostgreSQLドライバで接続します。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener はGORMのSQLiteドライバで接続します。
func SQLiteOpener(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), gormConfig())
}

// OpenDB は設定に従ってDBへ接続し、必要ならマイグレーションを実行します。
// PostgreSQLはgooseのSQLマイグレーション、SQLiteはAutoMigrateを使います。
func OpenDB(cfg config.Database) (*gorm.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := BuildDSN(cfg)
		db, err := ConnectWithRetry(dsn, cfg.ConnectTimeout, PostgresOpener)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := MigratePostgres(dsn); err != nil {
				return nil, err
			}
		}
		return db, nil

	case config.DriverSQLite:
		db, err := ConnectWithRetry(cfg.SQLitePath, cfg.ConnectTimeout, SQLiteOpener)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLiteは書き込みが単一なので接続を1本に絞る
		sqlDB.SetMaxOpenConns(1)
		if cfg.RunMigrations {
			if err := AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate は台帳テーブルをGORMモデルから作成します。
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(adapters.Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
