// Package logger wraps a process-wide zap logger.
// Entries below error level go to stdout, error and above to stderr.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.RWMutex
	// base reports the caller of its own methods; l skips the wrapper frame below.
	base *zap.Logger
	l    *zap.Logger
)

func init() {
	zl, err := New("info", "console")
	if err != nil {
		panic(err)
	}
	set(zl)
}

// Init replaces the process logger with one at the given level and encoding ("console" or "json").
func Init(level, encoding string) error {
	zl, err := New(level, encoding)
	if err != nil {
		return err
	}
	set(zl)
	return nil
}

// New builds a logger without installing it. The returned logger reports its direct caller.
func New(level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	encoder, err := newEncoder(encoding)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= lvl && l < zapcore.ErrorLevel
			}),
		),
		zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.ErrorLevel && l >= lvl
			}),
		),
	)
	return zap.New(core, zap.AddCaller()), nil
}

func newEncoder(encoding string) (zapcore.Encoder, error) {
	cfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		TimeKey:        "time",
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}

	switch encoding {
	case "json":
		return zapcore.NewJSONEncoder(cfg), nil
	case "console", "":
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log encoding: %q", encoding)
	}
}

func set(zl *zap.Logger) {
	mu.Lock()
	base = zl
	l = zl.WithOptions(zap.AddCallerSkip(1))
	mu.Unlock()
	zap.ReplaceGlobals(zl)
}

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return l
}

// L returns the process logger for callers that need a *zap.Logger (e.g. middleware).
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debug(msg string, fields ...zap.Field) { get().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { get().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { get().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { get().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { get().Fatal(msg, fields...) }

func Sync() error {
	return get().Sync()
}
