// Package logger provides the process-wide structured logger built on Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// "production" logs JSON at info level, "test" discards everything and any
// other value logs human-readable console output at debug level.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		switch env {
		case "production":
			cfg = zap.NewProductionConfig()
		case "test":
			sugar = zap.NewNop().Sugar()
			return
		default:
			cfg = zap.NewDevelopmentConfig()
			level.SetLevel(zapcore.DebugLevel)
		}
		cfg.Level = level

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// SetLevel changes the minimum level of the global logger at runtime.
func SetLevel(name string) error {
	l, err := zapcore.ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
