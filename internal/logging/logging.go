package logging

import (
	"github.com/radiusdt/ads-insights/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger from configuration. Development mode
// selects the console encoder with human-readable timestamps regardless
// of the configured format; production defaults to JSON.
func NewLogger(cfg config.LogConfig, development bool) (*zap.Logger, error) {
	var zc zap.Config
	if development || cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	return zc.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
