package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the binder logger. An empty level returns a no-op
// logger; debug uses the development configuration, the other levels the
// production one.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg == nil || cfg.LogLevel == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}

	if cfg.Environment != "" {
		logger = logger.With(zap.String("environment", cfg.Environment))
	}

	return logger.Named("inject"), nil
}
