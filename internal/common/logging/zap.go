package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(name string) (*zap.Logger, error) {
	return newLogger(name, zapcore.InfoLevel)
}

// NewDebugLogger lowers the level so dropped-datagram classification
// decisions become visible.
func NewDebugLogger(name string) (*zap.Logger, error) {
	return newLogger(name, zapcore.DebugLevel)
}

func newLogger(name string, level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if name != "" {
		logger = logger.Named(name)
	}
	return logger, nil
}
