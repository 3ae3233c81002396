// Package logger builds the application's zap logger. Components receive
// a *zap.SugaredLogger and never construct their own.
package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a sugared logger writing console-encoded lines to out at the
// given level. Pass zapcore.DebugLevel for verbose runs.
func New(level zapcore.Level, out io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(out),
		level,
	)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Named returns a child logger with the given component name.
func Named(base *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if base == nil {
		return Nop()
	}
	return base.Named(component)
}
