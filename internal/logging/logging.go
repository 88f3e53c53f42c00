// Package logging builds the process logger from config.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/finreport/internal/config"
)

// Option configures New.
type Option func(*options)

type options struct {
	sink zapcore.WriteSyncer
}

// WithSink sends log output to ws instead of stderr.
func WithSink(ws zapcore.WriteSyncer) Option {
	return func(o *options) { o.sink = ws }
}

// New creates a structured logger with the configured level and encoding.
func New(cfg config.LogConfig, opts ...Option) (*zap.Logger, error) {
	o := options{sink: zapcore.Lock(os.Stderr)}
	for _, opt := range opts {
		opt(&o)
	}

	var level zapcore.Level
	if strings.TrimSpace(cfg.Level) != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("invalid level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console":
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, o.sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()), nil
}
