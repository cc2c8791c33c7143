// File: logging/logger.go
// Author: momentics <momentics@gmail.com>
//
// New constructs the zap.Logger every component in this module logs
// through: a production-config base with caller/stacktrace disabled and
// capital level encoding. No file sink; stdout only.

package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options configures logger construction.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Empty means
	// "info".
	Level string
	// Encoding is "console" or "json". Empty means "console".
	Encoding string
}

// New builds a *zap.Logger per opts.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "console"
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Encoding = encoding
	cc.OutputPaths = []string{"stdout"}
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(os.Stdout.Fd())) {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cc.EncoderConfig.EncodeTime = zapcore.EpochMillisTimeEncoder
	}

	return cc.Build()
}
