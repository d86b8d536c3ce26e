// Package logging builds the zap logger shared by the binaries. The core
// packages take a *zap.Logger rather than constructing their own.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger writing to stderr. Verbose lowers the level
// to debug. Stdout stays reserved for assistant answers.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Nop returns a logger that discards everything, for tests and callers that
// have not set up logging yet.
func Nop() *zap.Logger {
	return zap.NewNop()
}
