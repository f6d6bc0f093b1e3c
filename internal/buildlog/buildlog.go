// Package buildlog wires the build's diagnostics to retrogolib/log, fixing
// the record shape used across the whole build: structured fields for
// informational and error records, plain messages for warnings. It also
// adapts the assembler's printf-style Warner interface to the structured
// logger, grounded in the teacher's internal/config.CreateLogger and its
// logger.Warn/logger.Info call sites from the teacher's disassembler
// (its app/main-package logging of build progress and non-fatal anomalies).
package buildlog

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Logger wraps retrogolib/log.Logger, giving it the assembler.Warner method
// the assembler package expects for non-fatal diagnostics.
type Logger struct {
	*log.Logger
}

// New creates a Logger at the verbosity the build was invoked with. debug
// takes priority over quiet, matching the teacher's createLogger.
func New(debug, quiet bool) *Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return &Logger{Logger: log.NewWithConfig(cfg)}
}

// Warnf implements assembler.Warner, translating a printf-style diagnostic
// into a structured Warn record.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}
