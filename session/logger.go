// Package session holds the values that the original COT kept as global
// mutable state - logging, helper-tool result caching, and the scratch
// working directory - as explicit values threaded through operations
// instead, per spec.md section 9.
package session

import (
	"fmt"
	"time"
)

// Logger is the logging abstraction threaded through a Session. It mirrors
// cli_tools/common/utils/logging.Logger's prefix-and-timestamp shape, but
// as an interface so tests can substitute a recording logger.
type Logger interface {
	// Verbose logs a message only relevant to debugging the tool itself.
	Verbose(format string, a ...interface{})
	// User logs a message intended for the person running the tool.
	User(format string, a ...interface{})
}

// StdLogger is the default Logger, printing prefixed, timestamped lines to
// an injected writer-like Printf function. Grounded on
// cli_tools/common/utils/logging.Logger.Log.
type StdLogger struct {
	Prefix string
	Debug  bool
	Printf func(format string, a ...interface{}) (int, error)
}

// NewStdLogger creates a StdLogger that writes via fmt.Printf.
func NewStdLogger(prefix string, debug bool) *StdLogger {
	return &StdLogger{Prefix: prefix, Debug: debug, Printf: fmt.Printf}
}

func (l *StdLogger) line(level, format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	l.Printf("%s %s [%s] %s\n", l.Prefix, time.Now().Format("2006-01-02T15:04:05Z"), level, msg)
}

// Verbose implements Logger.
func (l *StdLogger) Verbose(format string, a ...interface{}) {
	if l.Debug {
		l.line("debug", format, a...)
	}
}

// User implements Logger.
func (l *StdLogger) User(format string, a ...interface{}) {
	l.line("info", format, a...)
}

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

// Verbose implements Logger.
func (NopLogger) Verbose(string, ...interface{}) {}

// User implements Logger.
func (NopLogger) User(string, ...interface{}) {}
