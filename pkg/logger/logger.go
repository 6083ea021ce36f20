package logger

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the levelled logging contract used across sir.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// StdLogger writes through a standard *log.Logger. Debug output is dropped
// unless enabled.
type StdLogger struct {
	logger *log.Logger
	debug  atomic.Bool
}

// New returns a StdLogger writing to w with the standard flags.
func New(w io.Writer, debug bool) *StdLogger {
	l := &StdLogger{logger: log.New(w, "sir: ", log.LstdFlags)}
	l.debug.Store(debug)
	return l
}

// SetDebug toggles debug output.
func (l *StdLogger) SetDebug(on bool) { l.debug.Store(on) }

func (l *StdLogger) Debug(msg string, args ...any) {
	if !l.debug.Load() {
		return
	}
	l.logger.Printf("[DEBUG] "+msg, args...)
}

func (l *StdLogger) Info(msg string, args ...any) {
	l.logger.Printf("[INFO] "+msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	l.logger.Printf("[WARN] "+msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	l.logger.Printf("[ERROR] "+msg, args...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// Default logs to stderr with debug off.
var Default Logger = New(os.Stderr, false)
