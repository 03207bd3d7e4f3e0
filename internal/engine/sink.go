package engine

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/macropp/internal/macro"
)

// logSink mirrors diagnostics into the structured log at debug level.
// User-facing reporting goes through the CLI renderer instead.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(d *macro.Diagnostic) {
	s.logger.Debug("diagnostic", "kind", d.Kind.String(), "pos", d.Pos.String(), "msg", d.Msg)
}

// ErrorLog writes one "Error: ..." line per diagnostic to an underlying
// writer, typically error_log.txt next to the input.
type ErrorLog struct {
	mu    sync.Mutex
	w     *bufio.Writer
	count int
	err   error
}

// NewErrorLog creates an error log writing to w.
func NewErrorLog(w io.Writer) *ErrorLog {
	return &ErrorLog{w: bufio.NewWriter(w)}
}

// Report implements macro.Sink. The first write failure is kept and
// returned by Flush; later diagnostics are dropped.
func (l *ErrorLog) Report(d *macro.Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}
	l.count++
	_, l.err = fmt.Fprintf(l.w, "Error: %s\n", d.Error())
}

// Count returns the number of diagnostics written.
func (l *ErrorLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Flush writes any buffered lines and returns the first write error.
func (l *ErrorLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return fmt.Errorf("failed to write error log: %w", l.err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
