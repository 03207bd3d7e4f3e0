package macro

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoClosure is returned by Extract when the input ends before the
// definition that starts it is balanced by a matching #MEND.
var ErrNoClosure = errors.New("no closure found")

// Position tracks a source location for diagnostics.
type Position struct {
	File string
	Line int // 1-based, 0 when unknown
}

func (p Position) String() string {
	switch {
	case p.File != "" && p.Line > 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	case p.File != "":
		return p.File
	case p.Line > 0:
		return fmt.Sprintf("line %d", p.Line)
	default:
		return ""
	}
}

// Offset returns the position n lines further down the same file.
func (p Position) Offset(n int) Position {
	if p.Line == 0 {
		return p
	}
	return Position{File: p.File, Line: p.Line + n}
}

// Kind classifies a diagnostic.
type Kind int

// Kind constants for diagnostic classes.
const (
	KindSyntax     Kind = iota // Malformed header, name or directive
	KindStructural             // Unbalanced #MDEF/#MEND
	KindResolution             // Call to a name no scope answers
	KindParameter              // Arity mismatch or unknown parameter key
	KindRecursion              // Expansion depth limit reached
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindStructural:
		return "structural error"
	case KindResolution:
		return "resolution error"
	case KindParameter:
		return "parameter error"
	case KindRecursion:
		return "recursion error"
	default:
		return "error"
	}
}

// Diagnostic is a non-fatal problem found while compiling or expanding.
// All kinds are reported the same way; none of them stops a run.
type Diagnostic struct {
	Kind Kind
	Pos  Position
	Msg  string
}

func newDiagnostic(kind Kind, pos Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string {
	if loc := d.Pos.String(); loc != "" {
		return fmt.Sprintf("%s: %s", loc, d.Msg)
	}
	return d.Msg
}

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(d *Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d *Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d *Diagnostic) { f(d) }

// Collector is a Sink that keeps every diagnostic in order.
type Collector struct {
	Diagnostics []*Diagnostic
}

// Report appends d.
func (c *Collector) Report(d *Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int { return len(c.Diagnostics) }

// Messages returns the bare messages, without positions.
func (c *Collector) Messages() []string {
	msgs := make([]string, len(c.Diagnostics))
	for i, d := range c.Diagnostics {
		msgs[i] = d.Msg
	}
	return msgs
}

// Contains reports whether any collected message contains substr.
func (c *Collector) Contains(substr string) bool {
	for _, d := range c.Diagnostics {
		if strings.Contains(d.Msg, substr) {
			return true
		}
	}
	return false
}

// Reset drops all collected diagnostics.
func (c *Collector) Reset() { c.Diagnostics = nil }

// MultiSink fans every diagnostic out to several sinks.
type MultiSink []Sink

// Report forwards d to each non-nil sink.
func (m MultiSink) Report(d *Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}

// discard is used when callers pass a nil sink.
type discard struct{}

func (discard) Report(*Diagnostic) {}

func reportAll(sink Sink, diags []*Diagnostic) {
	for _, d := range diags {
		sink.Report(d)
	}
}
