package engine

// run.go - the top-level line dispatch loop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/macropp/internal/macro"
)

// Run summarises one expansion pass over a document.
type Run struct {
	ID          string
	File        string
	Lines       int
	Definitions int
	Calls       int
	Diagnostics []*macro.Diagnostic
	Duration    time.Duration
}

// OK reports whether the run produced no diagnostics.
func (r *Run) OK() bool { return len(r.Diagnostics) == 0 }

// ExpandOptions configures a single Expand call.
type ExpandOptions struct {
	// File names the document in diagnostics (optional)
	File string
	// Sink receives this run's diagnostics in addition to the engine sink
	Sink macro.Sink
}

// Expand processes lines and writes the expanded document to w.
//
// Definitions are stored in the top-level table, calls are expanded, and
// everything else is copied. Escapes are stripped from every written line.
// Malformed blocks and failed calls are reported and skipped; only write
// failures are returned as errors.
func (e *Engine) Expand(lines []string, w io.Writer, opts ExpandOptions) (*Run, error) {
	run := &Run{ID: uuid.New().String(), File: opts.File, Lines: len(lines)}
	start := time.Now()

	e.logger.Info("starting run", "run_id", run.ID, "file", opts.File, "lines", len(lines))

	sink := e.runSink(run, opts.Sink)
	e.expander.SetSink(sink)
	defer e.expander.SetSink(e.runSink(nil, nil))

	bw := bufio.NewWriter(w)
	for i := 0; i < len(lines); {
		line := lines[i]
		pos := macro.Position{File: opts.File, Line: i + 1}
		kind, fields := macro.Classify(line)

		switch kind {
		case macro.LineDefine:
			m, n := macro.Define(lines[i:], pos, e.top, sink)
			if m != nil {
				run.Definitions++
				e.logger.Debug("compiled macro", "run_id", run.ID, "name", m.Name, "line", pos.Line,
					"params", m.Params.Len(), "children", m.Children.Len())
			}
			i += n
			continue
		case macro.LineEnd:
			sink.Report(&macro.Diagnostic{Kind: macro.KindStructural, Pos: pos, Msg: "unexpected " + macro.DirectiveEnd})
		case macro.LineCall:
			if len(fields) < 2 {
				sink.Report(&macro.Diagnostic{Kind: macro.KindSyntax, Pos: pos,
					Msg: fmt.Sprintf("detected %s but no arguments were given", macro.DirectiveCall)})
				break
			}
			run.Calls++
			if err := writeExpansion(bw, e.expander.Call(line, pos)); err != nil {
				return run, err
			}
		case macro.LineDirective:
			sink.Report(&macro.Diagnostic{Kind: macro.KindSyntax, Pos: pos,
				Msg: fmt.Sprintf("unexpected # in %s", fields[0])})
		default:
			if err := writeLine(bw, line); err != nil {
				return run, err
			}
		}
		i++
	}

	if err := bw.Flush(); err != nil {
		return run, fmt.Errorf("failed to write output: %w", err)
	}

	run.Duration = time.Since(start)
	e.logger.Info("run completed", "run_id", run.ID, "definitions", run.Definitions,
		"calls", run.Calls, "diagnostics", len(run.Diagnostics), "duration", run.Duration)
	return run, nil
}

// ExpandFile reads the document at path and writes its expansion to w.
func (e *Engine) ExpandFile(path string, w io.Writer, sink macro.Sink) (*Run, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is the user-supplied input document
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines, err := macro.SplitLines(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.Expand(lines, w, ExpandOptions{File: path, Sink: sink})
}

// Define compiles the definitions in lines into the top-level table without
// producing output. Non-definition lines are ignored.
func (e *Engine) Define(lines []string, file string, sink macro.Sink) []*macro.Macro {
	s := e.runSink(nil, sink)
	var defined []*macro.Macro
	for i := 0; i < len(lines); {
		if kind, _ := macro.Classify(lines[i]); kind != macro.LineDefine {
			i++
			continue
		}
		m, n := macro.Define(lines[i:], macro.Position{File: file, Line: i + 1}, e.top, s)
		if m != nil {
			defined = append(defined, m)
		}
		i += n
	}
	return defined
}

// runSink combines the run recorder, the engine sink and a per-run sink.
func (e *Engine) runSink(run *Run, extra macro.Sink) macro.Sink {
	sinks := macro.MultiSink{e.sink, extra, logSink{e.logger}}
	if run != nil {
		sinks = append(sinks, macro.SinkFunc(func(d *macro.Diagnostic) {
			run.Diagnostics = append(run.Diagnostics, d)
		}))
	}
	return sinks
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(macro.StripEscapes(line)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeExpansion strips escapes line by line so escape state never
// crosses a line boundary.
func writeExpansion(w *bufio.Writer, text string) error {
	for len(text) > 0 {
		line, rest, found := cutLine(text)
		if _, err := w.WriteString(macro.StripEscapes(line)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if found {
			if err := w.WriteByte('\n'); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		text = rest
	}
	return nil
}

func cutLine(s string) (line, rest string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
