package macro

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultMaxDepth bounds nested invocations when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options configures an Expander.
type Options struct {
	// MaxDepth limits how many calls may be active at once.
	MaxDepth int
	// Sink receives diagnostics (optional, discarded if nil).
	Sink Sink
	// Logger receives debug traces (optional, discarded if nil).
	Logger *slog.Logger
}

// Expander dispatches #MCALL lines against a top-level table. It owns the
// call stack used for scoping, so one Expander must not be shared between
// goroutines.
type Expander struct {
	top      *Table
	stack    *CallStack
	sink     Sink
	logger   *slog.Logger
	maxDepth int
	// aborted is set when the depth limit trips and unwinds the whole
	// outermost call. It is cleared once the stack is empty again.
	aborted bool
}

// NewExpander creates an expander resolving against top.
func NewExpander(top *Table, opts Options) *Expander {
	e := &Expander{
		top:      top,
		stack:    NewCallStack(),
		sink:     opts.Sink,
		logger:   opts.Logger,
		maxDepth: opts.MaxDepth,
	}
	if e.sink == nil {
		e.sink = discard{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	return e
}

// Stack exposes the call stack for inspection.
func (e *Expander) Stack() *CallStack { return e.stack }

// SetSink replaces the diagnostic sink.
func (e *Expander) SetSink(s Sink) {
	if s == nil {
		s = discard{}
	}
	e.sink = s
}

// Arg is one key=value pair from a call line.
type Arg struct {
	Key   string
	Value string
}

// Args keeps call arguments in call-line order. A repeated key keeps its
// first position and takes the last value.
type Args []Arg

// Lookup returns the value supplied for key.
func (a Args) Lookup(key string) (string, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// ParseArgs parses key=value fields. The first = splits key from value;
// fields without = are ignored.
func ParseArgs(fields []string) Args {
	var args Args
	index := make(map[string]int)
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		if i, seen := index[key]; seen {
			args[i].Value = value
			continue
		}
		index[key] = len(args)
		args = append(args, Arg{Key: key, Value: value})
	}
	return args
}

// Call expands one invocation line and returns the produced text. Every
// failure is reported to the sink and yields an empty string. Exceeding the
// depth limit abandons the rest of the outermost call, keeping only the text
// produced before the limit was reached.
func (e *Expander) Call(line string, pos Position) string {
	kind, fields := Classify(line)
	if kind != LineCall {
		e.sink.Report(newDiagnostic(KindSyntax, pos, "macro was called but no %s detected", DirectiveCall))
		return ""
	}
	if len(fields) < 2 {
		e.sink.Report(newDiagnostic(KindSyntax, pos, "missing invocation name"))
		return ""
	}
	name := fields[1]
	if !ValidName(name) {
		e.sink.Report(newDiagnostic(KindSyntax, pos, "such macro name cannot exist: %q", name))
		return ""
	}
	args := ParseArgs(fields[2:])

	m, ok := e.stack.Resolve(name, e.top)
	if !ok {
		e.sink.Report(e.notFound(name, pos))
		return ""
	}

	if e.stack.Len() >= e.maxDepth {
		e.sink.Report(newDiagnostic(KindRecursion, pos,
			"maximum expansion depth %d exceeded calling %s (chain: %s)", e.maxDepth, name, e.stack.Chain()))
		e.aborted = true
		return ""
	}

	frame := e.stack.Push(m)
	defer func() {
		e.stack.Pop()
		if e.stack.Len() == 0 {
			e.aborted = false
		}
	}()

	e.logger.Debug("expanding macro", "name", name, "depth", frame.Depth, "args", len(args))
	return e.render(m, args, pos)
}

// render produces the body of m with args substituted.
func (e *Expander) render(m *Macro, args Args, pos Position) string {
	if len(args) != m.Params.Len() {
		e.sink.Report(newDiagnostic(KindParameter, pos,
			"number of parameters in %s is %d, was called with %d", m.Name, m.Params.Len(), len(args)))
		return "\n"
	}

	for _, arg := range args {
		if !m.Params.Has(arg.Key) {
			e.sink.Report(newDiagnostic(KindParameter, pos, "unknown parameter %s for %s", arg.Key, m.Name))
		}
	}

	var out strings.Builder
	for _, line := range m.Body {
		if e.aborted {
			break
		}
		for _, arg := range args {
			line = Substitute(line, arg.Key, arg.Value)
		}
		if kind, _ := Classify(line); kind == LineCall {
			out.WriteString(e.Call(line, pos))
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.String()
}

func (e *Expander) notFound(name string, pos Position) *Diagnostic {
	d := newDiagnostic(KindResolution, pos, "macro called %s not found", name)
	if ranks := fuzzy.RankFindFold(name, e.stack.Visible(e.top)); len(ranks) > 0 {
		sort.Sort(ranks)
		d.Msg = fmt.Sprintf("%s (did you mean %s?)", d.Msg, ranks[0].Target)
	}
	return d
}
