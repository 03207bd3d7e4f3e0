package macro

import "strings"

// Frame is one activation on the call stack.
type Frame struct {
	Macro *Macro
	Depth int // 1 for the outermost call
}

// CallStack records the macros currently being expanded. It replaces
// per-macro active flags: a macro is active exactly while a frame for it
// is on the stack, and its depth is that of its deepest frame.
type CallStack struct {
	frames []Frame
}

// NewCallStack returns an empty stack.
func NewCallStack() *CallStack {
	return &CallStack{}
}

// Len returns the number of active frames.
func (s *CallStack) Len() int { return len(s.frames) }

// Push activates m one level deeper than the current top.
func (s *CallStack) Push(m *Macro) Frame {
	f := Frame{Macro: m, Depth: len(s.frames) + 1}
	s.frames = append(s.frames, f)
	return f
}

// Pop deactivates the top frame.
func (s *CallStack) Pop() {
	if len(s.frames) > 0 {
		s.frames[len(s.frames)-1] = Frame{}
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the deepest depth at which m is active, or 0.
func (s *CallStack) Depth(m *Macro) int {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Macro == m {
			return s.frames[i].Depth
		}
	}
	return 0
}

// Active reports whether m is being expanded.
func (s *CallStack) Active(m *Macro) bool {
	return s.Depth(m) > 0
}

// Chain renders the active call chain as "a -> b -> c".
func (s *CallStack) Chain() string {
	names := make([]string, len(s.frames))
	for i, f := range s.frames {
		names[i] = f.Macro.Name
	}
	return strings.Join(names, " -> ")
}

// scope is a table exposed to resolution at a given rank.
type scope struct {
	table *Table
	rank  int
}

// scopes lists the searchable tables, deepest activation first and the
// top-level table last. Only the children of active macros are exposed.
func (s *CallStack) scopes(top *Table) []scope {
	out := make([]scope, 0, len(s.frames)+1)
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		out = append(out, scope{table: f.Macro.Children, rank: f.Depth})
	}
	return append(out, scope{table: top, rank: 0})
}

// Resolve finds the macro that answers name under the current activations.
//
// Candidates come from the top-level table (rank 0) and from the children
// of every active macro (rank = that activation's depth). A candidate that
// is itself active ranks at least at its own depth. The highest rank wins.
// Scopes are visited deepest first and only a strictly higher rank replaces
// the current choice, so when an active macro and its own same-named child
// tie, the nested child wins.
func (s *CallStack) Resolve(name string, top *Table) (*Macro, bool) {
	var best *Macro
	bestRank := -1
	for _, sc := range s.scopes(top) {
		m, ok := sc.table.Get(name)
		if !ok {
			continue
		}
		rank := sc.rank
		if d := s.Depth(m); d > rank {
			rank = d
		}
		if rank > bestRank {
			best, bestRank = m, rank
		}
	}
	return best, best != nil
}

// Visible returns every name Resolve could currently answer, without
// duplicates, deepest scope first.
func (s *CallStack) Visible(top *Table) []string {
	seen := make(map[string]bool)
	var names []string
	for _, sc := range s.scopes(top) {
		for _, n := range sc.table.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
