// Package macro implements the #MDEF/#MCALL macro expansion engine.
//
// Definitions are extracted from a line stream as balanced #MDEF...#MEND
// blocks and compiled into a tree of Macro values. Invocations are resolved
// against a call-stack scoped namespace: the children of a macro only become
// visible while that macro is being expanded.
package macro

import (
	"regexp"
	"sort"
	"strings"
)

// Directive markers.
const (
	DirectiveDefine = "#MDEF"
	DirectiveEnd    = "#MEND"
	DirectiveCall   = "#MCALL"
)

// Sentinel is the character that starts a directive.
const Sentinel = '#'

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidName reports whether s is made of letters, digits and underscores
// and is at least one character long.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// LineKind classifies a raw line by its first whitespace-delimited field.
type LineKind int

// LineKind constants.
const (
	LineText      LineKind = iota // Literal text
	LineBlank                     // No fields at all
	LineDefine                    // #MDEF
	LineEnd                       // #MEND
	LineCall                      // #MCALL
	LineDirective                 // Any other field starting with #
)

// Classify returns the kind of line and its fields.
func Classify(line string) (LineKind, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return LineBlank, fields
	}
	switch fields[0] {
	case DirectiveDefine:
		return LineDefine, fields
	case DirectiveEnd:
		return LineEnd, fields
	case DirectiveCall:
		return LineCall, fields
	}
	if fields[0][0] == Sentinel {
		return LineDirective, fields
	}
	return LineText, fields
}

// ParamSet is the set of parameter names a macro body references.
// Names are stored without the leading $.
type ParamSet map[string]struct{}

// NewParamSet builds a set from names.
func NewParamSet(names ...string) ParamSet {
	s := make(ParamSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is declared.
func (s ParamSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of declared parameters.
func (s ParamSet) Len() int { return len(s) }

// Sorted returns the names in lexical order.
func (s ParamSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Macro is a compiled definition. It is immutable once Compile returns;
// activation state lives in a CallStack.
type Macro struct {
	Name     string
	Params   ParamSet
	Body     []string
	Children *Table
	Pos      Position
}

// Equal reports structural equality: same name, parameters, body and
// children. Positions are ignored.
func (m *Macro) Equal(other *Macro) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Name != other.Name || len(m.Params) != len(other.Params) || len(m.Body) != len(other.Body) {
		return false
	}
	for p := range m.Params {
		if !other.Params.Has(p) {
			return false
		}
	}
	for i := range m.Body {
		if m.Body[i] != other.Body[i] {
			return false
		}
	}
	return m.Children.Equal(other.Children)
}

// Table maps macro names to definitions and remembers insertion order.
type Table struct {
	byName map[string]*Macro
	order  []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Macro)}
}

// Set stores m under its name. Redefining a name replaces the macro and
// keeps the original position in the listing order.
func (t *Table) Set(m *Macro) {
	if _, ok := t.byName[m.Name]; !ok {
		t.order = append(t.order, m.Name)
	}
	t.byName[m.Name] = m
}

// Get returns the macro stored under name.
func (t *Table) Get(name string) (*Macro, bool) {
	if t == nil {
		return nil, false
	}
	m, ok := t.byName[name]
	return m, ok
}

// Len returns the number of macros.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Names returns the names in definition order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// All returns the macros in definition order.
func (t *Table) All() []*Macro {
	if t == nil {
		return nil
	}
	out := make([]*Macro, 0, len(t.order))
	for _, n := range t.order {
		out = append(out, t.byName[n])
	}
	return out
}

// Clear removes every macro.
func (t *Table) Clear() {
	t.byName = make(map[string]*Macro)
	t.order = nil
}

// Equal compares two tables by content, ignoring order.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() {
		return false
	}
	if t.Len() == 0 {
		return true
	}
	for name, m := range t.byName {
		o, ok := other.byName[name]
		if !ok || !m.Equal(o) {
			return false
		}
	}
	return true
}
