package macro

import (
	"strings"
)

// Summary is a static description of a compiled macro, used for listings.
// Describing a macro never expands it.
type Summary struct {
	Name     string     `json:"name" yaml:"name"`           // Macro name
	Path     string     `json:"path" yaml:"path"`           // Dotted path from the top-level table, e.g. "outer.inner"
	Params   []string   `json:"params" yaml:"params"`       // Sorted parameter names
	Lines    int        `json:"lines" yaml:"lines"`         // Number of body lines
	Calls    []string   `json:"calls" yaml:"calls"`         // Names invoked from the body, in order
	File     string     `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int        `json:"line,omitempty" yaml:"line,omitempty"` // Header line for go-to-definition
	Children []*Summary `json:"children,omitempty" yaml:"children,omitempty"`
}

// Describe summarises every macro in table, recursively, in definition order.
func Describe(table *Table) []*Summary {
	return describe(table, "")
}

func describe(table *Table, prefix string) []*Summary {
	var out []*Summary
	for _, m := range table.All() {
		path := m.Name
		if prefix != "" {
			path = prefix + "." + m.Name
		}
		s := &Summary{
			Name:   m.Name,
			Path:   path,
			Params: m.Params.Sorted(),
			Lines:  len(m.Body),
			Calls:  calledNames(m.Body),
			File:   m.Pos.File,
			Line:   m.Pos.Line,
		}
		s.Children = describe(m.Children, path)
		out = append(out, s)
	}
	return out
}

// calledNames returns the macro names invoked by deferred #MCALL lines.
func calledNames(body []string) []string {
	calls := []string{}
	for _, line := range body {
		if kind, fields := Classify(line); kind == LineCall && len(fields) > 1 {
			calls = append(calls, fields[1])
		}
	}
	return calls
}

// Flatten returns the summaries depth first, parents before children.
func Flatten(summaries []*Summary) []*Summary {
	var out []*Summary
	for _, s := range summaries {
		out = append(out, s)
		out = append(out, Flatten(s.Children)...)
	}
	return out
}

// Signature returns a human-readable call template, e.g.
// "#MCALL greet name=$name".
func (s *Summary) Signature() string {
	var b strings.Builder
	b.WriteString(DirectiveCall)
	b.WriteByte(' ')
	b.WriteString(s.Name)
	for _, p := range s.Params {
		b.WriteString(" " + p + "=$" + p)
	}
	return b.String()
}

// HasChildren returns true if the macro defines nested macros.
func (s *Summary) HasChildren() bool {
	return len(s.Children) > 0
}
