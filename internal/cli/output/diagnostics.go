package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/macropp/internal/macro"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

// DiagnosticInfo is the machine-readable form of a diagnostic.
type DiagnosticInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// NewDiagnosticInfo converts a diagnostic.
func NewDiagnosticInfo(d *macro.Diagnostic) DiagnosticInfo {
	return DiagnosticInfo{Kind: d.Kind.String(), File: d.Pos.File, Line: d.Pos.Line, Message: d.Msg}
}

// Report implements macro.Sink. Text modes print one styled line per
// diagnostic; JSON and YAML modes print one JSON object per line so the
// stream stays parseable while a run is in progress.
func (r *Renderer) Report(d *macro.Diagnostic) {
	if m := r.EffectiveMode(); m == ModeJSON || m == ModeYAML {
		data, err := json.Marshal(NewDiagnosticInfo(d))
		if err != nil {
			return
		}
		_, _ = fmt.Fprintln(r.errOut, string(data))
		return
	}

	var b strings.Builder
	b.WriteString(r.Styles.Error.Render("error"))
	if loc := d.Pos.String(); loc != "" {
		b.WriteString(" ")
		b.WriteString(r.Styles.Location.Render(loc))
	}
	b.WriteString(": ")
	b.WriteString(d.Msg)
	_, _ = fmt.Fprintln(r.errOut, b.String())
}

// DiagnosticSummary prints per-kind counts, e.g. "Syntax Error: 2", in
// text mode. Nothing is printed for an empty list.
func (r *Renderer) DiagnosticSummary(diags []*macro.Diagnostic) {
	if len(diags) == 0 || r.EffectiveMode() != ModeText {
		return
	}
	counts := map[macro.Kind]int{}
	for _, d := range diags {
		counts[d.Kind]++
	}
	kinds := []macro.Kind{
		macro.KindSyntax, macro.KindStructural, macro.KindResolution,
		macro.KindParameter, macro.KindRecursion,
	}
	parts := make([]string, 0, len(counts))
	for _, k := range kinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", titleCase.String(k.String()), n))
		}
	}
	r.Warning(fmt.Sprintf("%d %s (%s)", len(diags), plural(len(diags), "diagnostic"), strings.Join(parts, ", ")))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
