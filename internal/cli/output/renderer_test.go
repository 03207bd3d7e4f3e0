package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/macropp/internal/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffers(mode Mode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeText},
		{"", ModeText},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
		{"YAML", ModeYAML},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newBuffers(tt.mode, false)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestReport_Text(t *testing.T) {
	r, out, errOut := newBuffers(ModeText, false)
	r.Report(&macro.Diagnostic{Kind: macro.KindResolution, Pos: macro.Position{File: "a.txt", Line: 3}, Msg: "macro called x not found"})
	r.Report(&macro.Diagnostic{Msg: "no position"})

	assert.Empty(t, out.String())
	assert.Equal(t, "error a.txt:3: macro called x not found\nerror: no position\n", errOut.String())
}

func TestReport_JSON(t *testing.T) {
	r, _, errOut := newBuffers(ModeJSON, false)
	r.Report(&macro.Diagnostic{Kind: macro.KindParameter, Pos: macro.Position{Line: 7}, Msg: "unknown parameter x for m"})

	var got DiagnosticInfo
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &got))
	assert.Equal(t, DiagnosticInfo{Kind: "parameter error", Line: 7, Message: "unknown parameter x for m"}, got)
}

func TestDiagnosticSummary(t *testing.T) {
	r, _, errOut := newBuffers(ModeText, false)
	r.DiagnosticSummary(nil)
	assert.Empty(t, errOut.String())

	r.DiagnosticSummary([]*macro.Diagnostic{
		{Kind: macro.KindSyntax},
		{Kind: macro.KindResolution},
		{Kind: macro.KindSyntax},
	})
	assert.Equal(t, "! 3 diagnostics (Syntax Error: 2, Resolution Error: 1)\n", errOut.String())

	// Machine modes stay parseable
	r, _, errOut = newBuffers(ModeJSON, false)
	r.DiagnosticSummary([]*macro.Diagnostic{{Kind: macro.KindSyntax}})
	assert.Empty(t, errOut.String())
}

func TestPlainStylesHaveNoANSI(t *testing.T) {
	r, out, errOut := newBuffers(ModeText, false)
	r.Header(1, "Macros")
	r.Header(2, "Children")
	r.StatusLine("input.txt -> out.txt", "success", "(1 definitions, 2 calls)")
	r.StatusLine("greet", "error", "line 3")
	r.Error("rebuild failed")

	assert.Equal(t, "Macros\n──────\n\nChildren\n", out.String())
	assert.Equal(t, "✓ input.txt -> out.txt (1 definitions, 2 calls)\n✗ greet line 3\n✗ rebuild failed\n", errOut.String())
	assert.NotContains(t, out.String()+errOut.String(), "\x1b[")
}

func TestStructured(t *testing.T) {
	v := map[string]int{"a": 1}

	r, out, _ := newBuffers(ModeText, false)
	ok, err := r.Structured(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out.String())

	r, out, _ = newBuffers(ModeJSON, false)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, out.String())

	r, out, _ = newBuffers(ModeYAML, false)
	ok, err = r.Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a: 1\n", out.String())
}
