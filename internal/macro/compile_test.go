package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileLines(t *testing.T, ls []string) (*Macro, []*Diagnostic) {
	t.Helper()
	block, _, err := Extract(ls, Position{Line: 1})
	require.NoError(t, err)
	return Compile(block)
}

func TestCompile_Basic(t *testing.T) {
	m, diags := compileLines(t, []string{
		"#MDEF new_macro",
		"1st line",
		"$param1 and $param2",
		"#MEND",
	})
	require.NotNil(t, m)
	assert.Empty(t, diags)

	want := &Macro{
		Name:     "new_macro",
		Params:   NewParamSet("param1", "param2"),
		Body:     []string{"1st line", "$param1 and $param2"},
		Children: NewTable(),
	}
	assert.True(t, want.Equal(m), "got %+v", m)
	assert.Equal(t, 1, m.Pos.Line)
}

func TestCompile_Nested(t *testing.T) {
	m, diags := compileLines(t, []string{
		"#MDEF new_macro",
		"1st line",
		"#MDEF inner",
		"Lorem Ipsum $paramInner",
		"#MEND",
		"$param1 and $param2",
		"#MEND",
	})
	require.NotNil(t, m)
	assert.Empty(t, diags)

	inner := &Macro{
		Name:     "inner",
		Params:   NewParamSet("paramInner"),
		Body:     []string{"Lorem Ipsum $paramInner"},
		Children: NewTable(),
	}
	children := NewTable()
	children.Set(inner)
	want := &Macro{
		Name:     "new_macro",
		Params:   NewParamSet("param1", "param2"),
		Body:     []string{"1st line", "$param1 and $param2"},
		Children: children,
	}
	assert.True(t, want.Equal(m), "got %+v", m)

	got, ok := m.Children.Get("inner")
	require.True(t, ok)
	assert.Equal(t, 3, got.Pos.Line)
	assert.False(t, m.Params.Has("paramInner"), "nested parameters must not leak into the parent")
}

func TestCompile_HeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing name", "#MDEF", "no name found"},
		{"invalid characters", "#MDEF %^$", "invalid name"},
		{"extra token", "#MDEF name name2", "incorrect macro declaration"},
		{"hyphenated name", "#MDEF my-macro", "invalid name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, diags := compileLines(t, []string{tt.header, "#MEND"})
			assert.Nil(t, m)
			require.Len(t, diags, 1)
			assert.Equal(t, KindSyntax, diags[0].Kind)
			assert.Contains(t, diags[0].Msg, tt.wantMsg)
		})
	}
}

func TestCompile_NotADefinition(t *testing.T) {
	m, diags := Compile(&Block{Lines: []string{"hello", "#MEND"}})
	assert.Nil(t, m)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "expected #MDEF")

	m, diags = Compile(&Block{})
	assert.Nil(t, m)
	require.Len(t, diags, 1)
	assert.Equal(t, KindStructural, diags[0].Kind)
}

func TestCompile_MalformedChildIsSkipped(t *testing.T) {
	m, diags := compileLines(t, []string{
		"#MDEF outer",
		"#MDEF bad name",
		"never seen",
		"#MEND",
		"after",
		"#MEND",
	})
	require.NotNil(t, m)
	assert.Equal(t, []string{"after"}, m.Body)
	assert.Equal(t, 0, m.Children.Len())

	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Msg, "incorrect macro declaration")
	assert.Contains(t, diags[1].Msg, "could not compile macro on lines [2:4]")
	assert.Equal(t, KindStructural, diags[1].Kind)
}

func TestCompile_DirectivesInBody(t *testing.T) {
	m, diags := compileLines(t, []string{
		"#MDEF m",
		"#MCALL other x=$value",
		"#MWHAT $ignored",
		"text",
		"",
		"#MEND",
	})
	require.NotNil(t, m)
	assert.Equal(t, []string{"#MCALL other x=$value", "text", ""}, m.Body)
	assert.Equal(t, []string{"ignored", "value"}, m.Params.Sorted())

	require.Len(t, diags, 1)
	assert.Equal(t, "line 3: unexpected # in #MWHAT", diags[0].Error())
}

func TestCompile_EscapedPlaceholder(t *testing.T) {
	m, diags := compileLines(t, []string{
		"#MDEF price",
		`costs \$5 for $item`,
		"#MEND",
	})
	require.NotNil(t, m)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"item"}, m.Params.Sorted())
}

func TestCompile_Idempotent(t *testing.T) {
	src := []string{
		"#MDEF outer",
		"head $a",
		"#MDEF mid",
		"#MDEF leaf",
		"$x $y",
		"#MEND",
		"#MCALL leaf x=1 y=2",
		"#MEND",
		"#MCALL mid",
		"tail $b",
		"#MEND",
	}
	first, diags := compileLines(t, src)
	require.Empty(t, diags)
	second, diags := compileLines(t, src)
	require.Empty(t, diags)

	assert.NotSame(t, first, second)
	assert.True(t, first.Equal(second))

	mid, ok := first.Children.Get("mid")
	require.True(t, ok)
	_, ok = mid.Children.Get("leaf")
	assert.True(t, ok)
}
