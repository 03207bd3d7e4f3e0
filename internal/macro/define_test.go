package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefine(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantName  string
		wantSkip  int
		wantDiags []string
	}{
		{
			name:     "well formed",
			input:    []string{"#MDEF a", "x", "#MEND", "rest"},
			wantName: "a",
			wantSkip: 3,
		},
		{
			name:      "no closure skips only the header",
			input:     []string{"#MDEF a", "x"},
			wantSkip:  1,
			wantDiags: []string{`could not find closure for "#MDEF a", omitting`},
		},
		{
			name:      "bad header skips the block",
			input:     []string{"#MDEF", "x", "#MEND", "rest"},
			wantSkip:  3,
			wantDiags: []string{"no name found for a macro", "could not compile macro on lines [1:3]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable()
			sink := &Collector{}
			m, n := Define(tt.input, Position{Line: 1}, table, sink)
			assert.Equal(t, tt.wantSkip, n)
			if tt.wantName == "" {
				assert.Nil(t, m)
				assert.Equal(t, 0, table.Len())
			} else {
				require.NotNil(t, m)
				assert.Equal(t, tt.wantName, m.Name)
				got, ok := table.Get(tt.wantName)
				assert.True(t, ok)
				assert.Same(t, m, got)
			}
			if tt.wantDiags == nil {
				assert.Empty(t, sink.Messages())
			} else {
				assert.Equal(t, tt.wantDiags, sink.Messages())
			}
		})
	}
}

func TestTable_RedefinitionKeepsOrder(t *testing.T) {
	table := NewTable()
	first := &Macro{Name: "a", Children: NewTable()}
	table.Set(first)
	table.Set(&Macro{Name: "b", Children: NewTable()})
	second := &Macro{Name: "a", Children: NewTable()}
	table.Set(second)

	assert.Equal(t, []string{"a", "b"}, table.Names())
	got, _ := table.Get("a")
	assert.Same(t, second, got)

	table.Clear()
	assert.Equal(t, 0, table.Len())
	_, ok := table.Get("a")
	assert.False(t, ok)
}
