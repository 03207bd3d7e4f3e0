package macro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// lines splits a literal document into lines without terminators.
func lines(src string) []string {
	return strings.Split(strings.TrimPrefix(src, "\n"), "\n")
}

// defineAll registers every top-level definition in src and fails the test
// on any diagnostic.
func defineAll(t *testing.T, src string) *Table {
	t.Helper()
	table := NewTable()
	sink := &Collector{}
	ls := lines(src)
	for i := 0; i < len(ls); {
		if kind, _ := Classify(ls[i]); kind != LineDefine {
			i++
			continue
		}
		_, n := Define(ls[i:], Position{Line: i + 1}, table, sink)
		i += n
	}
	require.Empty(t, sink.Messages(), "unexpected diagnostics while defining")
	return table
}
