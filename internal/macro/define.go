package macro

import "errors"

// Define extracts and compiles the definition starting at lines[0] and
// stores it in table. It returns how many lines the caller should skip:
// the whole block when it was balanced, or just the header line when no
// closure was found so the following lines are scanned again.
func Define(lines []string, pos Position, table *Table, sink Sink) (*Macro, int) {
	if sink == nil {
		sink = discard{}
	}
	block, _, err := Extract(lines, pos)
	if err != nil {
		if errors.Is(err, ErrNoClosure) {
			sink.Report(newDiagnostic(KindStructural, pos, "could not find closure for %q, omitting", lines[0]))
		}
		return nil, 1
	}

	m, diags := Compile(block)
	reportAll(sink, diags)
	if m == nil {
		sink.Report(newDiagnostic(KindStructural, pos,
			"could not compile macro on lines [%d:%d]", pos.Line, pos.Offset(block.Len()-1).Line))
		return nil, block.Len()
	}
	table.Set(m)
	return m, block.Len()
}
