package macro

import "fmt"

// Block is a balanced #MDEF...#MEND span, both markers included.
type Block struct {
	Lines []string
	Pos   Position // position of the #MDEF line
}

// Len returns the number of lines in the block.
func (b *Block) Len() int { return len(b.Lines) }

// Extract returns the balanced definition that starts at lines[0].
//
// Every #MDEF raises the balance and every #MEND lowers it; the block ends
// on the line that brings the balance back to zero. Unrecognised directive
// lines are returned as diagnostics and do not change the balance. If the
// input ends first, Extract returns ErrNoClosure.
func Extract(lines []string, pos Position) (*Block, []*Diagnostic, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("extract at %s: %w", pos, ErrNoClosure)
	}
	if kind, _ := Classify(lines[0]); kind != LineDefine {
		return nil, nil, fmt.Errorf("extract at %s: block must start with %s", pos, DirectiveDefine)
	}

	var diags []*Diagnostic
	balance := 0
	for i, line := range lines {
		kind, fields := Classify(line)
		switch kind {
		case LineDefine:
			balance++
		case LineEnd:
			balance--
		case LineDirective:
			diags = append(diags, unexpectedDirective(pos.Offset(i), fields[0]))
		}
		if balance == 0 {
			return &Block{Lines: lines[:i+1], Pos: pos}, diags, nil
		}
	}
	return nil, diags, fmt.Errorf("extract at %s: %w", pos, ErrNoClosure)
}

func unexpectedDirective(pos Position, word string) *Diagnostic {
	return newDiagnostic(KindSyntax, pos, "unexpected # in %s", word)
}
