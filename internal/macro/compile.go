package macro

import "errors"

// Compile builds a Macro from a block returned by Extract.
//
// A nil macro means the header was rejected; the diagnostics say why.
// Problems inside the body are reported but never abort the compilation:
// a malformed nested definition is skipped and the parent is still built.
// Compile has no side effects besides its return values.
func Compile(block *Block) (*Macro, []*Diagnostic) {
	c := &compiler{}
	if block == nil || block.Len() == 0 {
		c.report(newDiagnostic(KindStructural, Position{}, "empty definition block"))
		return nil, c.diags
	}
	m := c.compile(block.Lines, block.Pos)
	return m, c.diags
}

type compiler struct {
	diags []*Diagnostic
}

func (c *compiler) report(d *Diagnostic) {
	c.diags = append(c.diags, d)
}

func (c *compiler) compile(lines []string, pos Position) *Macro {
	name, ok := c.header(lines[0], pos)
	if !ok {
		return nil
	}

	m := &Macro{
		Name:     name,
		Params:   make(ParamSet),
		Children: NewTable(),
		Pos:      pos,
	}

	for i := 1; i < len(lines); i++ {
		line := lines[i]
		linePos := pos.Offset(i)
		kind, fields := Classify(line)

		switch kind {
		case LineEnd:
			return m
		case LineDefine:
			// Nested diagnostics are discarded: each line is reported by
			// the compiler level that owns it.
			nested, _, err := Extract(lines[i:], linePos)
			if err != nil {
				if errors.Is(err, ErrNoClosure) {
					c.report(newDiagnostic(KindStructural, linePos,
						"could not find closure for %q, omitting", line))
				}
				continue
			}
			last := i + nested.Len() - 1
			child := c.compile(nested.Lines, linePos)
			if child == nil {
				c.report(newDiagnostic(KindStructural, linePos,
					"could not compile macro on lines [%d:%d]", linePos.Line, pos.Offset(last).Line))
				i = last
				continue
			}
			m.Children.Set(child)
			c.collectParams(m, line)
			i = last
		case LineCall:
			m.Body = append(m.Body, line)
			c.collectParams(m, line)
		case LineDirective:
			c.report(unexpectedDirective(linePos, fields[0]))
			c.collectParams(m, line)
		default:
			m.Body = append(m.Body, line)
			c.collectParams(m, line)
		}
	}
	return m
}

// header validates the #MDEF line and returns the macro name.
func (c *compiler) header(line string, pos Position) (string, bool) {
	kind, fields := Classify(line)
	switch {
	case kind != LineDefine:
		word := ""
		if len(fields) > 0 {
			word = fields[0]
		}
		c.report(newDiagnostic(KindSyntax, pos, "expected %s, found %q", DirectiveDefine, word))
		return "", false
	case len(fields) < 2:
		c.report(newDiagnostic(KindSyntax, pos, "no name found for a macro"))
		return "", false
	case !ValidName(fields[1]):
		c.report(newDiagnostic(KindSyntax, pos,
			"invalid name %q: it must be made up of only numbers, letters and/or underscores", fields[1]))
		return "", false
	case len(fields) != 2:
		c.report(newDiagnostic(KindSyntax, pos, "incorrect macro declaration: %s", line))
		return "", false
	}
	return fields[1], true
}

func (c *compiler) collectParams(m *Macro, line string) {
	for _, p := range Placeholders(line) {
		m.Params[p] = struct{}{}
	}
}
