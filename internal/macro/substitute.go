package macro

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Escape is the character that suppresses placeholder detection for the
// $ that follows it and is removed from final output.
const Escape = '\\'

// Placeholder is the character that starts a parameter reference.
const Placeholder = '$'

// Placeholders returns the parameter names referenced in line, in order of
// appearance. A reference is a $ not immediately preceded by a backslash,
// followed by the longest run of characters that are neither whitespace nor
// another $. A bare $ names nothing and is skipped. Escapes are line-local.
func Placeholders(line string) []string {
	var names []string
	for i := 0; i < len(line); i++ {
		if line[i] != Placeholder || (i > 0 && line[i-1] == Escape) {
			continue
		}
		j := i + 1
		for j < len(line) {
			r, size := utf8.DecodeRuneInString(line[j:])
			if r == Placeholder || unicode.IsSpace(r) {
				break
			}
			j += size
		}
		if j > i+1 {
			names = append(names, line[i+1:j])
		}
		i = j - 1
	}
	return names
}

// Substitute replaces every literal occurrence of $key in line with value.
//
// The replacement is plain substring replacement and is not placeholder
// aware: $key also matches the prefix of a longer $keyword, and a value that
// itself contains $other is rewritten again when a later key named other is
// substituted on the same line. Callers apply keys in call-line order, which
// makes the cascade deterministic.
func Substitute(line, key, value string) string {
	return strings.ReplaceAll(line, string(Placeholder)+key, value)
}

// StripEscapes removes every backslash and keeps the character following it
// literally, so \\ yields a single backslash. A trailing backslash is
// dropped.
func StripEscapes(line string) string {
	if strings.IndexByte(line, Escape) < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		if line[i] == Escape {
			i++
			if i >= len(line) {
				break
			}
		}
		b.WriteByte(line[i])
	}
	return b.String()
}
