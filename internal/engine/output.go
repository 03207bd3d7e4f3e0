package engine

import (
	"path/filepath"
	"strings"
)

// OutputPath derives the expanded document's path by inserting suffix
// before the extension: input.txt becomes input_processed.txt.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	if ext == filepath.Base(input) {
		// dotfiles such as ".notes" have no extension to preserve
		ext = ""
	}
	return strings.TrimSuffix(input, ext) + suffix + ext
}
