package macro

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LibraryExt is the extension of macro library files.
const LibraryExt = ".mdef"

// Loader scans a directory for macro library files. A library may only
// contain definitions and blank lines.
type Loader struct {
	dir string
}

// NewLoader creates a new library loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Library is one loaded .mdef file.
type Library struct {
	// Path is the path of the library file
	Path string

	// Macros are the definitions found in the file, in order
	Macros []*Macro
}

// Load reads every library in the directory, in lexical file order, and
// registers its definitions in table. A missing directory is not an error.
// Problems inside a library are reported to sink; only I/O failures are
// returned.
func (l *Loader) Load(table *Table, sink Sink) ([]*Library, error) {
	if l.dir == "" {
		return nil, nil
	}

	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*"+LibraryExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}
	sort.Strings(files)

	var libs []*Library
	for _, file := range files {
		lib, err := l.loadFile(file, table, sink)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func (l *Loader) loadFile(path string, table *Table, sink Sink) (*Library, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob inside the macros directory
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	lines, err := SplitLines(content)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	if sink == nil {
		sink = discard{}
	}
	lib := &Library{Path: path}
	for i := 0; i < len(lines); {
		pos := Position{File: path, Line: i + 1}
		kind, fields := Classify(lines[i])
		switch kind {
		case LineBlank:
			i++
		case LineDefine:
			m, n := Define(lines[i:], pos, table, sink)
			if m != nil {
				lib.Macros = append(lib.Macros, m)
			}
			i += n
		case LineDirective:
			sink.Report(unexpectedDirective(pos, fields[0]))
			i++
		default:
			sink.Report(newDiagnostic(KindSyntax, pos, "only definitions are allowed in a macro library, ignoring %q", lines[i]))
			i++
		}
	}
	return lib, nil
}

// SplitLines splits content into lines without their terminators. A final
// line without a newline is kept; \r\n endings are normalised.
func SplitLines(content []byte) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, string(bytes.TrimSuffix(sc.Bytes(), []byte("\r"))))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to split lines: %w", err)
	}
	return lines, nil
}

// LoadError represents an error loading a macro library.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}
