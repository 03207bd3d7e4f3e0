package macro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name       string
		setupDir   func(t *testing.T) string
		wantLibs   int
		wantNil    bool // expect nil libraries (not empty slice)
		wantErr    bool
		wantMacros []string
		wantDiags  int
	}{
		{
			name: "empty directory",
			setupDir: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantLibs: 0,
			wantNil:  true,
		},
		{
			name: "non-existent directory",
			setupDir: func(_ *testing.T) string {
				return "/nonexistent/path/to/macros"
			},
			wantNil: true,
		},
		{
			name: "not a directory",
			setupDir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0644))
				return path
			},
			wantErr: true,
		},
		{
			name: "single library with several definitions",
			setupDir: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.Mkdir(dir, 0755))
				content := "#MDEF greet\nHello $name\n#MEND\n\n#MDEF bye\nBye\n#MEND\n"
				require.NoError(t, os.WriteFile(filepath.Join(dir, "common.mdef"), []byte(content), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
				return dir
			},
			wantLibs:   1,
			wantMacros: []string{"greet", "bye"},
		},
		{
			name: "files load in lexical order",
			setupDir: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.Mkdir(dir, 0755))
				files := map[string]string{
					"b.mdef": "#MDEF second\n2\n#MEND\n",
					"a.mdef": "#MDEF first\n1\n#MEND\n",
				}
				for name, content := range files {
					require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
				}
				return dir
			},
			wantLibs:   2,
			wantMacros: []string{"first", "second"},
		},
		{
			name: "stray content is reported and skipped",
			setupDir: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.Mkdir(dir, 0755))
				content := "loose text\n#MCALL greet\n#MDEF ok\nfine\n#MEND\n#MDEF broken\n"
				require.NoError(t, os.WriteFile(filepath.Join(dir, "mixed.mdef"), []byte(content), 0644))
				return dir
			},
			wantLibs:   1,
			wantMacros: []string{"ok"},
			wantDiags:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setupDir(t)
			table := NewTable()
			sink := &Collector{}
			libs, err := NewLoader(dir).Load(table, sink)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, libs)
			} else {
				assert.Len(t, libs, tt.wantLibs)
			}
			if tt.wantMacros != nil {
				assert.Equal(t, tt.wantMacros, table.Names())
			}
			assert.Equal(t, tt.wantDiags, sink.Len(), "diagnostics: %v", sink.Messages())
		})
	}
}

func TestLoader_DiagnosticsCarryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.mdef")
	require.NoError(t, os.WriteFile(path, []byte("#MDEF a b\n#MEND\n"), 0644))

	sink := &Collector{}
	libs, err := NewLoader(dir).Load(NewTable(), sink)
	require.NoError(t, err)
	require.Len(t, libs, 1)
	assert.Empty(t, libs[0].Macros)

	require.NotEmpty(t, sink.Diagnostics)
	assert.Equal(t, Position{File: path, Line: 1}, sink.Diagnostics[0].Pos)
}

func TestLoader_EmptyDir(t *testing.T) {
	libs, err := NewLoader("").Load(NewTable(), nil)
	assert.NoError(t, err)
	assert.Nil(t, libs)
}

func TestLoadError(t *testing.T) {
	err := &LoadError{File: "/tmp/macros/common.mdef", Message: "boom"}
	assert.Equal(t, "macros/common.mdef: boom", err.Error())
}

func TestSplitLines(t *testing.T) {
	got, err := SplitLines([]byte("a\r\nb\n\nc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "", "c"}, got)

	got, err = SplitLines(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
