package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/macropp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "macros")
	w, err := New(Options{
		Files: []string{filepath.Join(dir, "input.txt")},
		Dirs:  []string{lib},
		Exts:  []string{".mdef"},
	})
	require.NoError(t, err)

	assert.True(t, w.Relevant(filepath.Join(dir, "input.txt")))
	assert.False(t, w.Relevant(filepath.Join(dir, "input_processed.txt")))
	assert.True(t, w.Relevant(filepath.Join(lib, "common.mdef")))
	assert.False(t, w.Relevant(filepath.Join(lib, "notes.txt")))
	assert.False(t, w.Relevant(filepath.Join(lib, "sub", "deep.mdef")))
}

func TestNew_Defaults(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)
	assert.NotNil(t, w.logger)
}

func TestRun_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteDocument(t, dir, "input.txt", "v1\n")

	w, err := New(Options{
		Files:    []string{input},
		Debounce: 50 * time.Millisecond,
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(name string) error {
			changes <- name
			return nil
		})
	}()

	// Give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(input, []byte("v2\n"), 0600))
	}
	// Unwatched files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))

	select {
	case name := <-changes:
		assert.Equal(t, "input.txt", filepath.Base(name))
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)
	assert.LessOrEqual(t, len(changes), 1, "burst should collapse into few callbacks")
}
