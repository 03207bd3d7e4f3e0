// Package watch re-runs an action when watched files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Files are watched individually. Their parent directories are
	// registered so editors that replace files on save are still seen.
	Files []string
	// Dirs are watched for files with one of Exts.
	Dirs []string
	Exts []string
	// Debounce collapses bursts of events into one change.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher reports changes to a set of files and directories.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	exts     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher. Paths are made absolute.
func New(opts Options) (*Watcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		exts:     make(map[string]bool),
		debounce: debounce,
		logger:   logger,
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
	}
	for _, d := range opts.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", d, err)
		}
		w.dirs[abs] = true
	}
	for _, e := range opts.Exts {
		w.exts[e] = true
	}
	return w, nil
}

// Relevant reports whether an event on name should trigger a change.
func (w *Watcher) Relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	return w.dirs[filepath.Dir(abs)] && w.exts[filepath.Ext(abs)]
}

// Run calls onChange after every debounced burst of relevant events until
// ctx is done. onChange runs on the calling goroutine, never concurrently
// with itself. An error from onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(name string) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", "dir", dir)
	}

	// Debounce timer
	var debounceTimer *time.Timer
	fired := make(chan string, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- name:
				default:
				}
			})

		case name := <-fired:
			w.logger.Info("change detected", "file", filepath.Base(name))
			if err := onChange(name); err != nil {
				w.logger.Error("rebuild failed", "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs returns the existing directories to register.
func (w *Watcher) watchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if seen[dir] {
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	for f := range w.files {
		add(filepath.Dir(f))
	}
	for d := range w.dirs {
		add(d)
	}
	return dirs
}
