package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/leapstack-labs/macropp/internal/engine"
	"github.com/leapstack-labs/macropp/internal/macro"
	"github.com/leapstack-labs/macropp/internal/watch"
	"github.com/spf13/cobra"
)

// ErrDiagnostics is returned in strict mode when a run reported problems.
var ErrDiagnostics = errors.New("diagnostics reported")

// ExpandOptions holds options for the expand command.
type ExpandOptions struct {
	Output   string
	ErrorLog string
	Watch    bool
}

// NewExpandCommand creates the expand command.
func NewExpandCommand() *cobra.Command {
	opts := &ExpandOptions{}

	cmd := &cobra.Command{
		Use:   "expand <input>",
		Short: "Expand macros in a document",
		Long: `Expand #MDEF definitions and #MCALL invocations in a text document.

Definitions are removed from the output, invocations are replaced by the
macro body with $parameters substituted, and all other lines are copied
with backslash escapes removed. Libraries (*.mdef) in the macros directory
are loaded first.

Problems never stop a run: they are reported on stderr and written to the
error log, and the offending construct is skipped.`,
		Example: `  # Write input_processed.txt next to input.txt
  macropp expand input.txt

  # Write to stdout
  macropp expand input.txt -o -

  # Re-expand whenever the input or a library changes
  macropp expand input.txt --watch

  # Fail the build on any diagnostic
  macropp expand input.txt --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file, - for stdout (default: <input>_processed<ext>)")
	cmd.Flags().StringVar(&opts.ErrorLog, "error-log", "", "Error log file, empty to disable (default from config: error_log.txt)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-expand when the input or a macro library changes")

	return cmd
}

func runExpand(cmd *cobra.Command, input string, opts *ExpandOptions) error {
	cctx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	errorLog := cctx.Cfg.ErrorLog
	if cmd.Flags().Changed("error-log") {
		errorLog = opts.ErrorLog
	}
	outPath := opts.Output
	if outPath == "" {
		outPath = engine.OutputPath(input, cctx.Cfg.OutputSuffix)
	}

	job := &expandJob{
		cctx:     cctx,
		input:    input,
		output:   outPath,
		errorLog: errorLog,
		stdout:   cmd.OutOrStdout(),
	}

	run, err := job.run()
	if err != nil {
		return err
	}

	if !opts.Watch {
		if cctx.Cfg.Strict && !run.OK() {
			return fmt.Errorf("%w: %d in %s", ErrDiagnostics, len(run.Diagnostics), input)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return job.watch(ctx)
}

// expandJob expands one input into one output, repeatedly in watch mode.
type expandJob struct {
	cctx     *CommandContext
	input    string
	output   string
	errorLog string
	stdout   io.Writer
}

func (j *expandJob) run() (*engine.Run, error) {
	r := j.cctx.Renderer

	if _, err := os.Stat(j.input); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("can't find input file %s", j.input)
		}
		return nil, fmt.Errorf("can't open input file %s: %w", j.input, err)
	}

	var sink macro.Sink
	var errLog *engine.ErrorLog
	if j.errorLog != "" {
		f, err := os.Create(j.errorLog) //nolint:gosec // G304: path comes from config or flags
		if err != nil {
			return nil, fmt.Errorf("can't create error log: %w", err)
		}
		defer func() { _ = f.Close() }()
		errLog = engine.NewErrorLog(f)
		sink = errLog
	}

	w, closeOut, err := j.openOutput()
	if err != nil {
		return nil, err
	}

	run, err := j.cctx.Engine.ExpandFile(j.input, w, sink)
	if cerr := closeOut(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to write %s: %w", j.output, cerr)
	}
	if err != nil {
		return nil, err
	}
	if errLog != nil {
		if err := errLog.Flush(); err != nil {
			return nil, err
		}
	}

	if j.output != "-" {
		status := "success"
		if !run.OK() {
			status = "warning"
		}
		r.StatusLine(fmt.Sprintf("Expanded %s -> %s", j.input, j.output), status,
			fmt.Sprintf("(%d definitions, %d calls)", run.Definitions, run.Calls))
	}
	r.DiagnosticSummary(run.Diagnostics)
	return run, nil
}

func (j *expandJob) openOutput() (io.Writer, func() error, error) {
	if j.output == "-" {
		return j.stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(j.output); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("couldn't create output directory: %w", err)
		}
	}
	f, err := os.Create(j.output) //nolint:gosec // G304: path comes from flags or the input name
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open output file: %w", err)
	}
	return f, f.Close, nil
}

// watch re-expands from a clean table on every change until ctx is done.
func (j *expandJob) watch(ctx context.Context) error {
	w, err := watch.New(watch.Options{
		Files:    []string{j.input},
		Dirs:     []string{j.cctx.Cfg.MacrosDir},
		Exts:     []string{macro.LibraryExt},
		Debounce: j.cctx.Cfg.WatchDebounce,
		Logger:   j.cctx.Logger,
	})
	if err != nil {
		return err
	}

	j.cctx.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", j.input))
	return w.Run(ctx, func(string) error {
		err := j.cctx.Engine.Reset()
		if err == nil {
			_, err = j.run()
		}
		if err != nil {
			j.cctx.Renderer.Error(err.Error())
		}
		return err
	})
}
