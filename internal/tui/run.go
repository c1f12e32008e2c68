package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/notelist"
)

var (
	// ErrUnsynced is returned by Run when edits remain buffered after the final flush.
	ErrUnsynced = errors.New("edits not synced")
	// ErrAborted wraps a failure of the program itself, as opposed to the final flush.
	ErrAborted = errors.New("interactive list aborted")
)

// Run starts the interactive list and, however it exits, makes one last
// attempt to flush whatever is still buffered. Extra program options are
// applied after the defaults.
func Run(ctx context.Context, ctl *notelist.Controller, backend notelist.Backend, opts Options, progOpts ...tea.ProgramOption) error {
	opts = opts.withDefaults()
	m := newAppModel(ctl, backend, opts)

	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		// Cancelled from outside, e.g. SIGTERM. Still a normal exit.
		err = nil
	}
	return afterExit(err, ctl, backend, opts)
}

// afterExit is the unload hook: it runs the final flush even when the
// program failed and reports both outcomes.
func afterExit(runErr error, ctl *notelist.Controller, sink notelist.EditSink, opts Options) error {
	if runErr != nil {
		opts.Logger.Error("Interactive list failed", slog.String("error", runErr.Error()))
		runErr = fmt.Errorf("%w: %w", ErrAborted, runErr)
	}
	return errors.Join(runErr, finalFlush(ctl, sink, opts))
}

func finalFlush(ctl *notelist.Controller, sink notelist.EditSink, opts Options) error {
	// A flush still in flight when the program stopped never reports back.
	if ctl.Flushing() {
		opts.Logger.Debug("Resending flush interrupted by exit")
		ctl.CancelFlush()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.RequestTimeout)
	defer cancel()
	if err := ctl.Flush(ctx, sink); err != nil {
		return err
	}

	checks, positions := ctl.Pending()
	if checks+positions > 0 {
		// Only moves made inside search results can be left here.
		opts.Logger.Warn("Unsynced edits on exit", slog.Int("checks", checks), slog.Int("positions", positions))
		return fmt.Errorf("%w: %d checks, %d moves", ErrUnsynced, checks, positions)
	}
	return nil
}
