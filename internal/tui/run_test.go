package tui

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notelist"
)

// headless runs the program without a terminal.
func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	}
}

func runOptions() Options {
	return Options{FlushInterval: time.Hour, RequestTimeout: time.Second}
}

func loadedController(t *testing.T, be *fakeBackend) *notelist.Controller {
	t.Helper()
	ctl := notelist.New()
	require.NoError(t, ctl.LoadPage(context.Background(), be))
	return ctl
}

// stopped returns a context that is already cancelled, so the program exits
// as soon as it starts.
func stopped() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestRunFlushesOnExit(t *testing.T) {
	be := &fakeBackend{notes: makeNotes(3)}
	ctl := loadedController(t, be)
	require.NoError(t, ctl.Toggle(2, true))

	err := Run(stopped(), ctl, be, runOptions(), headless()...)
	require.NoError(t, err)

	require.Len(t, be.changes, 1)
	assert.Equal(t, []model.CheckEdit{{ID: 2, IsChecked: true}}, be.changes[0].NotesChecked)
	checks, positions := ctl.Pending()
	assert.Zero(t, checks+positions)
}

func TestRunCancelsKilledFlush(t *testing.T) {
	be := &fakeBackend{notes: makeNotes(3)}
	ctl := loadedController(t, be)
	require.NoError(t, ctl.Toggle(1, true))
	_, ok := ctl.BeginFlush()
	require.True(t, ok)

	err := Run(stopped(), ctl, be, runOptions(), headless()...)
	require.NoError(t, err)

	assert.False(t, ctl.Flushing())
	require.Len(t, be.changes, 1, "the interrupted batch is sent again")
	assert.Equal(t, []model.CheckEdit{{ID: 1, IsChecked: true}}, be.changes[0].NotesChecked)
	checks, _ := ctl.Pending()
	assert.Zero(t, checks)
}

func TestRunReportsUnsyncedSearchMoves(t *testing.T) {
	be := &fakeBackend{notes: makeNotes(3)}
	ctl := loadedController(t, be)

	req, ok := ctl.Search("note")
	require.True(t, ok)
	notes, err := req.Fetch(context.Background(), be)
	require.NoError(t, err)
	require.True(t, ctl.ApplyPage(req, notes, nil))
	require.NoError(t, ctl.Reorder(0, 1))
	require.NoError(t, ctl.Toggle(3, true))

	err = Run(stopped(), ctl, be, runOptions(), headless()...)
	require.ErrorIs(t, err, ErrUnsynced)
	assert.NotErrorIs(t, err, ErrAborted)

	require.Len(t, be.changes, 1)
	assert.Equal(t, []model.CheckEdit{{ID: 3, IsChecked: true}}, be.changes[0].NotesChecked)
	assert.Empty(t, be.changes[0].NotesPosition, "moves in search results are never sent")
	assert.Len(t, ctl.PendingPositions(), 1)
}

func TestExitAfterProgramFailureStillFlushes(t *testing.T) {
	be := &fakeBackend{notes: makeNotes(3)}
	ctl := loadedController(t, be)
	require.NoError(t, ctl.Toggle(2, true))
	_, ok := ctl.BeginFlush()
	require.True(t, ok)

	err := afterExit(errors.New("could not open a new TTY"), ctl, be, runOptions().withDefaults())
	require.ErrorIs(t, err, ErrAborted)
	assert.ErrorContains(t, err, "could not open a new TTY")
	assert.NotErrorIs(t, err, ErrUnsynced)

	require.Len(t, be.changes, 1)
	checks, positions := ctl.Pending()
	assert.Zero(t, checks+positions)
}

func TestExitFlushFailureKeepsEdits(t *testing.T) {
	be := &fakeBackend{notes: makeNotes(3), changeErr: errors.New("server down")}
	ctl := loadedController(t, be)
	require.NoError(t, ctl.Toggle(2, true))

	err := afterExit(nil, ctl, be, runOptions().withDefaults())
	require.Error(t, err)
	assert.ErrorContains(t, err, "server down")
	assert.NotErrorIs(t, err, ErrAborted)
	checks, _ := ctl.Pending()
	assert.Equal(t, 1, checks)
}
