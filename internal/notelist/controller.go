// Package notelist holds the state of the notes list and the operations that
// change it: paging, search, checkbox toggles, reordering and flushing the
// buffered edits back to the server.
//
// A Controller is not safe for concurrent use. It is owned by one event loop
// (the TUI's Update, or a CLI command); network calls run elsewhere and hand
// their results back through ApplyPage and FinishFlush.
package notelist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Makepad-fr/tada/internal/metrics"
	"github.com/Makepad-fr/tada/internal/model"
)

// DefaultLookahead is how close to the end of the loaded rows the visible
// window may get before the next page is prefetched.
const DefaultLookahead = 5

var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// PageSource fetches pages of notes.
type PageSource interface {
	ListNotes(ctx context.Context, offset int) ([]model.Note, error)
	SearchNotes(ctx context.Context, offset int, query string) ([]model.Note, error)
}

// EditSink receives flushed edits. A nil error confirms them.
type EditSink interface {
	ChangeNotes(ctx context.Context, req model.ChangeRequest) error
}

// Backend is what the interactive client talks to.
type Backend interface {
	PageSource
	EditSink
}

// SearchState describes the active query context.
type SearchState struct {
	Active  bool
	Query   string
	Version int
}

// PageRequest describes one page fetch started by BeginLoad.
type PageRequest struct {
	Offset  int
	Search  bool
	Query   string
	Version int
}

// Fetch runs the request against src.
func (r PageRequest) Fetch(ctx context.Context, src PageSource) ([]model.Note, error) {
	if r.Search {
		return src.SearchNotes(ctx, r.Offset, r.Query)
	}
	return src.ListNotes(ctx, r.Offset)
}

// Batch is a snapshot of the edits sent by one flush.
type Batch struct {
	Checks    []model.CheckEdit
	Positions []model.PositionEdit
}

// Request converts the batch into the wire payload.
func (b Batch) Request() model.ChangeRequest {
	return model.ChangeRequest{NotesChecked: b.Checks, NotesPosition: b.Positions}
}

type pendingPosition struct {
	edit model.PositionEdit
	// searchScoped edits were made against a filtered list; their indices
	// mean nothing to the global order.
	searchScoped bool
}

// Controller owns the loaded notes and the pending edit buffers.
type Controller struct {
	notes   []model.Note
	offset  int
	hasMore bool
	loading bool

	search SearchState

	checks    []model.CheckEdit
	positions []pendingPosition
	flushing  bool

	lastVisibleStart int
	lastVisibleEnd   int
	lookahead        int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics publishes buffer and list sizes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithLookahead overrides DefaultLookahead.
func WithLookahead(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.lookahead = n
		}
	}
}

// New returns a Controller in the Idle(offset=0) state of the full listing.
func New(opts ...Option) *Controller {
	c := &Controller{
		hasMore:   true,
		lookahead: DefaultLookahead,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notes returns a copy of the loaded sequence in display order.
func (c *Controller) Notes() []model.Note {
	out := make([]model.Note, len(c.notes))
	copy(out, c.notes)
	return out
}

func (c *Controller) Len() int                 { return len(c.notes) }
func (c *Controller) Offset() int              { return c.offset }
func (c *Controller) HasMore() bool            { return c.hasMore }
func (c *Controller) Loading() bool            { return c.loading }
func (c *Controller) Flushing() bool           { return c.flushing }
func (c *Controller) SearchState() SearchState { return c.search }

// Pending returns the number of buffered check and position edits.
func (c *Controller) Pending() (checks, positions int) {
	return len(c.checks), len(c.positions)
}

// PendingChecks returns a copy of the check buffer.
func (c *Controller) PendingChecks() []model.CheckEdit {
	out := make([]model.CheckEdit, len(c.checks))
	copy(out, c.checks)
	return out
}

// PendingPositions returns a copy of the position buffer.
func (c *Controller) PendingPositions() []model.PositionEdit {
	out := make([]model.PositionEdit, 0, len(c.positions))
	for _, p := range c.positions {
		out = append(out, p.edit)
	}
	return out
}

// Counts returns how many loaded notes are checked and unchecked.
func (c *Controller) Counts() (checked, unchecked int) {
	for _, n := range c.notes {
		if n.IsChecked {
			checked++
		} else {
			unchecked++
		}
	}
	return
}

// BeginLoad starts a fetch of the next page. It reports false, changing
// nothing, when the context is exhausted or a fetch is already in flight.
func (c *Controller) BeginLoad() (PageRequest, bool) {
	if c.loading || !c.hasMore {
		return PageRequest{}, false
	}
	c.loading = true
	return PageRequest{
		Offset:  c.offset,
		Search:  c.search.Active,
		Query:   c.search.Query,
		Version: c.search.Version,
	}, true
}

// ApplyPage completes the fetch started by BeginLoad. Responses for a query
// context that has since been reset are dropped. It reports whether the
// sequence changed.
func (c *Controller) ApplyPage(req PageRequest, notes []model.Note, err error) bool {
	if req.Version != c.search.Version {
		c.logger.Debug("Dropping stale page",
			slog.Int("offset", req.Offset),
			slog.Int("version", req.Version),
			slog.Int("current_version", c.search.Version))
		return false
	}
	c.loading = false

	if err != nil {
		c.logger.Error("Failed to load notes",
			slog.Int("offset", req.Offset),
			slog.Bool("search", req.Search),
			slog.String("query", req.Query),
			slog.String("error", err.Error()))
		return false
	}

	if req.Offset == 0 {
		c.notes = c.notes[:0]
	}
	seen := make(map[int64]struct{}, len(c.notes)+len(notes))
	for _, n := range c.notes {
		seen[n.ID] = struct{}{}
	}
	for _, n := range notes {
		if _, dup := seen[n.ID]; dup {
			c.logger.Debug("Skipping duplicate note", slog.Int64("id", n.ID))
			continue
		}
		seen[n.ID] = struct{}{}
		c.notes = append(c.notes, n)
	}

	c.offset = req.Offset + model.PageSize
	if len(notes) < model.PageSize {
		c.hasMore = false
	}
	c.metrics.SetLoaded(len(c.notes))
	return true
}

// LoadPage fetches and applies the next page. It returns nil without a
// request when BeginLoad declines. Fetch errors are logged by ApplyPage and
// also returned.
func (c *Controller) LoadPage(ctx context.Context, src PageSource) error {
	req, ok := c.BeginLoad()
	if !ok {
		return nil
	}
	notes, err := req.Fetch(ctx, src)
	c.ApplyPage(req, notes, err)
	if err != nil {
		return fmt.Errorf("load page at offset %d: %w", req.Offset, err)
	}
	return nil
}

// Toggle sets the checked flag of note id and buffers the edit.
func (c *Controller) Toggle(id int64, checked bool) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNoteNotFound, id)
	}
	c.notes[i].IsChecked = checked
	c.checks = append(c.checks, model.CheckEdit{ID: id, IsChecked: checked})
	c.publishPending()
	return nil
}

// Reorder moves the note at from to to, shifting the notes in between by
// one, and buffers the move.
func (c *Controller) Reorder(from, to int) error {
	n := len(c.notes)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d notes", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := c.notes[from]
	c.notes = append(c.notes[:from], c.notes[from+1:]...)
	c.notes = append(c.notes, model.Note{})
	copy(c.notes[to+1:], c.notes[to:])
	c.notes[to] = moved

	c.positions = append(c.positions, pendingPosition{
		edit:         model.PositionEdit{ID: moved.ID, FromIndex: from, ToIndex: to},
		searchScoped: c.search.Active,
	})
	c.publishPending()
	return nil
}

// Search switches the query context. A non-empty query activates search; an
// empty one returns to the full listing. Either way the sequence, cursor and
// hasMore are reset and the first page load is begun.
func (c *Controller) Search(query string) (PageRequest, bool) {
	wasActive := c.search.Active

	c.search.Active = query != ""
	c.search.Query = query
	c.search.Version++

	c.notes = nil
	c.offset = 0
	c.hasMore = true
	c.loading = false
	c.lastVisibleStart, c.lastVisibleEnd = 0, 0
	c.metrics.SetLoaded(0)

	if wasActive && !c.search.Active {
		c.dropSearchScopedPositions()
	}

	c.logger.Info("Search changed",
		slog.Bool("active", c.search.Active),
		slog.String("query", query),
		slog.Int("version", c.search.Version))
	return c.BeginLoad()
}

// Reload restarts the current query context from offset 0.
func (c *Controller) Reload() (PageRequest, bool) {
	return c.Search(c.search.Query)
}

// VisibleRangeChanged is fed the index range [first, last] currently shown.
// When the window moved forward and reached within the lookahead margin of
// the loaded end, the next page load is begun.
func (c *Controller) VisibleRangeChanged(first, last int) (PageRequest, bool) {
	forward := first > c.lastVisibleStart || last > c.lastVisibleEnd
	c.lastVisibleStart, c.lastVisibleEnd = first, last
	if !forward || !c.hasMore || c.loading {
		return PageRequest{}, false
	}
	if last < len(c.notes)-1-c.lookahead {
		return PageRequest{}, false
	}
	return c.BeginLoad()
}

// BeginFlush snapshots the edits to send. It reports false when nothing is
// sendable or another flush is in flight. Moves made in search results are
// never sent.
func (c *Controller) BeginFlush() (Batch, bool) {
	if c.flushing {
		return Batch{}, false
	}
	var b Batch
	if len(c.checks) > 0 {
		b.Checks = make([]model.CheckEdit, len(c.checks))
		copy(b.Checks, c.checks)
	}
	// Search-scoped moves are only recorded while searching and are dropped
	// when search ends, so the sendable ones always form a prefix.
	for _, p := range c.positions {
		if p.searchScoped {
			break
		}
		b.Positions = append(b.Positions, p.edit)
	}
	if b.Request().Empty() {
		return Batch{}, false
	}
	c.flushing = true
	return b, true
}

// FinishFlush completes the flush started by BeginFlush. On success the
// flushed edits are removed; edits buffered since BeginFlush are kept. On
// failure the buffers are left intact for the next attempt.
func (c *Controller) FinishFlush(b Batch, err error) bool {
	c.flushing = false
	if err != nil {
		c.logger.Warn("Failed to flush edits",
			slog.Int("checks", len(b.Checks)),
			slog.Int("positions", len(b.Positions)),
			slog.String("error", err.Error()))
		c.metrics.ObserveFlush("error")
		return false
	}

	// Buffers only grow at the tail between BeginFlush and FinishFlush, so
	// the flushed edits are a prefix of each buffer.
	c.checks = append([]model.CheckEdit(nil), c.checks[min(len(b.Checks), len(c.checks)):]...)
	if len(b.Positions) > 0 {
		c.positions = append([]pendingPosition(nil), c.positions[min(len(b.Positions), len(c.positions)):]...)
	}

	c.logger.Debug("Flushed edits",
		slog.Int("checks", len(b.Checks)),
		slog.Int("positions", len(b.Positions)))
	c.metrics.ObserveFlush("ok")
	c.publishPending()
	return true
}

// CancelFlush forgets an in-flight flush whose result will never be applied.
// Its edits stay buffered and may be sent again.
func (c *Controller) CancelFlush() {
	c.flushing = false
}

// Flush sends the pending edits to sink and clears them once confirmed.
func (c *Controller) Flush(ctx context.Context, sink EditSink) error {
	b, ok := c.BeginFlush()
	if !ok {
		return nil
	}
	err := sink.ChangeNotes(ctx, b.Request())
	c.FinishFlush(b, err)
	if err != nil {
		return fmt.Errorf("flush edits: %w", err)
	}
	return nil
}

func (c *Controller) indexOf(id int64) int {
	for i, n := range c.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) dropSearchScopedPositions() {
	kept := c.positions[:0]
	dropped := 0
	for _, p := range c.positions {
		if p.searchScoped {
			dropped++
			continue
		}
		kept = append(kept, p)
	}
	c.positions = kept
	if dropped > 0 {
		c.logger.Info("Discarded moves made in search results", slog.Int("count", dropped))
		c.publishPending()
	}
}

func (c *Controller) publishPending() {
	c.metrics.SetPending(len(c.checks), len(c.positions))
}
