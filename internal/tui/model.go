package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notelist"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune the interactive list.
type Options struct {
	FlushInterval  time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
	// Theme picks glyphs and colours; the zero value means ui.Current().
	Theme ui.Theme
}

func (o Options) withDefaults() Options {
	if o.FlushInterval <= 0 {
		o.FlushInterval = 100 * time.Millisecond
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Theme.Name == "" {
		o.Theme = ui.Current()
	}
	return o
}

type pageLoadedMsg struct {
	req   notelist.PageRequest
	notes []model.Note
	err   error
}

type flushTickMsg struct{}

type flushDoneMsg struct {
	batch notelist.Batch
	err   error
}

type keyMap struct {
	search key.Binding
	move   key.Binding
	drop   key.Binding
	cancel key.Binding
	reload key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		move:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type appModel struct {
	ctl     *notelist.Controller
	backend notelist.Backend
	opts    Options
	keys    keyMap

	list     list.Model
	delegate rowDelegate
	styles   palette

	// search bar
	searching bool
	ti        textinput.Model

	// move mode: the row picked up with m
	moving   bool
	moveFrom int

	status   string
	quitting bool

	width  int
	height int
}

func newAppModel(ctl *notelist.Controller, backend notelist.Backend, opts Options) appModel {
	opts = opts.withDefaults()
	styles := newPalette(opts.Theme)
	d := newRowDelegate(styles)
	keys := newKeyMap()

	l := list.New(nil, d, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = styles.header
	l.Styles.HelpStyle = styles.help
	l.Styles.PaginationStyle = styles.help
	l.SetStatusBarItemName("note", "notes")
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{d.toggle, keys.move, keys.search, keys.quit}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{d.toggle, keys.move, keys.drop, keys.cancel, keys.search, keys.reload, keys.quit}
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search notes (empty shows all)..."
	ti.CharLimit = 200

	m := appModel{
		ctl:      ctl,
		backend:  backend,
		opts:     opts,
		keys:     keys,
		list:     l,
		delegate: d,
		styles:   styles,
		ti:       ti,
		width:    80,
		height:   24,
	}
	m.resize()
	m.list.Title = m.header()
	return m
}

func (m appModel) Init() tea.Cmd {
	var load tea.Cmd
	if req, ok := m.ctl.BeginLoad(); ok {
		load = m.loadCmd(req)
	}
	return tea.Batch(load, m.tickFlush())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, m.prefetch()

	case pageLoadedMsg:
		if m.ctl.ApplyPage(msg.req, msg.notes, msg.err) {
			cmd := m.syncItems()
			return m, tea.Batch(cmd, m.prefetch())
		}
		return m, nil

	case toggleMsg:
		if err := m.ctl.Toggle(msg.id, msg.checked); err != nil {
			m.opts.Logger.Warn("Toggle failed", slog.Int64("id", msg.id), slog.String("error", err.Error()))
			return m, nil
		}
		return m, m.syncItems()

	case flushTickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(m.startFlush(), m.tickFlush())

	case flushDoneMsg:
		m.ctl.FinishFlush(msg.batch, msg.err)
		m.list.Title = m.header()
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		query := strings.TrimSpace(m.ti.Value())
		m.searching = false
		m.ti.Blur()
		m.resize()
		return m, m.startSearch(query)
	case "esc":
		m.searching = false
		m.ti.Blur()
		m.resize()
		return m, nil
	case "ctrl+c":
		return m.quit()
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.moving {
		switch {
		case key.Matches(msg, m.keys.drop):
			return m, m.drop()
		case key.Matches(msg, m.keys.cancel):
			m.endMove()
			m.status = ""
			return m, nil
		case msg.String() == "ctrl+c":
			return m.quit()
		}
	} else {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m.quit()
		case key.Matches(msg, m.keys.search):
			m.searching = true
			m.ti.SetValue(m.ctl.SearchState().Query)
			m.ti.CursorEnd()
			m.resize()
			return m, m.ti.Focus()
		case key.Matches(msg, m.keys.move):
			if len(m.list.Items()) > 1 {
				m.moving = true
				m.moveFrom = m.list.Index()
				m.delegate.held = m.moveFrom
				m.list.SetDelegate(m.delegate)
				m.status = "moving: choose a position, enter to drop, esc to cancel"
			}
			return m, nil
		case key.Matches(msg, m.keys.reload):
			req, ok := m.ctl.Reload()
			cmd := m.syncItems()
			if ok {
				cmd = tea.Batch(cmd, m.loadCmd(req))
			}
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.prefetch())
}

// quit stops the program once no flush is in flight. The final flush of
// whatever is still buffered runs after the program exits.
func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.ctl.Flushing() {
		m.status = "syncing before exit..."
		return m, nil
	}
	return m, tea.Quit
}

func (m *appModel) drop() tea.Cmd {
	from, to := m.moveFrom, m.list.Index()
	m.endMove()
	if err := m.ctl.Reorder(from, to); err != nil {
		m.status = m.styles.err.Render(err.Error())
		return nil
	}
	m.status = ""
	cmd := m.syncItems()
	m.list.Select(to)
	return cmd
}

func (m *appModel) endMove() {
	m.moving = false
	m.delegate.held = -1
	m.list.SetDelegate(m.delegate)
}

func (m *appModel) startSearch(query string) tea.Cmd {
	req, ok := m.ctl.Search(query)
	cmd := m.syncItems()
	m.list.ResetSelected()
	if ok {
		cmd = tea.Batch(cmd, m.loadCmd(req))
	}
	return cmd
}

func (m *appModel) startFlush() tea.Cmd {
	b, ok := m.ctl.BeginFlush()
	if !ok {
		return nil
	}
	backend, timeout := m.backend, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return flushDoneMsg{batch: b, err: backend.ChangeNotes(ctx, b.Request())}
	}
}

func (m appModel) loadCmd(req notelist.PageRequest) tea.Cmd {
	backend, timeout := m.backend, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notes, err := req.Fetch(ctx, backend)
		return pageLoadedMsg{req: req, notes: notes, err: err}
	}
}

func (m appModel) tickFlush() tea.Cmd {
	return tea.Tick(m.opts.FlushInterval, func(time.Time) tea.Msg { return flushTickMsg{} })
}

// prefetch reports the rows on the current page to the controller, which
// decides whether the next page is needed.
func (m *appModel) prefetch() tea.Cmd {
	n := len(m.list.Items())
	if n == 0 {
		return nil
	}
	start, end := m.list.Paginator.GetSliceBounds(n)
	if end <= start {
		return nil
	}
	req, ok := m.ctl.VisibleRangeChanged(start, end-1)
	if !ok {
		return nil
	}
	return m.loadCmd(req)
}

// syncItems mirrors the controller's sequence into the list, keeping the
// cursor where it was.
func (m *appModel) syncItems() tea.Cmd {
	notes := m.ctl.Notes()
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = noteItem{n}
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= 0 && idx < len(items) {
		m.list.Select(idx)
	}
	m.list.Title = m.header()
	return cmd
}

func (m appModel) header() string {
	st := m.styles
	checked, unchecked := m.ctl.Counts()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		st.header.Render("Notes"),
		st.checked.Render(st.checkedMark), checked,
		st.unchecked.Render(st.uncheckedMark), unchecked,
		st.loaded.Render("Loaded"), m.ctl.Len(),
	)
}

func (m appModel) footer() string {
	st := m.styles
	var parts []string
	if s := m.ctl.SearchState(); s.Active {
		parts = append(parts, st.searchTag.Render(fmt.Sprintf("search: %q", s.Query)))
	}
	if m.ctl.Loading() {
		parts = append(parts, st.muted.Render("loading..."))
	} else if !m.ctl.HasMore() {
		parts = append(parts, st.muted.Render("end of list"))
	}
	checks, positions := m.ctl.Pending()
	switch {
	case m.ctl.Flushing():
		parts = append(parts, st.unsynced.Render("syncing..."))
	case checks+positions > 0:
		parts = append(parts, st.unsynced.Render(fmt.Sprintf("%d unsynced", checks+positions)))
	default:
		parts = append(parts, st.synced.Render("synced"))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, st.muted.Render("  ·  "))
}

func (m *appModel) resize() {
	// border + padding, footer line, search box when open
	listHeight := m.height - 3
	if m.searching {
		listHeight -= 4
	}
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m appModel) View() string {
	content := m.list.View() + "\n" + m.footer()
	if m.searching {
		content += "\n" + m.styles.searchBar.Render("Search\n"+m.ti.View())
	}
	return m.styles.frame.Render(content)
}
