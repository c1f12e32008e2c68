package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/model"
)

// noteItem adapts model.Note to list.Item.
type noteItem struct {
	model.Note
}

func (i noteItem) Title() string       { return i.Name }
func (i noteItem) Description() string { return "" }
func (i noteItem) FilterValue() string { return i.Name }

// toggleMsg is how a row reports a checkbox change upward.
type toggleMsg struct {
	id      int64
	checked bool
}

// rowDelegate renders one note per line: cursor marker, checkbox, name.
// held is the index of the row picked up in move mode, or -1.
type rowDelegate struct {
	toggle key.Binding
	held   int
	styles palette
}

func newRowDelegate(styles palette) rowDelegate {
	return rowDelegate{
		toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check")),
		held:   -1,
		styles: styles,
	}
}

func (d rowDelegate) Height() int  { return 1 }
func (d rowDelegate) Spacing() int { return 0 }

// Update turns space on the selected row into a toggleMsg. Rows are inert
// while a move is in progress.
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	if d.held >= 0 {
		return nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok || !key.Matches(km, d.toggle) {
		return nil
	}
	it, ok := m.SelectedItem().(noteItem)
	if !ok {
		return nil
	}
	id, checked := it.ID, !it.IsChecked
	return func() tea.Msg { return toggleMsg{id: id, checked: checked} }
}

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(noteItem)
	if !ok {
		return
	}

	st := d.styles
	prefix := "  "
	switch {
	case d.held >= 0 && index == m.Index():
		prefix = st.moving.Render("→ ")
	case index == m.Index():
		prefix = st.cursor.Render(">") + " "
	case index == d.held:
		prefix = st.held.Render("↕ ")
	}

	name := it.Name
	if room := m.Width() - 4; room > 0 {
		name = ansi.Truncate(name, room, "…")
	}

	if it.IsChecked {
		name = st.checkedName.Render(name)
	}
	fmt.Fprint(w, prefix+st.box(it.IsChecked)+" "+name)
}
