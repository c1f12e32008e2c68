package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/ui"
)

// palette is the interactive list's rendering of a ui.Theme: the same
// checkbox glyphs and check-state colours the plain printers use.
type palette struct {
	header, loaded, searchTag lipgloss.Style

	checked, unchecked, checkedName lipgloss.Style
	cursor, moving, held            lipgloss.Style

	synced, unsynced lipgloss.Style
	muted, err, help lipgloss.Style
	frame, searchBar lipgloss.Style

	checkedBox, uncheckedBox   string
	checkedMark, uncheckedMark string
}

// 256-color codes per theme: header, accent, checked, unchecked.
var themeColors = map[string][4]string{
	"classic": {"", "12", "42", "214"},
	"neon":    {"201", "51", "48", "226"},
}

func newPalette(t ui.Theme) palette {
	p := palette{
		checkedBox:    t.CheckedBox,
		uncheckedBox:  t.UncheckedBox,
		checkedMark:   t.CheckedMark,
		uncheckedMark: t.UncheckedMark,
	}
	plain := lipgloss.NewStyle()
	border := lipgloss.RoundedBorder()
	if t.Plain {
		border = lipgloss.NormalBorder()
	}
	p.frame = plain.Border(border).Padding(0, 1)
	p.searchBar = plain.Border(border).Padding(0, 1)

	p.header = plain.Bold(true)
	p.cursor = plain.Bold(true).Reverse(true)
	p.checkedName = plain.Strikethrough(true)
	p.muted = plain.Faint(true)
	p.help = plain.Faint(true)
	p.err = plain.Bold(true)

	colors, ok := themeColors[t.Name]
	if t.Plain || !ok {
		p.loaded, p.searchTag, p.moving = plain, plain, plain
		p.checked, p.unchecked, p.held = plain, plain, plain
		p.synced, p.unsynced = plain, plain
		return p
	}

	header, accent, checked, unchecked := colors[0], colors[1], colors[2], colors[3]
	if header != "" {
		p.header = p.header.Foreground(lipgloss.Color(header))
	}
	p.loaded = plain.Foreground(lipgloss.Color(accent))
	p.searchTag = p.loaded
	p.moving = p.loaded
	p.checked = plain.Foreground(lipgloss.Color(checked))
	p.synced = p.checked
	p.unchecked = plain.Foreground(lipgloss.Color(unchecked))
	p.unsynced = p.unchecked
	p.held = p.unchecked
	p.checkedName = p.checkedName.Faint(true)
	p.err = p.err.Foreground(lipgloss.Color("9"))
	p.frame = p.frame.BorderForeground(lipgloss.Color("8"))
	p.searchBar = p.searchBar.BorderForeground(lipgloss.Color("8"))
	return p
}

// box renders the checkbox glyph for a check state.
func (p palette) box(checked bool) string {
	if checked {
		return p.checked.Render(p.checkedBox)
	}
	return p.unchecked.Render(p.uncheckedBox)
}
