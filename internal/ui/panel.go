package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := min(int(float64(done)/float64(total)*float64(width)), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// NoteLine renders one note as "  n. ☑ name #id", name cut to maxName cells.
func NoteLine(pos int, id int64, name string, checked bool, maxName int) string {
	t := current
	box, color := t.NoteMark(checked)
	if maxName > 0 {
		name = ansi.Truncate(name, maxName, "…")
	}
	return fmt.Sprintf("%s %s %s %s",
		Dim(fmt.Sprintf("%3d.", pos)), C(color, box), name, C(t.Muted, fmt.Sprintf("#%d", id)))
}

// Panel draws lines inside the current theme's frame, padded to the widest
// visible line.
func Panel(w io.Writer, lines []string) {
	f := current.Frame
	maxw := 0
	for _, ln := range lines {
		maxw = max(maxw, ansi.StringWidth(ln))
	}
	fmt.Fprintln(w, f.TL+strings.Repeat(f.H, maxw+2)+f.TR)
	for _, ln := range lines {
		pad := strings.Repeat(" ", maxw-ansi.StringWidth(ln))
		fmt.Fprintln(w, f.V+" "+ln+pad+" "+f.V)
	}
	fmt.Fprintln(w, f.BL+strings.Repeat(f.H, maxw+2)+f.BR)
}
