package ui

import "strings"

// Frame is the set of box-drawing runes Panel uses.
type Frame struct {
	TL, TR, BL, BR string
	H, V           string
}

// Theme is everything the plain printers need to draw notes: colours per
// check state, checkbox glyphs, status marks and the panel frame.
type Theme struct {
	Name string

	Heading, Muted, Accent string
	Checked, Unchecked     string
	Error, Warn            string

	CheckedBox, UncheckedBox   string
	CheckedMark, UncheckedMark string
	OKMark, FailMark, WarnMark string

	Frame Frame
	// Plain themes never emit color, whatever the terminal supports.
	Plain bool
}

var themes = map[string]Theme{
	"classic": {
		Name:    "classic",
		Heading: bold, Muted: gray, Accent: blue,
		Checked: green, Unchecked: yellow,
		Error: red, Warn: yellow,
		CheckedBox: "☑", UncheckedBox: "☐",
		CheckedMark: "✔", UncheckedMark: "•",
		OKMark: "✔", FailMark: "✖", WarnMark: "!",
		Frame: Frame{TL: "┌", TR: "┐", BL: "└", BR: "┘", H: "─", V: "│"},
	},
	"neon": {
		Name:    "neon",
		Heading: magenta, Muted: gray, Accent: cyan,
		Checked: green, Unchecked: brightYellow,
		Error: red, Warn: brightYellow,
		CheckedBox: "◼", UncheckedBox: "◻",
		CheckedMark: "✔", UncheckedMark: "•",
		OKMark: "✔", FailMark: "✖", WarnMark: "!",
		Frame: Frame{TL: "╭", TR: "╮", BL: "╰", BR: "╯", H: "─", V: "│"},
	},
	"mono": {
		Name:       "mono",
		CheckedBox: "[x]", UncheckedBox: "[ ]",
		CheckedMark: "x", UncheckedMark: "-",
		OKMark: "ok:", FailMark: "error:", WarnMark: "warning:",
		Frame: Frame{TL: "+", TR: "+", BL: "+", BR: "+", H: "-", V: "|"},
		Plain: true,
	},
}

var current = themes["classic"]

// Lookup finds a theme by name, ignoring case.
func Lookup(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// SetTheme selects classic, neon or mono. Unknown names fall back to
// classic and report false.
func SetTheme(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		current = themes["classic"]
		return false
	}
	current = t
	return true
}

// Current returns the active theme.
func Current() Theme { return current }

// NoteMark returns the checkbox glyph and its colour for a check state.
func (t Theme) NoteMark(checked bool) (box, color string) {
	if checked {
		return t.CheckedBox, t.Checked
	}
	return t.UncheckedBox, t.Unchecked
}

// CountMark returns the mark used next to checked or unchecked totals.
func (t Theme) CountMark(checked bool) string {
	if checked {
		return C(t.Checked, t.CheckedMark)
	}
	return C(t.Unchecked, t.UncheckedMark)
}
