package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTheme(t *testing.T, name string, force bool) {
	t.Helper()
	require.True(t, SetTheme(name))
	SetColorForcing(force, false)
	t.Cleanup(func() { SetColorForcing(false, false); SetTheme("classic") })
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(5, 10, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1), "width and total are clamped")
	assert.Equal(t, "█████ 200%", ProgressBar(4, 2, 5))
}

func TestPanelAlignsColoredLines(t *testing.T) {
	useTheme(t, "classic", true)

	var buf bytes.Buffer
	Panel(&buf, []string{C(green, "ok"), "longer line"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "┌─────────────┐", lines[0])
	assert.Equal(t, "│ longer line │", lines[2])
	assert.NotEqual(t, "│ ok          │", lines[1], "color is kept")
	assert.Equal(t, "│ ok          │", ansi.Strip(lines[1]))
}

func TestNoteLineMono(t *testing.T) {
	useTheme(t, "mono", false)

	assert.Equal(t, "  1. [x] Buy milk #7", NoteLine(1, 7, "Buy milk", true, 0))
	assert.Equal(t, " 12. [ ] Buy… #8", NoteLine(12, 8, "Buy bread", false, 4))
}

func TestNoteLineColorsByCheckState(t *testing.T) {
	useTheme(t, "classic", true)

	assert.Contains(t, NoteLine(0, 1, "a", true, 0), green+"☑"+reset)
	assert.Contains(t, NoteLine(0, 1, "a", false, 0), yellow+"☐"+reset)
}

func TestMonoStaysPlainWhenForced(t *testing.T) {
	useTheme(t, "mono", true)

	assert.Equal(t, "x", C(red, "x"))

	var buf bytes.Buffer
	OK(&buf, "saved")
	Warn(&buf, "careful")
	assert.Equal(t, "ok: saved\nwarning: careful\n", buf.String())
}

func TestSetThemeUnknownFallsBack(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })

	require.True(t, SetTheme("NEON"))
	assert.Equal(t, "neon", Current().Name)
	assert.False(t, SetTheme("sepia"))
	assert.Equal(t, "classic", Current().Name)
}
