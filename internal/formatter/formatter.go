// Package formatter renders table projections as text for the terminal.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")
	defaultGroupColor = lipgloss.Color("11")
	defaultDoneColor  = lipgloss.Color("10")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
	groupStyle     lipgloss.Style
	doneStyle      lipgloss.Style
)

// TableColors controls the rendered colors. Nil fields fall back to the
// defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	GroupColor     color.Color
	DoneColor      color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

func applyTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
	groupStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(tc.GroupColor, defaultGroupColor))
	doneStyle = lipgloss.NewStyle().Foreground(orDefault(tc.DoneColor, defaultDoneColor))
}

// SetTableTheme overrides the package styles.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Cell flattens a value to one display line: CRLF and CR become LF and every
// LF is shown as a literal "\n".
func Cell(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// truncate shortens s to maxLen display cells, ending in "..." when there is
// room for it.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || displayWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells, truncating if needed.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// padLeft right-aligns s within width.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(truncate(s, width), width)
}

// TerminalWidth returns the stdout width, or 120 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
