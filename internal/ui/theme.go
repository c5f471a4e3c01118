package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/xmltab/internal/config"
	"github.com/oakwood-commons/xmltab/internal/formatter"
)

// Theme holds the colors of the interactive view. Nil colors render with the
// terminal default.
type Theme struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
	GroupColor     color.Color
	DoneColor      color.Color
	SelectedFG     color.Color
	SelectedBG     color.Color
	StatusError    color.Color
}

// ThemeColor parses a lipgloss color string. Blank yields nil.
func ThemeColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return lipgloss.Color(s)
}

// ThemeFromConfig converts the configured color strings.
func ThemeFromConfig(c config.ThemeConfig) Theme {
	return Theme{
		HeaderFG:       ThemeColor(c.HeaderFG),
		HeaderBG:       ThemeColor(c.HeaderBG),
		KeyColor:       ThemeColor(c.KeyColor),
		ValueColor:     ThemeColor(c.ValueColor),
		SeparatorColor: ThemeColor(c.SeparatorColor),
		GroupColor:     ThemeColor(c.GroupColor),
		DoneColor:      ThemeColor(c.DoneColor),
		SelectedFG:     ThemeColor(c.SelectedFG),
		SelectedBG:     ThemeColor(c.SelectedBG),
		StatusError:    ThemeColor(c.StatusError),
	}
}

// TableColors returns the colors for the non-interactive table renderer.
func (t Theme) TableColors() formatter.TableColors {
	return formatter.TableColors{
		HeaderFG:       t.HeaderFG,
		HeaderBG:       t.HeaderBG,
		KeyColor:       t.KeyColor,
		ValueColor:     t.ValueColor,
		SeparatorColor: t.SeparatorColor,
		GroupColor:     t.GroupColor,
		DoneColor:      t.DoneColor,
	}
}

type styles struct {
	title     lipgloss.Style
	meta      lipgloss.Style
	status    lipgloss.Style
	statusErr lipgloss.Style
	helpKey   lipgloss.Style
	helpValue lipgloss.Style
	selected  lipgloss.Style
}

func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:     plain.Bold(true),
			meta:      plain,
			status:    plain,
			statusErr: plain,
			helpKey:   plain,
			helpValue: plain,
			selected:  plain.Reverse(true),
		}
	}
	fg := func(c color.Color) lipgloss.Style {
		s := lipgloss.NewStyle()
		if c != nil {
			s = s.Foreground(c)
		}
		return s
	}
	selected := lipgloss.NewStyle().Reverse(true)
	if t.SelectedBG != nil {
		selected = fg(t.SelectedFG).Background(t.SelectedBG)
	}
	return styles{
		title:     fg(t.GroupColor).Bold(true),
		meta:      fg(t.ValueColor),
		status:    fg(t.SeparatorColor),
		statusErr: fg(t.StatusError).Bold(true),
		helpKey:   fg(t.KeyColor),
		helpValue: fg(t.ValueColor),
		selected:  selected,
	}
}
