package table

import (
	"fmt"
	"image/color"
	"strings"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

// Model is a table of typed rows with a case-insensitive text filter.
//
// V is the row value type; toRow renders a value into cells and keyFunc
// returns the text the filter searches.
type Model[V any] struct {
	table    bubtable.Model
	styles   bubtable.Styles
	rows     []V
	filter   string
	filtered []V
	columns  []Column

	toRow   func(V) Row
	keyFunc func(V) string

	width   int
	height  int
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a table with no rows.
func NewModel[V any](columns []Column, toRow func(V) Row, keyFunc func(V) string) *Model[V] {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	return &Model[V]{
		table:    t,
		styles:   s,
		columns:  columns,
		toRow:    toRow,
		keyFunc:  keyFunc,
		width:    80,
		height:   10,
		rows:     []V{},
		filtered: []V{},
	}
}

// SetRows replaces the row values and reapplies the filter. The cursor is
// kept when still in range.
func (m *Model[V]) SetRows(rows []V) {
	cursor := m.Cursor()
	m.rows = rows
	m.applyFilter(cursor)
}

// SetColumns replaces the column definitions. Rows must be set again when
// the column count changes.
func (m *Model[V]) SetColumns(columns []Column) {
	cursor := m.Cursor()
	m.columns = columns
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.applyFilter(cursor)
}

// Columns returns the current column definitions.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// Rows returns the rows passing the filter.
func (m *Model[V]) Rows() []V {
	return m.filtered
}

// AllRows returns every row.
func (m *Model[V]) AllRows() []V {
	return m.rows
}

// SetFilter keeps only rows whose key contains filter, ignoring case.
func (m *Model[V]) SetFilter(filter string) {
	m.filter = filter
	m.applyFilter(m.Cursor())
}

// Filter returns the current filter text.
func (m *Model[V]) Filter() string {
	return m.filter
}

// ClearFilter shows every row again.
func (m *Model[V]) ClearFilter() {
	m.SetFilter("")
}

// applyFilter recomputes the visible rows and puts the cursor back at
// cursor, clamped. bubbles moves it to -1 whenever the table empties.
func (m *Model[V]) applyFilter(cursor int) {
	needle := strings.ToLower(strings.TrimSpace(m.filter))
	if needle == "" {
		m.filtered = m.rows
	} else {
		m.filtered = make([]V, 0, len(m.rows))
		for _, row := range m.rows {
			if strings.Contains(strings.ToLower(m.keyFunc(row)), needle) {
				m.filtered = append(m.filtered, row)
			}
		}
	}

	tableRows := make([]Row, len(m.filtered))
	for i, row := range m.filtered {
		tableRows[i] = m.fit(m.toRow(row))
	}
	m.table.SetRows(tableRows)

	if n := len(m.filtered); n > 0 {
		m.table.SetCursor(min(cursor, n-1))
	}
}

// fit pads or trims r to the column count; bubbles indexes cells by column.
func (m *Model[V]) fit(r Row) Row {
	if len(r) == len(m.columns) {
		return r
	}
	out := make(Row, len(m.columns))
	copy(out, r)
	return out
}

// Cursor returns the cursor position within the filtered rows.
func (m *Model[V]) Cursor() int {
	return max(m.table.Cursor(), 0)
}

// SetCursor moves the cursor.
func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the row under the cursor, or nil.
func (m *Model[V]) SelectedRow() *V {
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[cursor]
}

// MoveUp moves the cursor up n rows.
func (m *Model[V]) MoveUp(n int) { m.table.MoveUp(n) }

// MoveDown moves the cursor down n rows.
func (m *Model[V]) MoveDown(n int) { m.table.MoveDown(n) }

// GotoTop moves the cursor to the first row.
func (m *Model[V]) GotoTop() { m.table.GotoTop() }

// GotoBottom moves the cursor to the last row.
func (m *Model[V]) GotoBottom() { m.table.GotoBottom() }

// SetSize sets the viewport dimensions.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

// PageSize is the number of body rows that fit the viewport.
func (m *Model[V]) PageSize() int {
	return max(m.height-2, 1)
}

// SetNoColor enables or disables colors.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets the header and selection colors. Nil keeps the default.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles
	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}
	m.table.SetStyles(s)
	m.styles = s
}

// Update passes msg to the underlying table.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height including the header.
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// String describes the table for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, filtered=%d, cursor=%d, filter=%q]",
		len(m.rows), len(m.filtered), m.Cursor(), m.filter)
}
