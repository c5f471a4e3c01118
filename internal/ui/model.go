package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/internal/export"
	"github.com/oakwood-commons/xmltab/internal/formatter"
	"github.com/oakwood-commons/xmltab/internal/ui/table"
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmltable"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	// chromeLines are the rows taken by title, meta, summary, status and
	// the search line.
	chromeLines = 6
)

// Options configures a Model.
type Options struct {
	NoColor bool
	Theme   Theme
	Width   int
	Height  int
	// ExportDir is where CSV exports are written. Empty means the working
	// directory.
	ExportDir string
	// WriteFile replaces os.WriteFile for exports.
	WriteFile func(name string, data []byte) error
}

// line is one table row: a group header when row is nil, else a data row.
type line struct {
	group *engine.Group
	row   *record.Row
}

type picker struct {
	column string
	values []string
	cursor int
}

// Model is the interactive table view over a session's engine.
type Model struct {
	session *xmltable.Session
	table   *table.Model[line]
	search  textinput.Model

	proj      engine.Projection
	col       int
	picker    *picker
	searching bool
	showHelp  bool

	status    string
	statusErr bool

	width   int
	height  int
	noColor bool
	theme   Theme
	styles  styles

	exportDir string
	writeFile func(string, []byte) error
}

// New builds a model over session. The session should already hold data;
// its load status becomes the first status line.
func New(session *xmltable.Session, opts Options) *Model {
	m := &Model{
		session:   session,
		width:     opts.Width,
		height:    opts.Height,
		noColor:   opts.NoColor,
		theme:     opts.Theme,
		styles:    newStyles(opts.Theme, opts.NoColor),
		exportDir: opts.ExportDir,
		writeFile: opts.WriteFile,
		status:    session.Status(),
		statusErr: session.Failed(),
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	if m.writeFile == nil {
		m.writeFile = func(name string, data []byte) error {
			return os.WriteFile(name, data, 0o644)
		}
	}

	m.search = textinput.New()
	m.search.Prompt = "/"
	m.search.Placeholder = "search rows"

	m.table = table.NewModel(nil, m.cells, m.searchKey)
	m.table.SetNoColor(opts.NoColor)
	m.table.SetColors(opts.Theme.HeaderFG, opts.Theme.HeaderBG, opts.Theme.SelectedFG, opts.Theme.SelectedBG)
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rebuild()
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.picker != nil {
		return m.handlePickerKey(msg)
	}

	eng := m.session.Engine
	action := ActionFor(TableBindings, msg)
	if m.showHelp && action != ActionHelp && action != ActionQuit {
		m.showHelp = false
		return m, nil
	}

	switch action {
	case ActionQuit:
		return m, tea.Quit
	case ActionUp:
		m.table.MoveUp(1)
	case ActionDown:
		m.table.MoveDown(1)
	case ActionPageUp:
		m.table.MoveUp(m.table.PageSize())
	case ActionPageDown:
		m.table.MoveDown(m.table.PageSize())
	case ActionTop:
		m.table.GotoTop()
	case ActionBottom:
		m.table.GotoBottom()
	case ActionPrevColumn:
		if m.col > 0 {
			m.col--
		}
		m.rebuild()
	case ActionNextColumn:
		if m.col < len(m.proj.Columns)-1 {
			m.col++
		}
		m.rebuild()
	case ActionSort:
		if col, ok := m.focusedColumn(); ok {
			eng.ToggleSort(col)
			m.rebuild()
		}
	case ActionFilter:
		m.openPicker()
	case ActionClearFilters:
		eng.ClearFilters()
		m.setStatus("Filters cleared.", false)
		m.rebuild()
	case ActionToggleGroup:
		if g := m.selectedGroup(); g != nil {
			eng.ToggleGroupCollapsed(g.Key)
			m.rebuild()
		}
	case ActionToggleDone:
		if g := m.selectedGroup(); g != nil {
			eng.ToggleGroupDone(g.Key)
			m.rebuild()
		}
	case ActionExpandAll:
		eng.SetAllCollapsed(false)
		m.rebuild()
	case ActionCollapseAll:
		eng.SetAllCollapsed(true)
		m.rebuild()
	case ActionGrouping:
		eng.SetGroupingEnabled(!eng.State().Grouping)
		m.rebuild()
	case ActionSimpleView:
		eng.SetSimpleView(!eng.State().SimpleView)
		m.col = 0
		m.rebuild()
	case ActionHideResolved:
		eng.SetSuppressResolved(!eng.State().SuppressResolved)
		m.rebuild()
	case ActionExport:
		m.exportCSV()
	case ActionCopy:
		m.copySelection()
	case ActionSearch:
		m.searching = true
		return m, m.search.Focus()
	case ActionHelp:
		m.showHelp = !m.showHelp
	case ActionBack:
		if m.table.Filter() != "" {
			m.search.SetValue("")
			m.table.ClearFilter()
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch keyName(msg) {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.table.ClearFilter()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.table.SetFilter(m.search.Value())
	return m, cmd
}

func (m *Model) handlePickerKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	p := m.picker
	eng := m.session.Engine
	switch ActionFor(PickerBindings, msg) {
	case ActionQuit:
		return m, tea.Quit
	case ActionUp:
		if p.cursor > 0 {
			p.cursor--
		}
	case ActionDown:
		if p.cursor < len(p.values)-1 {
			p.cursor++
		}
	case ActionPickerToggle:
		if p.cursor < len(p.values) {
			eng.ToggleFilterValue(p.column, p.values[p.cursor])
			m.rebuild()
		}
	case ActionPickerAll:
		eng.ClearFilter(p.column)
		m.rebuild()
	case ActionPickerClose:
		m.picker = nil
	}
	return m, nil
}

func (m *Model) openPicker() {
	col, ok := m.focusedColumn()
	if !ok {
		return
	}
	m.picker = &picker{column: col, values: m.session.Engine.UniqueValues(col)}
}

func (m *Model) focusedColumn() (string, bool) {
	if m.col < 0 || m.col >= len(m.proj.Columns) {
		return "", false
	}
	return m.proj.Columns[m.col], true
}

// selectedGroup returns the group of the line under the cursor.
func (m *Model) selectedGroup() *engine.Group {
	sel := m.table.SelectedRow()
	if sel == nil {
		return nil
	}
	return sel.group
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// exportCSV writes the visible rows next to the input as <name>.csv.
func (m *Model) exportCSV() {
	eng := m.session.Engine
	rows := eng.VisibleRows()
	if len(rows) == 0 {
		m.setStatus("Nothing to export.", true)
		return
	}
	name := export.FileName(m.session.FileName(), export.FormatCSV)
	if m.exportDir != "" {
		name = filepath.Join(m.exportDir, name)
	}
	data := export.CSV(eng.Columns(), rows)
	if err := m.writeFile(name, []byte(data)); err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Saved %d rows to %s", len(rows), name), false)
}

// copySelection copies the selected row, or every row of the selected
// group, to the clipboard as CSV.
func (m *Model) copySelection() {
	sel := m.table.SelectedRow()
	if sel == nil {
		return
	}
	rows := []*record.Row{sel.row}
	if sel.row == nil {
		rows = sel.group.Rows
	}
	if err := CopyToClipboard(export.CSV(m.proj.Columns, rows)); err != nil {
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %d rows.", len(rows)), false)
}

// rebuild projects the engine state into table lines and columns.
func (m *Model) rebuild() {
	eng := m.session.Engine
	m.proj = eng.Project()
	p := m.proj

	var lines []line
	var rows []*record.Row
	if p.Grouped {
		for i := range p.Groups {
			g := &p.Groups[i]
			lines = append(lines, line{group: g})
			rows = append(rows, g.Rows...)
			if g.Collapsed {
				continue
			}
			for _, r := range g.Rows {
				lines = append(lines, line{group: g, row: r})
			}
		}
	} else {
		rows = p.Rows
		for _, r := range p.Rows {
			lines = append(lines, line{row: r})
		}
	}

	if m.col >= len(p.Columns) {
		m.col = max(len(p.Columns)-1, 0)
	}

	hints := formatter.HintsFor(p.Columns, rows, eng.Policy().Columns.Priority)
	widths := formatter.ColumnWidths(p.Columns, rows, m.width, hints)
	// Group headers are wider than the key values they carry.
	for _, l := range lines {
		if l.row != nil {
			continue
		}
		for i, c := range m.cells(l) {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	sort := eng.Sort()
	cols := make([]table.Column, len(p.Columns))
	for i, c := range p.Columns {
		title := c
		if sort.Column == c {
			if sort.Direction == engine.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if len(eng.Filter(c)) > 0 {
			title += " *"
		}
		if i == m.col {
			title = "[" + title + "]"
		}
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}

	m.table.SetSize(m.width, m.tableHeight())
	m.table.SetColumns(cols)
	m.table.SetRows(lines)
}

func (m *Model) tableHeight() int {
	h := m.height - chromeLines
	if m.showHelp {
		h -= len(TableBindings)
	}
	return max(h, 3)
}

// cells renders a line into table cells.
func (m *Model) cells(l line) table.Row {
	cols := m.proj.Columns
	out := make(table.Row, len(cols))
	if l.row == nil {
		if len(out) == 0 {
			return out
		}
		g := *l.group
		pol := m.session.Engine.Policy()
		marker := "▾"
		if g.Collapsed {
			marker = "▸"
		}
		title := marker + " " + engine.GroupHeader(pol, g)
		count := engine.GroupCount(g)
		if g.Done {
			count += "  ✓"
		}
		if len(out) == 1 {
			out[0] = title + "  " + count
		} else {
			out[0], out[1] = title, count
		}
		return out
	}
	for i, v := range l.row.Values(cols) {
		out[i] = formatter.Cell(v)
	}
	return out
}

// searchKey is the text search matches against. A group header matches
// when any of its rows does.
func (m *Model) searchKey(l line) string {
	if l.row != nil {
		return strings.Join(l.row.Values(m.proj.Columns), " ")
	}
	parts := []string{l.group.Key}
	for _, r := range l.group.Rows {
		parts = append(parts, r.Values(m.proj.Columns)...)
	}
	return strings.Join(parts, " ")
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the screen as text.
func (m *Model) Render() string {
	st := m.styles
	eng := m.session.Engine
	var b strings.Builder

	b.WriteString(st.title.Render("xmltab") + "  " + st.meta.Render(m.session.Meta()) + "\n")
	summary := m.proj.Summary.String()
	if n := eng.ActiveFilters(); n > 0 {
		summary += fmt.Sprintf(" | Filters: %d", n)
	}
	if !eng.State().Grouping {
		summary += " | Grouping: off"
	}
	if !eng.State().SimpleView {
		summary += " | All columns"
	}
	if !eng.State().SuppressResolved {
		summary += " | Showing resolved"
	}
	b.WriteString(st.meta.Render(summary) + "\n")

	switch {
	case m.picker != nil:
		b.WriteString(m.renderPicker() + "\n")
	case !eng.HasData():
		b.WriteString("No data.\n")
	default:
		b.WriteString(m.table.View() + "\n")
	}

	if m.searching || m.table.Filter() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	status := st.status
	if m.statusErr {
		status = st.statusErr
	}
	statusLine := m.status
	if rp := m.session.RecordPath(); rp != "" {
		statusLine = strings.TrimSpace(statusLine + "  " + rp)
	}
	b.WriteString(status.Render(statusLine) + "\n")

	if m.showHelp {
		b.WriteString(helpText(TableBindings, st) + "\n")
	} else {
		b.WriteString(st.helpValue.Render("? help  s sort  f filter  enter group  x export  q quit"))
	}
	return b.String()
}

func (m *Model) renderPicker() string {
	p := m.picker
	eng := m.session.Engine
	pol := eng.Policy()
	selected := make(map[string]bool)
	for _, t := range eng.Filter(p.column) {
		selected[t] = true
	}

	lines := []string{m.styles.title.Render(fmt.Sprintf("Filter %s (%s)", p.column, eng.FilterSummary(p.column)))}
	if len(p.values) == 0 {
		lines = append(lines, "  no values")
	}
	limit := max(m.width-6, 10)
	for i, token := range p.values {
		box := "[ ]"
		if selected[token] {
			box = "[x]"
		}
		text := fmt.Sprintf("%s %s", box, runewidth.Truncate(formatter.Cell(pol.Label(token)), limit, "…"))
		if i == p.cursor {
			text = m.styles.selected.Render("> " + text)
		} else {
			text = "  " + text
		}
		lines = append(lines, text)
	}
	lines = append(lines, m.styles.helpValue.Render("space toggle  a all  enter close"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Lines returns the current table lines as plain text, one per line, for
// callers without a terminal.
func (m *Model) Lines() []string {
	var out []string
	for _, l := range m.table.Rows() {
		out = append(out, strings.TrimRight(strings.Join(m.cells(l), " | "), " |"))
	}
	return out
}
