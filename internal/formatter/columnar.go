package formatter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/pkg/record"
)

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// Options configures columnar rendering.
type Options struct {
	// NoColor disables color output.
	NoColor bool

	// TotalWidth is the total available width. If 0, uses terminal width.
	TotalWidth int

	// RowNumbers adds a leading "#" column.
	RowNumbers bool

	// Hints provides per-column width, priority and alignment hints.
	Hints map[string]ColumnHint

	// ExpandAll renders the rows of collapsed groups too.
	ExpandAll bool
}

type layout struct {
	columns     []string
	widths      []int
	aligns      []string
	rowNumWidth int
	opts        Options
}

func newLayout(columns []string, rows []*record.Row, opts Options) *layout {
	total := opts.TotalWidth
	if total <= 0 {
		total = TerminalWidth()
	}
	l := &layout{columns: columns, opts: opts}
	available := total
	if opts.RowNumbers {
		l.rowNumWidth = len(fmt.Sprint(len(rows))) + 2
		available -= l.rowNumWidth + sepWidth
	}
	hints := lo.Map(columns, func(c string, _ int) ColumnHint { return opts.Hints[c] })
	l.aligns = lo.Map(hints, func(h ColumnHint, _ int) string { return h.Align })
	l.widths = calculateColumnWidths(columns, rows, available, hints)
	return l
}

func (l *layout) totalWidth() int {
	w := lo.Sum(l.widths) + sepWidth*max(len(l.widths)-1, 0)
	if l.opts.RowNumbers {
		w += l.rowNumWidth + sepWidth
	}
	return w
}

func (l *layout) header() string {
	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, 0, len(l.columns)+1)
	if l.opts.RowNumbers {
		parts = append(parts, l.style(headerStyle.Render, padRight("#", l.rowNumWidth)))
	}
	for i, col := range l.columns {
		parts = append(parts, l.style(headerStyle.Render, padRight(col, l.widths[i])))
	}
	return strings.Join(parts, sep)
}

func (l *layout) separator() string {
	return l.style(separatorStyle.Render, strings.Repeat("─", l.totalWidth()))
}

func (l *layout) row(n int, row *record.Row) string {
	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, 0, len(l.columns)+1)
	if l.opts.RowNumbers {
		parts = append(parts, l.style(keyStyle.Render, padRight(fmt.Sprint(n), l.rowNumWidth)))
	}
	for i, col := range l.columns {
		v := Cell(row.Get(col))
		if l.aligns[i] == "right" {
			v = padLeft(v, l.widths[i])
		} else {
			v = padRight(v, l.widths[i])
		}
		parts = append(parts, l.style(valueStyle.Render, v))
	}
	return strings.Join(parts, sep)
}

func (l *layout) style(render func(...string) string, s string) string {
	if l.opts.NoColor {
		return s
	}
	return render(s)
}

// ColumnWidths fits columns into total cells, leaving the two-cell gaps
// between them. Hints may be nil.
func ColumnWidths(columns []string, rows []*record.Row, total int, hints map[string]ColumnHint) []int {
	h := lo.Map(columns, func(c string, _ int) ColumnHint { return hints[c] })
	return calculateColumnWidths(columns, rows, total, h)
}

// RenderTable renders rows as a multi-column table with the column keys as
// headers.
func RenderTable(columns []string, rows []*record.Row, opts Options) string {
	if len(columns) == 0 {
		return ""
	}
	l := newLayout(columns, rows, opts)

	var b strings.Builder
	b.WriteString(l.header() + "\n")
	b.WriteString(l.separator() + "\n")
	for i, row := range rows {
		b.WriteString(l.row(i+1, row) + "\n")
	}
	return b.String()
}

// RenderGroups renders a grouped projection. Each group starts with a
// header line naming its key and row count; rows of collapsed groups are
// omitted unless ExpandAll is set.
func RenderGroups(p engine.Projection, pol engine.Policy, opts Options) string {
	if len(p.Columns) == 0 {
		return ""
	}
	var all []*record.Row
	for _, g := range p.Groups {
		all = append(all, g.Rows...)
	}
	l := newLayout(p.Columns, all, opts)

	var b strings.Builder
	b.WriteString(l.header() + "\n")
	b.WriteString(l.separator() + "\n")
	n := 0
	for _, g := range p.Groups {
		open := opts.ExpandAll || !g.Collapsed
		b.WriteString(GroupLine(pol, g, open, opts.NoColor) + "\n")
		if !open {
			n += len(g.Rows)
			continue
		}
		for _, row := range g.Rows {
			n++
			b.WriteString(l.row(n, row) + "\n")
		}
	}
	b.WriteString(l.separator() + "\n")
	b.WriteString(p.Summary.String() + "\n")
	return b.String()
}

// GroupLine renders the header line of a group, e.g. "▾ BL: B1  2 Message(s)  ✓".
func GroupLine(pol engine.Policy, g engine.Group, open, noColor bool) string {
	marker := "▸"
	if open {
		marker = "▾"
	}
	title := marker + " " + engine.GroupHeader(pol, g)
	count := engine.GroupCount(g)
	done := ""
	if g.Done {
		done = "✓"
	}
	if !noColor {
		title = groupStyle.Render(title)
		count = valueStyle.Render(count)
		if done != "" {
			done = doneStyle.Render(done)
		}
	}
	return strings.TrimRight(strings.Join([]string{title, count, done}, "  "), " ")
}

func calculateColumnWidths(columns []string, rows []*record.Row, availableWidth int, hints []ColumnHint) []int {
	numCols := len(columns)
	if numCols == 0 {
		return nil
	}

	widths := make([]int, numCols)
	for i, col := range columns {
		widths[i] = displayWidth(col)
		for _, row := range rows {
			widths[i] = max(widths[i], displayWidth(Cell(row.Get(col))))
		}
		if hints[i].MaxWidth > 0 {
			widths[i] = min(widths[i], hints[i].MaxWidth)
		}
	}

	usable := availableWidth - (numCols-1)*sepWidth
	if lo.Sum(widths) <= usable || usable <= 0 {
		return widths
	}

	if lo.SomeBy(hints, func(h ColumnHint) bool { return h.Priority != 0 }) {
		return shrinkByPriority(widths, usable, hints)
	}

	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}
	total := lo.Sum(widths)
	if total <= usable {
		return widths
	}
	for i := range widths {
		widths[i] = max(widths[i]*usable/total, minColWidth)
	}
	for lo.Sum(widths) > usable {
		i := widestIndex(widths)
		if widths[i] <= minColWidth {
			break
		}
		widths[i]--
	}
	return widths
}

func widestIndex(widths []int) int {
	best := 0
	for i := 1; i < len(widths); i++ {
		if widths[i] > widths[best] {
			best = i
		}
	}
	return best
}

// shrinkByPriority reduces widths to fit usable by shrinking the
// lowest-priority columns first.
func shrinkByPriority(widths []int, usable int, hints []ColumnHint) []int {
	excess := lo.Sum(widths) - usable
	order := lo.Range(len(widths))
	slices.SortStableFunc(order, func(a, b int) int {
		return hints[a].Priority - hints[b].Priority
	})
	for _, i := range order {
		if excess <= 0 {
			break
		}
		shrink := min(widths[i]-minColWidth, excess)
		if shrink <= 0 {
			continue
		}
		widths[i] -= shrink
		excess -= shrink
	}
	return widths
}
