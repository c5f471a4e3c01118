package formatter

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/pkg/record"
)

// TreeOptions controls tree output formatting.
type TreeOptions struct {
	// Columns are shown under each row, in order. Empty columns are skipped.
	Columns []string
	// NoValues shows only group headers and row labels.
	NoValues bool
	// MaxStringLen truncates values. 0 or negative = no truncation.
	MaxStringLen int
}

// FormatAsTree renders a projection as an ASCII tree: one branch per group
// (or a single root for a flat projection), one branch per row labelled by
// its first non-empty column, and the remaining fields as leaves.
func FormatAsTree(p engine.Projection, pol engine.Policy, opts TreeOptions) string {
	if len(opts.Columns) == 0 {
		opts.Columns = p.Columns
	}
	tree := treeprint.New()
	if !p.Grouped {
		tree.SetValue(fmt.Sprintf("%d rows", len(p.Rows)))
		for i, row := range p.Rows {
			addRow(tree, i+1, row, opts)
		}
		return tree.String()
	}

	tree.SetValue(p.Summary.String())
	for _, g := range p.Groups {
		label := engine.GroupHeader(pol, g) + " (" + engine.GroupCount(g) + ")"
		if g.Done {
			label += " ✓"
		}
		branch := tree.AddBranch(label)
		for i, row := range g.Rows {
			addRow(branch, i+1, row, opts)
		}
	}
	return tree.String()
}

func addRow(branch treeprint.Tree, n int, row *record.Row, opts TreeOptions) {
	label := fmt.Sprintf("[%d]", n)
	for _, col := range opts.Columns {
		if v := row.Get(col); v != "" {
			label = fmt.Sprintf("[%d] %s", n, truncate(Cell(v), opts.MaxStringLen))
			break
		}
	}
	if opts.NoValues {
		branch.AddNode(label)
		return
	}
	child := branch.AddBranch(label)
	for _, col := range opts.Columns {
		v := row.Get(col)
		if v == "" {
			continue
		}
		child.AddNode(col + ": " + truncate(Cell(v), opts.MaxStringLen))
	}
}
