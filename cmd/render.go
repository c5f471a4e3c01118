package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/internal/export"
	"github.com/oakwood-commons/xmltab/internal/formatter"
	"github.com/oakwood-commons/xmltab/internal/limiter"
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmltable"
)

// Text outputs; the rest are export formats.
const (
	outputTable = "table"
	outputList  = "list"
	outputTree  = "tree"
)

func outputFormats() []string {
	return append([]string{outputTable, outputList, outputTree}, export.Formats()...)
}

// validOutput reports whether name is a text output or export format.
func validOutput(name string) bool {
	if name == outputTable || name == outputList || name == outputTree {
		return true
	}
	_, err := export.ParseFormat(name)
	return err == nil
}

type renderOptions struct {
	NoColor bool
	Width   int
	Limit   limiter.Config
}

// renderOutput renders the session's current view as output.
func renderOutput(s *xmltable.Session, output string, opts renderOptions) (string, error) {
	eng := s.Engine
	pol := eng.Policy()
	p := eng.Project()

	switch output {
	case outputTable:
		return renderTable(s, p, pol, opts), nil
	case outputList:
		rows := limiter.Apply(opts.Limit, orderedRows(p))
		return formatter.FormatAsList(p.Columns, rows, formatter.ListOptions{NoColor: opts.NoColor}), nil
	case outputTree:
		p = limitProjection(p, opts.Limit)
		return formatter.FormatAsTree(p, pol, formatter.TreeOptions{}), nil
	}

	f, err := export.ParseFormat(output)
	if err != nil {
		return "", err
	}
	rows := limiter.Apply(opts.Limit, eng.VisibleRows())
	b, err := export.Encode(f, export.Table{Title: s.FileName(), Columns: p.Columns, Rows: rows})
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", f, err)
	}
	out := string(b)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

func renderTable(s *xmltable.Session, p engine.Projection, pol engine.Policy, opts renderOptions) string {
	total := len(p.Rows)
	if p.Grouped {
		total = len(p.Groups)
	}
	p = limitProjection(p, opts.Limit)
	rows := orderedRows(p)

	fopts := formatter.Options{
		NoColor:    opts.NoColor,
		TotalWidth: opts.Width,
		Hints:      formatter.HintsFor(p.Columns, rows, pol.Columns.Priority),
		ExpandAll:  true,
	}
	var b strings.Builder
	if p.Grouped {
		b.WriteString(formatter.RenderGroups(p, pol, fopts))
	} else {
		b.WriteString(formatter.RenderTable(p.Columns, rows, fopts))
	}
	if note := opts.Limit.Describe(total); note != "" {
		unit := "rows"
		if p.Grouped {
			unit = "groups"
		}
		b.WriteString(fmt.Sprintf("(%s %s)\n", note, unit))
	}
	b.WriteString(s.Meta() + "\n")
	return b.String()
}

// limitProjection windows groups when grouped, else rows.
func limitProjection(p engine.Projection, c limiter.Config) engine.Projection {
	if p.Grouped {
		p.Groups = limiter.Apply(c, p.Groups)
	} else {
		p.Rows = limiter.Apply(c, p.Rows)
	}
	return p
}

// orderedRows returns the rows in display order.
func orderedRows(p engine.Projection) []*record.Row {
	if !p.Grouped {
		return p.Rows
	}
	return lo.FlatMap(p.Groups, func(g engine.Group, _ int) []*record.Row { return g.Rows })
}
