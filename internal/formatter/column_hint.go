package formatter

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// ColumnHint provides display hints for one column.
type ColumnHint struct {
	// MaxWidth caps the column width. 0 = no cap.
	MaxWidth int

	// Priority controls column importance when shrinking.
	// Higher values resist shrinking; lower values shrink first.
	Priority int

	// Align controls text alignment: "right" or "left" (default).
	Align string
}

// HintsFor derives hints from the data: columns listed in priority resist
// shrinking in the given order, and columns holding only numbers are right
// aligned.
func HintsFor(columns []string, rows []*record.Row, priority []string) map[string]ColumnHint {
	hints := make(map[string]ColumnHint, len(columns))
	for _, col := range columns {
		var h ColumnHint
		if i := lo.IndexOf(priority, col); i >= 0 {
			h.Priority = len(priority) - i
		}
		if numericColumn(col, rows) {
			h.Align = "right"
		}
		hints[col] = h
	}
	return hints
}

func numericColumn(col string, rows []*record.Row) bool {
	seen := false
	for _, r := range rows {
		v := strings.TrimSpace(r.Get(col))
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
