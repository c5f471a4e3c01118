package formatter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// ListOptions controls list output formatting.
type ListOptions struct {
	NoColor bool // disable color output
	// ShowEmpty includes columns whose value is blank.
	ShowEmpty bool
}

// FormatAsList renders each row as a numbered block of "column: value"
// lines. Real line breaks inside values are kept.
func FormatAsList(columns []string, rows []*record.Row, opts ListOptions) string {
	var b strings.Builder
	keyWidth := 0
	for _, c := range columns {
		keyWidth = max(keyWidth, displayWidth(c))
	}

	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		header := fmt.Sprintf("%d", i+1)
		if !opts.NoColor {
			header = headerStyle.Render(header)
		}
		b.WriteString(header + "\n")

		for _, col := range columns {
			val := row.Get(col)
			if val == "" && !opts.ShowEmpty {
				continue
			}
			key := "  " + padRight(col, keyWidth)
			if !opts.NoColor {
				key = keyStyle.Render(key)
				val = valueStyle.Render(val)
			}
			b.WriteString(key + ": " + val + "\n")
		}
	}
	return b.String()
}
