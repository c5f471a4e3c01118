package export

import (
	"strings"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// EscapeCSV quotes v when it contains a comma, a double quote or a newline,
// doubling embedded quotes. Other values pass through unchanged.
func EscapeCSV(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// CSV renders a header line of columns followed by one line per row, joined
// with "\n" and without a trailing newline. Absent fields are empty.
func CSV(columns []string, rows []*record.Row) string {
	var b strings.Builder
	writeCSVLine(&b, columns)
	for _, row := range rows {
		b.WriteByte('\n')
		writeCSVLine(&b, row.Values(columns))
	}
	return b.String()
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSV(f))
	}
}
