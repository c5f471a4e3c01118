package export

import (
	"bytes"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

var markdownCell = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

// Markdown renders a GitHub-style pipe table.
func Markdown(columns []string, rows []*record.Row) string {
	return markdownTable(columns, rows, nil)
}

func markdownTable(columns []string, rows []*record.Row, escape func(string) string) string {
	if len(columns) == 0 {
		return ""
	}
	var b strings.Builder
	writeMarkdownLine(&b, columns, escape)
	b.WriteString("|")
	for range columns {
		b.WriteString(" --- |")
	}
	b.WriteByte('\n')
	for _, r := range rows {
		writeMarkdownLine(&b, r.Values(columns), escape)
	}
	return b.String()
}

func writeMarkdownLine(b *strings.Builder, cells []string, escape func(string) string) {
	b.WriteString("|")
	for _, c := range cells {
		if escape != nil {
			c = escape(c)
		}
		b.WriteByte(' ')
		b.WriteString(markdownCell.Replace(c))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

// HTML renders the Markdown table through gomarkdown and wraps it in a
// standalone document. Cell text is HTML-escaped before parsing.
func HTML(t Table) []byte {
	extensions := parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(markdownTable(t.Columns, t.Rows, html.EscapeString)))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.Render(doc, renderer)

	title := t.Title
	if title == "" {
		title = "table"
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title>\n<style>\n")
	buf.WriteString("table { border-collapse: collapse; font-family: sans-serif; font-size: 13px; }\n")
	buf.WriteString("th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; vertical-align: top; }\n")
	buf.WriteString("th { background: #f3f3f3; }\n")
	buf.WriteString("</style>\n</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
