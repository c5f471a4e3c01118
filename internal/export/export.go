// Package export serialises the visible rows of a projection.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatTOML, FormatMarkdown, FormatHTML}

var aliases = map[string]Format{
	"yml": FormatYAML,
	"md":  FormatMarkdown,
	"htm": FormatHTML,
}

// Formats lists the supported format names.
func Formats() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat resolves a format name or alias, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if f, ok := aliases[name]; ok {
		return f, nil
	}
	for _, f := range formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want one of %s)", s, strings.Join(Formats(), ", "))
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Table is the data handed to an encoder.
type Table struct {
	// Title is used by the HTML document; other formats ignore it.
	Title   string
	Columns []string
	Rows    []*record.Row
}

// Encode renders t in format f.
func Encode(f Format, t Table) ([]byte, error) {
	switch f {
	case FormatCSV:
		return []byte(CSV(t.Columns, t.Rows)), nil
	case FormatJSON:
		return JSON(t)
	case FormatYAML:
		return YAML(t)
	case FormatTOML:
		return TOML(t)
	case FormatMarkdown:
		return []byte(Markdown(t.Columns, t.Rows)), nil
	case FormatHTML:
		return HTML(t), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// Write encodes t to w.
func Write(w io.Writer, f Format, t Table) error {
	b, err := Encode(f, t)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// FileName derives the export file name from the input file: the base name
// with its last extension replaced. An empty input yields "table".
func FileName(input string, f Format) string {
	base := filepath.Base(input)
	if input == "" || base == "." || base == string(filepath.Separator) || base == "-" {
		base = "table"
	} else if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + f.Extension()
}
