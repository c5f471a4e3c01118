package export

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// orderedRow marshals as a JSON object whose keys follow columns.
type orderedRow struct {
	columns []string
	row     *record.Row
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range o.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.row.Get(c))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON renders the rows as an indented array of objects keyed by column, in
// column order.
func JSON(t Table) ([]byte, error) {
	out := make([]orderedRow, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = orderedRow{columns: t.Columns, row: r}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// YAML renders the rows as a sequence of mappings in column order.
// Multi-line values are emitted as literal blocks.
func YAML(t Table) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, c := range t.Columns {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Get(c)},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	applyLiteralStyle(seq)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func applyLiteralStyle(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		applyLiteralStyle(c)
	}
}

type tomlDocument struct {
	Columns []string            `toml:"columns"`
	Rows    []map[string]string `toml:"rows"`
}

// TOML renders the column list and an array of row tables. TOML tables are
// unordered, so row keys come out sorted.
func TOML(t Table) ([]byte, error) {
	doc := tomlDocument{Columns: t.Columns, Rows: make([]map[string]string, len(t.Rows))}
	for i, r := range t.Rows {
		m := make(map[string]string, len(t.Columns))
		for _, c := range t.Columns {
			m[c] = r.Get(c)
		}
		doc.Rows[i] = m
	}
	return toml.Marshal(doc)
}
