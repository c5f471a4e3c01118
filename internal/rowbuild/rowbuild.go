// Package rowbuild turns detected record elements into display rows and
// synthesises the derived grouping-key, classification-code and message
// fields.
package rowbuild

import (
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/xmltab/internal/flatten"
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

// Fields names the derived fields and where their values come from.
type Fields struct {
	// GroupKey is the synthesised grouping-key field.
	GroupKey string `yaml:"group_key" json:"group_key" toml:"group_key"`
	// GroupKeySource is the element (or attribute) name holding the grouping
	// identifier.
	GroupKeySource string `yaml:"group_key_source" json:"group_key_source" toml:"group_key_source"`
	// Message is the synthesised human-readable message field.
	Message string `yaml:"message" json:"message" toml:"message"`
	// MessageKeys are tried in order; the first non-empty value wins.
	MessageKeys []string `yaml:"message_keys" json:"message_keys" toml:"message_keys"`
	// CodeField receives the classification code set when CodeKeys are all absent.
	CodeField string `yaml:"code_field" json:"code_field" toml:"code_field"`
	// CodeKeys are the row keys that already carry the code set.
	CodeKeys []string `yaml:"code_keys" json:"code_keys" toml:"code_keys"`
	// CodeParents are parent element names searched, in order, for CodeChild.
	CodeParents []string `yaml:"code_parents" json:"code_parents" toml:"code_parents"`
	CodeChild   string   `yaml:"code_child" json:"code_child" toml:"code_child"`
}

// DefaultFields returns the field names used by error/validation reports.
func DefaultFields() Fields {
	return Fields{
		GroupKey:       "BL",
		GroupKeySource: "TrnspCtrId",
		Message:        "ErrorMessage",
		MessageKeys: []string{
			"TxtPT",
			"TxtEN",
			"ErrTxtDoc.TxtPT",
			"ErrTxtDoc.TxtEN",
			"ErrTxtHdr.TxtPT",
			"ErrTxtHdr.TxtEN",
		},
		CodeField:   "AppErrInfDoc.CodeLstId",
		CodeKeys:    []string{"AppErrInfDoc.CodeLstId", "AppErrInfHdr.CodeLstId"},
		CodeParents: []string{"AppErrInfDoc", "AppErrInfHdr"},
		CodeChild:   "CodeLstId",
	}
}

// Stats counts derived values produced by a Build call.
type Stats struct {
	Rows         int
	GroupKeys    int
	GroupAliased int
	CodeSets     int
	Messages     int
}

// Builder flattens records and adds derived fields.
type Builder struct {
	fields Fields
	log    logr.Logger
	stats  Stats
}

// New returns a Builder. A zero logger discards output.
func New(fields Fields, log logr.Logger) *Builder {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Builder{fields: fields, log: log}
}

// Stats returns the counters of the last Build call.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build flattens every record element into a row.
func (b *Builder) Build(records []xmldoc.Node) []*record.Row {
	b.stats = Stats{}
	rows := make([]*record.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, b.BuildRow(rec))
	}
	b.stats.Rows = len(rows)
	b.log.V(1).Info("rows built",
		"rows", b.stats.Rows,
		"groupKeys", b.stats.GroupKeys,
		"groupKeysAliased", b.stats.GroupAliased,
		"codeSets", b.stats.CodeSets,
		"messages", b.stats.Messages)
	return rows
}

// BuildRow flattens one record element and adds its derived fields.
func (b *Builder) BuildRow(rec xmldoc.Node) *record.Row {
	row := flatten.Row(rec)
	f := b.fields

	if f.Message != "" && !row.Has(f.Message) {
		msg := firstValue(row, f.MessageKeys)
		row.Set(f.Message, msg)
		if msg != "" {
			b.stats.Messages++
		}
	}

	if f.GroupKey != "" && f.GroupKeySource != "" && !row.Has(f.GroupKey) {
		if key := findKeyBySegment(row, f.GroupKeySource); key != "" {
			row.Set(f.GroupKey, row.Get(key))
			b.stats.GroupKeys++
			b.stats.GroupAliased++
		} else if v := searchUp(rec, func(n xmldoc.Node) string {
			return findTagValue(n, f.GroupKeySource)
		}); v != "" {
			row.Set(f.GroupKey, v)
			b.stats.GroupKeys++
		}
	}

	if f.CodeField != "" && f.CodeChild != "" && !hasAny(row, f.CodeKeys) {
		if v := searchUp(rec, func(n xmldoc.Node) string {
			for _, parent := range f.CodeParents {
				if v := findNestedTagValue(n, parent, f.CodeChild); v != "" {
					return v
				}
			}
			return ""
		}); v != "" {
			row.Set(f.CodeField, v)
			b.stats.CodeSets++
		}
	}

	return row
}

func firstValue(row *record.Row, keys []string) string {
	for _, k := range keys {
		if v := row.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func hasAny(row *record.Row, keys []string) bool {
	for _, k := range keys {
		if row.Has(k) {
			return true
		}
	}
	return false
}

// findKeyBySegment returns the first key whose last "."-separated segment,
// without a leading attribute marker, equals name case-insensitively. Only
// record-root attributes ("@Id") lose their marker; "Child@Id" never matches.
func findKeyBySegment(row *record.Row, name string) string {
	for _, key := range row.Keys() {
		last := key[strings.LastIndex(key, ".")+1:]
		last = strings.TrimPrefix(last, "@")
		if strings.EqualFold(last, name) {
			return key
		}
	}
	return ""
}

// searchUp runs find on n and then on each ancestor up to the document root,
// returning the first non-empty result.
func searchUp(n xmldoc.Node, find func(xmldoc.Node) string) string {
	for cur := n; cur != nil; cur = cur.Parent() {
		if v := find(cur); v != "" {
			return v
		}
	}
	return ""
}

// findTagValue returns the direct text of the first element named tag in n's
// subtree (n included) that has non-empty text.
func findTagValue(n xmldoc.Node, tag string) string {
	var out string
	xmldoc.Walk(n, func(node xmldoc.Node) bool {
		if strings.EqualFold(node.LocalName(), tag) {
			if text := node.DirectText(); text != "" {
				out = text
				return false
			}
		}
		return true
	})
	return out
}

// findNestedTagValue looks for parent elements in n's subtree and returns the
// first non-empty child value found under one of them.
func findNestedTagValue(n xmldoc.Node, parent, child string) string {
	var out string
	xmldoc.Walk(n, func(node xmldoc.Node) bool {
		if strings.EqualFold(node.LocalName(), parent) {
			if v := findTagValue(node, child); v != "" {
				out = v
				return false
			}
		}
		return true
	})
	return out
}
