// Package flatten converts one element subtree into a single flat record of
// path-qualified keys.
//
// Keys join local element names from the record root with ".", attributes are
// marked with "@" (for example "Parent.Child@attr"), and text found next to
// child elements is keyed with a "_text" segment. A key that occurs more than
// once keeps every value in encounter order.
package flatten

import (
	"github.com/oakwood-commons/xmltab/pkg/record"
	"github.com/oakwood-commons/xmltab/pkg/xmldoc"
)

const (
	attrMarker = "@"
	pathSep    = "."
	mixedText  = "_text"
)

// Kind tags a Value as holding one string or several.
type Kind int

const (
	Scalar Kind = iota
	Multi
)

// Value is the slot stored for one key.
type Value struct {
	Kind   Kind
	Scalar string
	Multi  []string
}

// Strings returns every value held by the slot.
func (v Value) Strings() []string {
	if v.Kind == Multi {
		return v.Multi
	}
	return []string{v.Scalar}
}

// String collapses the slot to its display form.
func (v Value) String() string {
	if v.Kind == Multi {
		return record.JoinMulti(v.Multi)
	}
	return v.Scalar
}

// Record is the ordered output of Flatten.
type Record struct {
	keys   []string
	values map[string]*Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]*Value)}
}

// Add stores value under key. The first occurrence is a scalar, the second
// turns the slot into a two element list and later ones append.
func (r *Record) Add(key, value string) {
	slot, ok := r.values[key]
	if !ok {
		r.keys = append(r.keys, key)
		r.values[key] = &Value{Kind: Scalar, Scalar: value}
		return
	}
	if slot.Kind == Scalar {
		slot.Kind = Multi
		slot.Multi = []string{slot.Scalar, value}
		slot.Scalar = ""
		return
	}
	slot.Multi = append(slot.Multi, value)
}

// Keys returns the keys in first-seen order.
func (r *Record) Keys() []string {
	return r.keys
}

// Value returns the slot for key.
func (r *Record) Value(key string) (Value, bool) {
	v, ok := r.values[key]
	if !ok {
		return Value{}, false
	}
	return *v, true
}

// Normalize collapses every slot to a display string.
func (r *Record) Normalize() *record.Row {
	row := record.NewRow(len(r.keys))
	for _, k := range r.keys {
		row.Set(k, r.values[k].String())
	}
	return row
}

// Flatten flattens el and its subtree into a new record.
func Flatten(el xmldoc.Node) *Record {
	out := NewRecord()
	flattenInto(el, "", out)
	return out
}

// Row is Flatten followed by Normalize.
func Row(el xmldoc.Node) *record.Row {
	return Flatten(el).Normalize()
}

func flattenInto(el xmldoc.Node, prefix string, out *Record) {
	for _, attr := range el.Attrs() {
		out.Add(prefix+attrMarker+attr.Name, attr.Value)
	}

	children := el.Children()
	if len(children) == 0 {
		if text := el.DirectText(); text != "" {
			key := prefix
			if key == "" {
				key = el.LocalName()
			}
			out.Add(key, text)
		}
		return
	}

	for _, child := range children {
		flattenInto(child, join(prefix, child.LocalName()), out)
	}

	if text := el.DirectText(); text != "" {
		out.Add(join(prefix, mixedText), text)
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + pathSep + name
}
