// Package record defines the flat, display-ready row shared by the row
// builder, the column planner, the table engine and the exporters.
package record

import (
	"fmt"
	"strings"
)

// Row is an insertion-ordered mapping from field key to display string.
// The zero value is ready to use.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty row with room for n fields.
func NewRow(n int) *Row {
	return &Row{
		keys:   make([]string, 0, n),
		values: make(map[string]string, n),
	}
}

// FromPairs builds a row from alternating key/value strings. It is mostly
// useful in tests.
func FromPairs(kv ...string) *Row {
	r := NewRow(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

// Set stores value under key. A new key is appended to the key order; an
// existing key keeps its position.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key, or "" when the key is absent.
func (r *Row) Get(key string) string {
	if r == nil {
		return ""
	}
	return r.values[key]
}

// Lookup returns the value for key and whether it is present.
func (r *Row) Lookup(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present, even with an empty value.
func (r *Row) Has(key string) bool {
	_, ok := r.Lookup(key)
	return ok
}

// Keys returns the field keys in insertion order. The slice must not be
// modified.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return r.keys
}

// Len returns the number of fields.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Clone returns an independent copy of the row.
func (r *Row) Clone() *Row {
	out := NewRow(r.Len())
	for _, k := range r.Keys() {
		out.Set(k, r.values[k])
	}
	return out
}

// Map returns a copy of the row as a plain map.
func (r *Row) Map() map[string]string {
	out := make(map[string]string, r.Len())
	for _, k := range r.Keys() {
		out[k] = r.values[k]
	}
	return out
}

// Values returns the values for columns in order, "" for absent keys.
func (r *Row) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = r.Get(c)
	}
	return out
}

// String renders the row for debugging.
func (r *Row) String() string {
	return fmt.Sprintf("Row%v", r.Map())
}

// Display is the single normalisation point for field values: nil becomes
// "", strings pass through, slices are joined with "; " and everything else
// is formatted with %v.
func Display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return JoinMulti(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// MultiSeparator joins repeated values of one key.
const MultiSeparator = "; "

// JoinMulti joins values with MultiSeparator.
func JoinMulti(values []string) string {
	return strings.Join(values, MultiSeparator)
}
