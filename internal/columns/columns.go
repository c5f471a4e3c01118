// Package columns derives the visible column set and order from built rows.
package columns

import (
	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Policy controls which columns are hidden and which are pulled to the front.
type Policy struct {
	// Hidden keys are never shown.
	Hidden []string `yaml:"hidden" json:"hidden" toml:"hidden"`
	// Priority keys are moved to the front in this order. They also form the
	// simple view.
	Priority []string `yaml:"priority" json:"priority" toml:"priority"`
}

// DefaultPolicy hides internal codes and bilingual duplicates and puts the
// grouping key and the derived message first.
func DefaultPolicy() Policy {
	return Policy{
		Hidden: []string{
			"AppErrInfDoc.ErrCodeAgy",
			"ErrPntDetailsDoc.MsgSecCode",
			"ErrPntDetailsDoc.MsgSubItmIdDoc",
			"ErrTxtDoc.RuleCode",
			"ErrTxtDoc.TxtPT",
			"ErrTxtDoc.TxtEN",
			"ErrTxtHdr.TxtPT",
			"ErrTxtHdr.TxtEN",
		},
		Priority: []string{"BL", "ErrorMessage"},
	}
}

// Plan computes the columns for rows: union of keys in first-seen order,
// hidden keys removed, priority keys first, optionally reduced to the simple
// view, and finally all-empty columns pruned. It never returns an empty set
// for a non-empty row set that has at least one key.
func Plan(rows []*record.Row, simple bool, p Policy) []string {
	cols := Prioritize(Visible(Union(rows), p), p)
	cols = Simple(cols, simple, p)
	return Prune(rows, cols, p)
}

// Union returns every key across rows in first-seen order.
func Union(rows []*record.Row) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, k := range row.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Visible drops the hidden keys.
func Visible(cols []string, p Policy) []string {
	return lo.Without(cols, p.Hidden...)
}

// Prioritize moves the present priority keys to the front in declared order,
// keeping the relative order of the rest.
func Prioritize(cols []string, p Policy) []string {
	front := lo.Filter(p.Priority, func(c string, _ int) bool {
		return lo.Contains(cols, c)
	})
	front = lo.Uniq(front)
	return append(front, lo.Without(cols, front...)...)
}

// Simple restricts cols to the priority keys when enabled. When none of them
// is present the full set is kept.
func Simple(cols []string, enabled bool, p Policy) []string {
	if !enabled {
		return cols
	}
	available := lo.Uniq(lo.Filter(p.Priority, func(c string, _ int) bool {
		return lo.Contains(cols, c)
	}))
	if len(available) == 0 {
		return cols
	}
	return available
}

// Prune removes columns that are empty in every row. If that would remove
// every column the input is returned unchanged.
func Prune(rows []*record.Row, cols []string, p Policy) []string {
	keep := lo.Filter(cols, func(c string, _ int) bool {
		return lo.SomeBy(rows, func(r *record.Row) bool {
			return r.Get(c) != ""
		})
	})
	if len(keep) == 0 {
		return cols
	}
	return Prioritize(keep, p)
}
