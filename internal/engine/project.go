package engine

import (
	"fmt"
	"slices"

	"github.com/oakwood-commons/xmltab/internal/columns"
	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Defaults used when a Policy leaves a label empty.
const (
	DefaultNoKeyLabel = "(no key)"
	DefaultEmptyToken = "__EMPTY__"
	DefaultEmptyLabel = "(Empty)"
)

// Policy carries the dataset-independent knobs of a projection.
type Policy struct {
	// GroupKey is the field rows are grouped by.
	GroupKey string
	// CodeKeys are searched in order for a row's classification codes.
	CodeKeys []string
	Status   StatusPolicy
	Columns  columns.Policy
	// NoKeyLabel names the bucket for rows with a blank group key.
	NoKeyLabel string
	// EmptyToken is the filter value standing for a blank cell.
	EmptyToken string
	// EmptyLabel is how EmptyToken is shown to users.
	EmptyLabel string
}

// DefaultPolicy groups by BL and reads codes from the document-level then the
// header-level code field.
func DefaultPolicy() Policy {
	return Policy{
		GroupKey:   "BL",
		CodeKeys:   []string{"AppErrInfDoc.CodeLstId", "AppErrInfHdr.CodeLstId"},
		Status:     DefaultStatusPolicy(),
		Columns:    columns.DefaultPolicy(),
		NoKeyLabel: DefaultNoKeyLabel,
		EmptyToken: DefaultEmptyToken,
		EmptyLabel: DefaultEmptyLabel,
	}
}

func (p Policy) noKeyLabel() string {
	if p.NoKeyLabel == "" {
		return DefaultNoKeyLabel
	}
	return p.NoKeyLabel
}

func (p Policy) emptyToken() string {
	if p.EmptyToken == "" {
		return DefaultEmptyToken
	}
	return p.EmptyToken
}

// Token returns the filter token for a cell value.
func (p Policy) Token(value string) string {
	if value == "" {
		return p.emptyToken()
	}
	return value
}

// Label returns the user-facing label for a filter token.
func (p Policy) Label(token string) string {
	if token == p.emptyToken() {
		if p.EmptyLabel == "" {
			return DefaultEmptyLabel
		}
		return p.EmptyLabel
	}
	return token
}

// Group is one bucket of a grouped projection.
type Group struct {
	Key       string
	Rows      []*record.Row
	Collapsed bool
	Done      bool
}

// Summary reports aggregate figures of a projection.
type Summary struct {
	// GroupKey is the field counted by Keys.
	GroupKey string
	// Keys is the number of distinct non-empty group keys in Visible.
	Keys int
	// Visible is the number of rows that passed suppression and filters.
	Visible int
	// Original is the number of rows loaded.
	Original int
}

// String renders the selection line, e.g. "Selected BLs: 3".
func (s Summary) String() string {
	return fmt.Sprintf("Selected %ss: %d", s.GroupKey, s.Keys)
}

// Projection is the derived, render-ready view of a ViewState.
type Projection struct {
	Columns []string
	// Visible holds the rows after suppression and filters, in load order.
	Visible []*record.Row
	// Rows holds Visible sorted, when grouping is off.
	Rows []*record.Row
	// Groups holds the grouped rows, when grouping is on.
	Groups  []Group
	Grouped bool
	Summary Summary
}

// GroupHeader renders the header line of a group, e.g. "BL: X".
func GroupHeader(p Policy, g Group) string {
	return fmt.Sprintf("%s: %s", p.GroupKey, g.Key)
}

// GroupCount renders the row count of a group, e.g. "2 Message(s)".
func GroupCount(g Group) string {
	return fmt.Sprintf("%d Message(s)", len(g.Rows))
}

// Project derives the view of s under p. It does not modify s.
func Project(s ViewState, p Policy) Projection {
	return project(s, p, NewComparer())
}

func project(s ViewState, p Policy, c *Comparer) Projection {
	base := suppress(s, p)
	visible := applyFilters(base, s, p)

	out := Projection{
		Columns: s.Columns,
		Visible: visible,
		Grouped: s.Grouping,
		Summary: Summary{
			GroupKey: p.GroupKey,
			Keys:     countKeys(visible, p.GroupKey),
			Visible:  len(visible),
			Original: s.OriginalCount,
		},
	}

	if !s.Grouping {
		out.Rows = sortRows(visible, s.Sort, c)
		return out
	}

	groups := groupRows(visible, s, p)
	switch {
	case s.Sort.Column == "":
	case s.Sort.Column == p.GroupKey:
		slices.SortStableFunc(groups, func(a, b Group) int {
			return s.Sort.Direction.apply(c.Compare(a.Key, b.Key))
		})
	default:
		for i := range groups {
			groups[i].Rows = sortRows(groups[i].Rows, s.Sort, c)
		}
	}
	out.Groups = groups
	return out
}

func suppress(s ViewState, p Policy) []*record.Row {
	if !s.SuppressResolved {
		return s.Rows
	}
	out := make([]*record.Row, 0, len(s.Rows))
	for _, row := range s.Rows {
		if p.Status.Keep(CodeSet(row, p.CodeKeys)) {
			out = append(out, row)
		}
	}
	return out
}

func applyFilters(rows []*record.Row, s ViewState, p Policy) []*record.Row {
	active := make(map[string]map[string]struct{}, len(s.Filters))
	for col, set := range s.Filters {
		if len(set) > 0 {
			active[col] = set
		}
	}
	if len(active) == 0 && s.Predicate == nil {
		return rows
	}
	out := make([]*record.Row, 0, len(rows))
	for _, row := range rows {
		if matchFilters(row, active, p) && (s.Predicate == nil || s.Predicate(row)) {
			out = append(out, row)
		}
	}
	return out
}

func matchFilters(row *record.Row, active map[string]map[string]struct{}, p Policy) bool {
	for col, set := range active {
		if _, ok := set[p.Token(row.Get(col))]; !ok {
			return false
		}
	}
	return true
}

func groupRows(rows []*record.Row, s ViewState, p Policy) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, row := range rows {
		key := row.Get(p.GroupKey)
		if key == "" {
			key = p.noKeyLabel()
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:       key,
				Collapsed: s.IsCollapsed(key),
				Done:      s.Done[key],
			})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

func sortRows(rows []*record.Row, spec SortSpec, c *Comparer) []*record.Row {
	if spec.Column == "" {
		return rows
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b *record.Row) int {
		return spec.Direction.apply(c.Compare(a.Get(spec.Column), b.Get(spec.Column)))
	})
	return out
}

func countKeys(rows []*record.Row, key string) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if v := row.Get(key); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
