// Package engine holds the table view state and derives filtered, grouped
// and sorted projections from it.
//
// An Engine is not safe for concurrent use. Callers such as the TUI mutate it
// from a single goroutine.
package engine

import (
	"fmt"
	"maps"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/internal/columns"
	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" and "desc"; "" means ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (want asc or desc)", s)
}

func (d Direction) apply(c int) int {
	if d == Desc {
		return -c
	}
	return c
}

// SortSpec names the sort column. An empty Column means no sort.
type SortSpec struct {
	Column    string
	Direction Direction
}

// ViewState is the complete, explicit state a projection is derived from.
type ViewState struct {
	Rows          []*record.Row
	Columns       []string
	OriginalCount int
	Sort          SortSpec
	Grouping      bool
	// Filters maps a column to the set of accepted tokens. An empty or
	// missing set does not restrict the column.
	Filters map[string]map[string]struct{}
	// Collapsed holds explicit collapse choices; groups default to collapsed.
	Collapsed map[string]bool
	Done      map[string]bool
	// Predicate, when set, must also accept a row for it to be visible.
	Predicate        func(*record.Row) bool
	SimpleView       bool
	SuppressResolved bool
}

// IsCollapsed reports whether the group key is collapsed.
func (s ViewState) IsCollapsed(key string) bool {
	if v, ok := s.Collapsed[key]; ok {
		return v
	}
	return true
}

// Engine owns a ViewState and applies user actions to it.
type Engine struct {
	state  ViewState
	policy Policy
	cmp    *Comparer
	log    logr.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithView sets the initial view toggles.
func WithView(simple, grouping, suppressResolved bool) Option {
	return func(e *Engine) {
		e.state.SimpleView = simple
		e.state.Grouping = grouping
		e.state.SuppressResolved = suppressResolved
	}
}

// WithComparer replaces the value comparer.
func WithComparer(c *Comparer) Option {
	return func(e *Engine) { e.cmp = c }
}

// New returns an empty engine. Grouping, simple view and resolved-row
// suppression start enabled.
func New(p Policy, opts ...Option) *Engine {
	e := &Engine{
		state: ViewState{
			Grouping:         true,
			SimpleView:       true,
			SuppressResolved: true,
		},
		policy: p,
		cmp:    NewComparer(),
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resetDerived()
	return e
}

func (e *Engine) resetDerived() {
	e.state.Sort = SortSpec{}
	e.state.Filters = make(map[string]map[string]struct{})
	e.state.Collapsed = make(map[string]bool)
	e.state.Done = make(map[string]bool)
}

// Policy returns the engine policy.
func (e *Engine) Policy() Policy { return e.policy }

// State returns a copy of the current state. The maps are shared and must
// not be modified.
func (e *Engine) State() ViewState { return e.state }

// HasData reports whether rows are loaded.
func (e *Engine) HasData() bool { return len(e.state.Rows) > 0 }

// Columns returns the current column set.
func (e *Engine) Columns() []string { return e.state.Columns }

// SetParsedData replaces the dataset and resets sort, filters, collapse and
// done state. View toggles are kept.
func (e *Engine) SetParsedData(rows []*record.Row, cols []string) {
	e.state.Rows = rows
	e.state.Columns = cols
	e.state.OriginalCount = len(rows)
	e.resetDerived()
	e.log.V(1).Info("dataset loaded", "rows", len(rows), "columns", len(cols))
}

// Clear drops the dataset.
func (e *Engine) Clear() {
	e.SetParsedData(nil, nil)
}

// SetFilter replaces the accepted tokens of column. An empty list clears it.
func (e *Engine) SetFilter(column string, tokens []string) {
	if len(tokens) == 0 {
		delete(e.state.Filters, column)
		return
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	e.state.Filters[column] = set
}

// ToggleFilterValue adds or removes one token from the filter of column.
func (e *Engine) ToggleFilterValue(column, token string) {
	set := maps.Clone(e.state.Filters[column])
	if set == nil {
		set = make(map[string]struct{})
	}
	if _, ok := set[token]; ok {
		delete(set, token)
	} else {
		set[token] = struct{}{}
	}
	e.SetFilter(column, lo.Keys(set))
}

// Filter returns the accepted tokens of column, sorted.
func (e *Engine) Filter(column string) []string {
	tokens := lo.Keys(e.state.Filters[column])
	sortStrings(tokens, e.cmp)
	return tokens
}

// ClearFilter removes the filter of column.
func (e *Engine) ClearFilter(column string) {
	delete(e.state.Filters, column)
}

// ClearFilters removes every filter.
func (e *Engine) ClearFilters() {
	e.state.Filters = make(map[string]map[string]struct{})
}

// ActiveFilters returns the number of columns with a non-empty filter.
func (e *Engine) ActiveFilters() int {
	return lo.CountBy(lo.Values(e.state.Filters), func(s map[string]struct{}) bool {
		return len(s) > 0
	})
}

// FilterSummary returns "All" for an unrestricted column, else "N selected".
func (e *Engine) FilterSummary(column string) string {
	n := len(e.state.Filters[column])
	if n == 0 {
		return "All"
	}
	return fmt.Sprintf("%d selected", n)
}

// SetPredicate installs an additional row predicate; nil removes it.
func (e *Engine) SetPredicate(fn func(*record.Row) bool) {
	e.state.Predicate = fn
}

// ToggleSort sorts by column ascending, or flips the direction when column is
// already the sort column. It does nothing without rows.
func (e *Engine) ToggleSort(column string) {
	if !e.HasData() {
		return
	}
	if e.state.Sort.Column == column {
		if e.state.Sort.Direction == Asc {
			e.state.Sort.Direction = Desc
		} else {
			e.state.Sort.Direction = Asc
		}
		return
	}
	e.state.Sort = SortSpec{Column: column, Direction: Asc}
}

// SetSort sets the sort column and direction directly.
func (e *Engine) SetSort(column string, dir Direction) {
	e.state.Sort = SortSpec{Column: column, Direction: dir}
}

// Sort returns the current sort.
func (e *Engine) Sort() SortSpec { return e.state.Sort }

// SetGroupCollapsed records the collapse state of a group key.
func (e *Engine) SetGroupCollapsed(key string, collapsed bool) {
	e.state.Collapsed[key] = collapsed
}

// ToggleGroupCollapsed flips the collapse state of a group key.
func (e *Engine) ToggleGroupCollapsed(key string) {
	e.state.Collapsed[key] = !e.state.IsCollapsed(key)
}

// SetAllCollapsed collapses or expands every group of the current dataset.
func (e *Engine) SetAllCollapsed(collapsed bool) {
	for _, g := range e.Project().Groups {
		e.state.Collapsed[g.Key] = collapsed
	}
}

// SetGroupDone marks a group key as reviewed.
func (e *Engine) SetGroupDone(key string, done bool) {
	e.state.Done[key] = done
}

// ToggleGroupDone flips the done mark of a group key.
func (e *Engine) ToggleGroupDone(key string) {
	e.state.Done[key] = !e.state.Done[key]
}

// SetGroupingEnabled turns grouping on or off.
func (e *Engine) SetGroupingEnabled(on bool) {
	e.state.Grouping = on
}

// SetSimpleView switches the simple view, clears filters and recomputes the
// columns of the loaded rows.
func (e *Engine) SetSimpleView(on bool) {
	e.state.SimpleView = on
	e.ClearFilters()
	if e.HasData() {
		e.state.Columns = columns.Plan(e.state.Rows, on, e.policy.Columns)
	}
}

// SetSuppressResolved switches resolved-row suppression and clears filters.
func (e *Engine) SetSuppressResolved(on bool) {
	e.state.SuppressResolved = on
	e.ClearFilters()
}

// Project derives the current view.
func (e *Engine) Project() Projection {
	return project(e.state, e.policy, e.cmp)
}

// VisibleRows returns the rows that pass suppression and filters in load
// order.
func (e *Engine) VisibleRows() []*record.Row {
	return applyFilters(suppress(e.state, e.policy), e.state, e.policy)
}

// UniqueValues returns the distinct filter tokens of column over the rows
// that survive suppression, ordered with Compare and the empty token last.
func (e *Engine) UniqueValues(column string) []string {
	seen := make(map[string]struct{})
	hasEmpty := false
	var values []string
	for _, row := range suppress(e.state, e.policy) {
		v := row.Get(column)
		if v == "" {
			hasEmpty = true
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sortStrings(values, e.cmp)
	if hasEmpty {
		values = append(values, e.policy.emptyToken())
	}
	return values
}

// Meta renders the status line for fileName.
func (e *Engine) Meta(fileName string) string {
	visible := len(e.VisibleRows())
	rows := fmt.Sprintf("Rows: %d", visible)
	if visible != e.state.OriginalCount {
		rows = fmt.Sprintf("Rows: %d (filtered from %d)", visible, e.state.OriginalCount)
	}
	return fmt.Sprintf("%s | Columns: %d | File: %s", rows, len(e.state.Columns), fileName)
}
