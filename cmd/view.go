package cmd

import (
	"strings"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/oakwood-commons/xmltab/internal/cel"
	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/pkg/record"
)

// applyFilterFlags turns repeated column=value flags into engine filters.
// Values for the same column are alternatives; "column=" selects blank
// cells.
func applyFilterFlags(eng *engine.Engine, specs []string) error {
	pol := eng.Policy()
	byColumn := make(map[string][]string)
	for _, spec := range specs {
		col, val, ok := strings.Cut(spec, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return usageErrorf("invalid --filter %q (want column=value)", spec)
		}
		if !knownColumn(eng, col) {
			return usageErrorf("unknown filter column %q", col)
		}
		byColumn[col] = append(byColumn[col], pol.Token(val))
	}
	for col, tokens := range byColumn {
		eng.SetFilter(col, lo.Uniq(tokens))
	}
	return nil
}

// applySortFlag parses "column[:asc|desc]".
func applySortFlag(eng *engine.Engine, spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	col, dir, _ := strings.Cut(spec, ":")
	d, err := engine.ParseDirection(strings.ToLower(strings.TrimSpace(dir)))
	if err != nil {
		return usageErrorf("invalid --sort %q: %v", spec, err)
	}
	col = strings.TrimSpace(col)
	if !knownColumn(eng, col) {
		return usageErrorf("unknown sort column %q", col)
	}
	eng.SetSort(col, d)
	return nil
}

// applyWhereFlag compiles a CEL expression into the engine's row predicate.
func applyWhereFlag(eng *engine.Engine, expr string, log logr.Logger) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	ev, err := cel.NewEvaluator()
	if err != nil {
		return runError(err)
	}
	pred, err := ev.Compile(expr)
	if err != nil {
		return usageErrorf("invalid --where expression: %v", err)
	}
	pol := eng.Policy()
	eng.SetPredicate(pred.Func(cel.Binding{
		Columns:  eng.Columns(),
		Codes:    func(r *record.Row) []string { return engine.CodeSet(r, pol.CodeKeys) },
		GroupKey: pol.GroupKey,
	}, log))
	return nil
}

// knownColumn reports whether col is shown or present in any loaded row.
func knownColumn(eng *engine.Engine, col string) bool {
	if lo.Contains(eng.Columns(), col) {
		return true
	}
	return lo.ContainsBy(eng.State().Rows, func(r *record.Row) bool { return r.Has(col) })
}
