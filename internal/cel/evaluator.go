// Package cel compiles CEL expressions into row predicates for --where.
//
// An expression sees three variables:
//
//	row    map(string, string)  the row's fields; missing keys read as ""
//	codes  list(string)         the row's classification codes
//	key    string               the row's group key
//
// and a helper num(string) -> double that parses a field as a number
// (0 when it is not one).
package cel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/xmltab/pkg/record"
)

// Evaluator compiles CEL expressions over rows.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the row variables and the common
// extension libraries.
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newRowEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// GetEnvironment returns the CEL environment for introspection
func (e *Evaluator) GetEnvironment() *cel.Env {
	return e.env
}

func newRowEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 8+len(opts))
	allOpts = append(allOpts,
		cel.Variable("row", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("codes", cel.ListType(cel.StringType)),
		cel.Variable("key", cel.StringType),
		cel.Function("num",
			cel.Overload("num_string", []*cel.Type{cel.StringType}, cel.DoubleType,
				cel.UnaryBinding(numBinding))),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

func numBinding(v ref.Val) ref.Val {
	s, ok := v.(types.String)
	if !ok {
		return types.Double(0)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		return types.Double(0)
	}
	return types.Double(f)
}

// Predicate is a compiled boolean expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr, which must yield a bool.
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", expr, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.expr }

// Input carries one row and its derived values.
type Input struct {
	Row *record.Row
	// Columns are added to row as "" when the row lacks them.
	Columns []string
	Codes   []string
	Key     string
}

// Match evaluates the predicate for in.
func (p *Predicate) Match(in Input) (bool, error) {
	fields := in.Row.Map()
	for _, c := range in.Columns {
		if _, ok := fields[c]; !ok {
			fields[c] = ""
		}
	}
	codes := in.Codes
	if codes == nil {
		codes = []string{}
	}
	out, _, err := p.prg.Eval(map[string]any{
		"row":   fields,
		"codes": codes,
		"key":   in.Key,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %v, not bool", p.expr, out.Type())
	}
	return bool(b), nil
}

// Binding supplies the per-row inputs a predicate function needs.
type Binding struct {
	Columns  []string
	Codes    func(*record.Row) []string
	GroupKey string
}

// Func adapts p to a plain row filter. Rows whose evaluation fails are
// rejected and logged at V(1).
func (p *Predicate) Func(b Binding, log logr.Logger) func(*record.Row) bool {
	return func(row *record.Row) bool {
		in := Input{Row: row, Columns: b.Columns, Key: row.Get(b.GroupKey)}
		if b.Codes != nil {
			in.Codes = b.Codes(row)
		}
		ok, err := p.Match(in)
		if err != nil {
			log.V(1).Info("where expression failed", "expr", p.expr, "error", err.Error())
			return false
		}
		return ok
	}
}
