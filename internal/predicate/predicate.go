// Package predicate compiles FQL expressions into CEL programs that evaluate
// against in-memory object graphs.
//
// The emitted CEL text binds the root object as self and runtime variables as
// vars, so
//
//	Or(Eq(Attr(Rel("location"), "country"), "es"), Gt(Attr(Rel("salary"), "amount"), Var("threshold")))
//
// becomes
//
//	((self.location.country == "es") || (self.salary.amount > vars["threshold"]))
//
// Roots may be maps, slices, primitives, time.Time values and structs. Struct
// fields are addressed by their `fql:"name"` tag, or by the snake_case form of
// the field name.
package predicate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common"
	"github.com/google/cel-go/common/types"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/library"
)

const (
	rootVar = "self"
	varsVar = "vars"
)

var environment = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(rootVar, cel.DynType),
		cel.Variable(varsVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
})

// Program is a compiled predicate. It is immutable and safe for concurrent
// use.
type Program struct {
	source string
	prg    cel.Program
}

// CompilationError reports CEL text that failed to parse or type-check.
type CompilationError struct {
	Source string
	Err    error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compile predicate %s: %v", e.Source, e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// Compile emits e as CEL and compiles the result. A nil lib is treated as
// library.Empty().
func Compile(e expr.Expr, lib *library.Library) (*Program, error) {
	if lib == nil {
		lib = library.Empty()
	}
	source, err := expr.Walk[string](&emitter{lib: lib}, e)
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}

	env, err := environment()
	if err != nil {
		return nil, fmt.Errorf("predicate environment: %w", err)
	}
	ast, issues := env.CompileSource(common.NewStringSource(source, "predicate"))
	if issues != nil && issues.Err() != nil {
		return nil, &CompilationError{Source: source, Err: issues.Err()}
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, &CompilationError{
			Source: source,
			Err:    fmt.Errorf("expression must result in a boolean value: found `%s`", out.String()),
		}
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, &CompilationError{Source: source, Err: err}
	}

	slog.Debug("predicate compiled", "source", source)
	return &Program{source: source, prg: prg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(e expr.Expr, lib *library.Library) *Program {
	p, err := Compile(e, lib)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the CEL text the program was compiled from.
func (p *Program) Source() string { return p.source }

func (p *Program) String() string { return p.source }

// Eval runs the program with root bound to self and vars to vars.
func (p *Program) Eval(root any, vars map[string]any) (bool, error) {
	bound := make(map[string]any, len(vars))
	for k, v := range vars {
		bound[k] = normalize(v)
	}

	out, _, err := p.prg.Eval(map[string]any{
		rootVar: normalize(root),
		varsVar: bound,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %s: %w", p.source, err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("evaluate %s: result is %s, want bool", p.source, out.Type().TypeName())
	}
	return bool(b), nil
}

// Func returns Eval as a plain function value.
func (p *Program) Func() func(root any, vars map[string]any) (bool, error) {
	return p.Eval
}
