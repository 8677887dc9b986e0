package library

import (
	"fmt"
	"regexp"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

// Standard returns a new library preloaded with the built-in macros:
//
//	between(x, lo, hi)      x >= lo AND x <= hi
//	present(x)              NOT (x = null)
//	blank(x)                x = null OR x = ""
//	not_one_of(x, list)     NOT (x IN list)
//	starts_with(x, prefix)  x matches ^prefix
//	ends_with(x, suffix)    x matches suffix$
//
// The returned library is independent; registering into it does not affect
// other libraries.
func Standard() *Library {
	return New(map[string]Rule{
		"between":     between,
		"present":     present,
		"blank":       blank,
		"not_one_of":  notOneOf,
		"starts_with": startsWith,
		"ends_with":   endsWith,
	})
}

func between(args []expr.Expr) (expr.Expr, error) {
	if err := arity(args, 3); err != nil {
		return nil, err
	}
	vals, err := values(args)
	if err != nil {
		return nil, err
	}
	return &expr.And{
		Lhs: &expr.Gte{Lhs: vals[0], Rhs: vals[1]},
		Rhs: &expr.Lte{Lhs: vals[0], Rhs: vals[2]},
	}, nil
}

func present(args []expr.Expr) (expr.Expr, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	vals, err := values(args)
	if err != nil {
		return nil, err
	}
	return &expr.Not{Expr: &expr.Eq{Lhs: vals[0], Rhs: &expr.Literal{Value: ir.IRNull{}}}}, nil
}

func blank(args []expr.Expr) (expr.Expr, error) {
	if err := arity(args, 1); err != nil {
		return nil, err
	}
	vals, err := values(args)
	if err != nil {
		return nil, err
	}
	return &expr.Or{
		Lhs: &expr.Eq{Lhs: vals[0], Rhs: &expr.Literal{Value: ir.IRNull{}}},
		Rhs: &expr.Eq{Lhs: vals[0], Rhs: &expr.Literal{Value: ir.IRString("")}},
	}, nil
}

func notOneOf(args []expr.Expr) (expr.Expr, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	vals, err := values(args[:1])
	if err != nil {
		return nil, err
	}
	set, ok := expr.ListLiteral(valueOrNil(args[1]))
	if !ok {
		return nil, fmt.Errorf("argument 2 must be a list literal, got %s", args[1].Kind())
	}
	return &expr.Not{Expr: &expr.OneOf{Member: vals[0], Set: set}}, nil
}

func startsWith(args []expr.Expr) (expr.Expr, error) {
	return anchored(args, func(s string) string { return "^" + regexp.QuoteMeta(s) })
}

func endsWith(args []expr.Expr) (expr.Expr, error) {
	return anchored(args, func(s string) string { return regexp.QuoteMeta(s) + "$" })
}

func anchored(args []expr.Expr, pattern func(string) string) (expr.Expr, error) {
	if err := arity(args, 2); err != nil {
		return nil, err
	}
	vals, err := values(args[:1])
	if err != nil {
		return nil, err
	}
	lit, ok := args[1].(*expr.Literal)
	if !ok {
		return nil, fmt.Errorf("argument 2 must be a string literal, got %s", args[1].Kind())
	}
	s, ok := lit.Value.(ir.IRString)
	if !ok {
		return nil, fmt.Errorf("argument 2 must be a string literal, got %s", ir.KindOf(lit.Value))
	}
	return &expr.MatchesRegex{Lhs: vals[0], Rhs: pattern(string(s))}, nil
}

func arity(args []expr.Expr, want int) error {
	if len(args) != want {
		return fmt.Errorf("want %d arguments, got %d", want, len(args))
	}
	return nil
}

func values(args []expr.Expr) ([]expr.ValueExpr, error) {
	out := make([]expr.ValueExpr, len(args))
	for i, a := range args {
		v, ok := a.(expr.ValueExpr)
		if !ok {
			return nil, fmt.Errorf("argument %d must be a value, got %s", i+1, a.Kind())
		}
		out[i] = v
	}
	return out, nil
}

func valueOrNil(e expr.Expr) expr.ValueExpr {
	v, _ := e.(expr.ValueExpr)
	return v
}
