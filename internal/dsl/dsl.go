// Package dsl provides the ergonomic constructors for FQL expressions.
//
// Builders accept plain Go values wherever a literal is allowed:
//
//	dsl.Or(
//		dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "es"),
//		dsl.Gt(dsl.Attr(dsl.Rel("salary"), "amount"), dsl.Var("threshold")),
//	)
//
// A value that is neither an expr.ValueExpr nor convertible by ir.FromGo is a
// programming error and panics, as does an empty relation path.
package dsl

import (
	"fmt"
	"time"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

// Lit builds a literal from a Go value.
func Lit(v any) *expr.Literal {
	val, err := ir.FromGo(v)
	if err != nil {
		panic(fmt.Sprintf("dsl: invalid literal %#v: %v", v, err))
	}
	if arr, ok := val.(ir.IRArray); ok {
		for i, elem := range arr {
			if !ir.IsPrimitive(elem) {
				panic(fmt.Sprintf("dsl: list element %d is a %s, want a primitive", i, ir.KindOf(elem)))
			}
		}
	} else if !ir.IsPrimitive(val) {
		panic(fmt.Sprintf("dsl: literal %#v is a %s", v, ir.KindOf(val)))
	}
	return &expr.Literal{Value: val}
}

// Bool builds a boolean literal, usable as a constant predicate.
func Bool(b bool) *expr.Literal { return &expr.Literal{Value: ir.IRBool(b)} }

// Null builds the null literal.
func Null() *expr.Literal { return &expr.Literal{Value: ir.IRNull{}} }

// Date builds a date literal.
func Date(year int, month time.Month, day int) *expr.Literal {
	return &expr.Literal{Value: ir.NewIRDate(year, month, day)}
}

// List builds a list literal.
func List(values ...any) *expr.Literal {
	if len(values) == 0 {
		return &expr.Literal{Value: ir.IRArray{}}
	}
	return Lit(values)
}

// Value converts v to a ValueExpr: expressions pass through, anything else
// becomes a literal.
func Value(v any) expr.ValueExpr {
	if e, ok := v.(expr.ValueExpr); ok {
		return e
	}
	return Lit(v)
}

// And builds lhs AND rhs.
func And(lhs, rhs expr.BoolExpr) *expr.And { return &expr.And{Lhs: lhs, Rhs: rhs} }

// Or builds lhs OR rhs.
func Or(lhs, rhs expr.BoolExpr) *expr.Or { return &expr.Or{Lhs: lhs, Rhs: rhs} }

// Not builds NOT e.
func Not(e expr.BoolExpr) *expr.Not { return &expr.Not{Expr: e} }

// All folds its operands into a left-nested And. All() is the true literal.
func All(exprs ...expr.BoolExpr) expr.BoolExpr {
	if len(exprs) == 0 {
		return Bool(true)
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = And(out, e)
	}
	return out
}

// Any folds its operands into a left-nested Or. Any() is the false literal.
func Any(exprs ...expr.BoolExpr) expr.BoolExpr {
	if len(exprs) == 0 {
		return Bool(false)
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = Or(out, e)
	}
	return out
}

// Eq builds lhs = rhs.
func Eq(lhs, rhs any) *expr.Eq { return &expr.Eq{Lhs: Value(lhs), Rhs: Value(rhs)} }

// IsEmpty builds lhs = null.
func IsEmpty(lhs any) *expr.Eq { return &expr.Eq{Lhs: Value(lhs), Rhs: Null()} }

// Gt builds lhs > rhs.
func Gt(lhs, rhs any) *expr.Gt { return &expr.Gt{Lhs: Value(lhs), Rhs: Value(rhs)} }

// Gte builds lhs >= rhs.
func Gte(lhs, rhs any) *expr.Gte { return &expr.Gte{Lhs: Value(lhs), Rhs: Value(rhs)} }

// Lt builds lhs < rhs.
func Lt(lhs, rhs any) *expr.Lt { return &expr.Lt{Lhs: Value(lhs), Rhs: Value(rhs)} }

// Lte builds lhs <= rhs.
func Lte(lhs, rhs any) *expr.Lte { return &expr.Lte{Lhs: Value(lhs), Rhs: Value(rhs)} }

// OneOf builds member IN set.
func OneOf(member any, set ...any) *expr.OneOf {
	return &expr.OneOf{Member: Value(member), Set: List(set...).Value.(ir.IRArray)}
}

// Contains builds a substring test.
func Contains(lhs any, substr string) *expr.Contains {
	return &expr.Contains{Lhs: Value(lhs), Rhs: substr}
}

// Matches builds a regular expression test.
func Matches(lhs any, pattern string) *expr.MatchesRegex {
	return &expr.MatchesRegex{Lhs: Value(lhs), Rhs: pattern}
}

// Self is the relation denoting the query root.
func Self() *expr.Rel { return &expr.Rel{Path: []string{expr.SelfName}} }

// Rel builds a relation path. It panics when path is empty.
func Rel(path ...string) *expr.Rel {
	if len(path) == 0 {
		panic("dsl: relation path must not be empty")
	}
	return &expr.Rel{Path: append([]string(nil), path...)}
}

// Attr builds the attribute name of target.
func Attr(target *expr.Rel, name string) *expr.Attr {
	return &expr.Attr{Target: target, Name: name}
}

// Prop is the attribute name of the root: Attr(Self(), name).
func Prop(name string) *expr.Attr { return Attr(Self(), name) }

// Var builds a variable reference.
func Var(name string) *expr.Var { return &expr.Var{Name: name} }

// Call builds an invocation of a library function.
func Call(name string, args ...any) *expr.Call {
	out := &expr.Call{Name: name, Arguments: make([]expr.Expr, len(args))}
	for i, a := range args {
		if e, ok := a.(expr.Expr); ok {
			out.Arguments[i] = e
			continue
		}
		out.Arguments[i] = Lit(a)
	}
	return out
}

// Meta attaches metadata to e. Values go through ir.FromGo and panic when
// they cannot be represented.
func Meta[E expr.Expr](e E, kv map[string]any) E {
	meta := make(ir.IRObject, len(kv))
	for k, v := range kv {
		val, err := ir.FromGo(v)
		if err != nil {
			panic(fmt.Sprintf("dsl: invalid metadata %q: %v", k, err))
		}
		meta[k] = val
	}
	return expr.WithMeta(e, meta)
}
