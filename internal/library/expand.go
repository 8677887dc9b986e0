package library

import (
	"fmt"
	"log/slog"

	"github.com/roach88/fql/internal/expr"
)

// MaxExpansionDepth bounds how many calls may expand inside one another.
const MaxExpansionDepth = 64

// Expand returns e with every Call replaced by its expansion, recursively.
// Nodes without calls beneath them are returned as is, so the result shares
// every untouched subtree with e.
//
// A call in a boolean position must expand to a boolean expression, and a
// call in a value position to a value expression.
func (l *Library) Expand(e expr.Expr) (expr.Expr, error) {
	return expr.Walk[expr.Expr](&expander{lib: l}, e)
}

// ExpandBool is Expand for a boolean root.
func (l *Library) ExpandBool(e expr.BoolExpr) (expr.BoolExpr, error) {
	out, err := l.Expand(e)
	if err != nil {
		return nil, err
	}
	return asBool(out, "root")
}

type expander struct {
	lib   *Library
	depth int
}

func (x *expander) bool(e expr.BoolExpr) (expr.BoolExpr, error) {
	out, err := expr.Walk[expr.Expr](x, e)
	if err != nil {
		return nil, err
	}
	return asBool(out, describe(e))
}

func (x *expander) value(e expr.ValueExpr) (expr.ValueExpr, error) {
	out, err := expr.Walk[expr.Expr](x, e)
	if err != nil {
		return nil, err
	}
	v, ok := out.(expr.ValueExpr)
	if !ok {
		return nil, fmt.Errorf("%s expanded to %s, which is not a value expression", describe(e), out.Kind())
	}
	return v, nil
}

// optionalValue expands a value that may be absent (Eq's rhs).
func (x *expander) optionalValue(e expr.ValueExpr) (expr.ValueExpr, error) {
	if e == nil {
		return nil, nil
	}
	return x.value(e)
}

func describe(e expr.Expr) string {
	if c, ok := e.(*expr.Call); ok {
		return "call " + c.Name
	}
	return string(e.Kind())
}

func asBool(out expr.Expr, position string) (expr.BoolExpr, error) {
	b, ok := out.(expr.BoolExpr)
	if !ok {
		return nil, fmt.Errorf("%s expanded to %s, which is not a boolean expression", position, out.Kind())
	}
	return b, nil
}

func (x *expander) VisitLiteral(n *expr.Literal) (expr.Expr, error) { return n, nil }
func (x *expander) VisitRel(n *expr.Rel) (expr.Expr, error)         { return n, nil }
func (x *expander) VisitAttr(n *expr.Attr) (expr.Expr, error)       { return n, nil }
func (x *expander) VisitVar(n *expr.Var) (expr.Expr, error)         { return n, nil }

func (x *expander) VisitAnd(n *expr.And) (expr.Expr, error) {
	lhs, rhs, err := x.pair(n.Lhs, n.Rhs)
	if err != nil {
		return nil, err
	}
	if lhs == n.Lhs && rhs == n.Rhs {
		return n, nil
	}
	return &expr.And{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitOr(n *expr.Or) (expr.Expr, error) {
	lhs, rhs, err := x.pair(n.Lhs, n.Rhs)
	if err != nil {
		return nil, err
	}
	if lhs == n.Lhs && rhs == n.Rhs {
		return n, nil
	}
	return &expr.Or{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) pair(l, r expr.BoolExpr) (expr.BoolExpr, expr.BoolExpr, error) {
	lhs, err := x.bool(l)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := x.bool(r)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func (x *expander) VisitNot(n *expr.Not) (expr.Expr, error) {
	inner, err := x.bool(n.Expr)
	if err != nil {
		return nil, err
	}
	if inner == n.Expr {
		return n, nil
	}
	return &expr.Not{Expr: inner, Meta: n.Meta}, nil
}

func (x *expander) operands(l, r expr.ValueExpr) (expr.ValueExpr, expr.ValueExpr, bool, error) {
	lhs, err := x.value(l)
	if err != nil {
		return nil, nil, false, err
	}
	rhs, err := x.optionalValue(r)
	if err != nil {
		return nil, nil, false, err
	}
	return lhs, rhs, lhs != l || rhs != r, nil
}

func (x *expander) VisitEq(n *expr.Eq) (expr.Expr, error) {
	lhs, rhs, changed, err := x.operands(n.Lhs, n.Rhs)
	if err != nil || !changed {
		return n, err
	}
	return &expr.Eq{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitGt(n *expr.Gt) (expr.Expr, error) {
	lhs, rhs, changed, err := x.operands(n.Lhs, n.Rhs)
	if err != nil || !changed {
		return n, err
	}
	return &expr.Gt{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitGte(n *expr.Gte) (expr.Expr, error) {
	lhs, rhs, changed, err := x.operands(n.Lhs, n.Rhs)
	if err != nil || !changed {
		return n, err
	}
	return &expr.Gte{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitLt(n *expr.Lt) (expr.Expr, error) {
	lhs, rhs, changed, err := x.operands(n.Lhs, n.Rhs)
	if err != nil || !changed {
		return n, err
	}
	return &expr.Lt{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitLte(n *expr.Lte) (expr.Expr, error) {
	lhs, rhs, changed, err := x.operands(n.Lhs, n.Rhs)
	if err != nil || !changed {
		return n, err
	}
	return &expr.Lte{Lhs: lhs, Rhs: rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitOneOf(n *expr.OneOf) (expr.Expr, error) {
	member, err := x.value(n.Member)
	if err != nil || member == n.Member {
		return n, err
	}
	return &expr.OneOf{Member: member, Set: n.Set, Meta: n.Meta}, nil
}

func (x *expander) VisitContains(n *expr.Contains) (expr.Expr, error) {
	lhs, err := x.value(n.Lhs)
	if err != nil || lhs == n.Lhs {
		return n, err
	}
	return &expr.Contains{Lhs: lhs, Rhs: n.Rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitMatchesRegex(n *expr.MatchesRegex) (expr.Expr, error) {
	lhs, err := x.value(n.Lhs)
	if err != nil || lhs == n.Lhs {
		return n, err
	}
	return &expr.MatchesRegex{Lhs: lhs, Rhs: n.Rhs, Meta: n.Meta}, nil
}

func (x *expander) VisitCall(n *expr.Call) (expr.Expr, error) {
	if x.depth >= MaxExpansionDepth {
		return nil, &ExpansionError{Name: n.Name, Err: fmt.Errorf("%w (%d)", ErrExpansionDepth, MaxExpansionDepth)}
	}

	out, err := x.lib.Call(n.Name, n.Arguments)
	if err != nil {
		return nil, err
	}
	slog.Debug("call expanded", "name", n.Name, "depth", x.depth, "kind", out.Kind())

	x.depth++
	defer func() { x.depth-- }()
	return expr.Walk[expr.Expr](x, out)
}
