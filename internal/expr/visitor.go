package expr

import (
	"errors"
	"fmt"
)

// ErrNilExpr is returned by Walk for a nil node.
var ErrNilExpr = errors.New("nil expression")

// Visitor has one method per node kind. Every backend implements it, so the
// compiler rejects a backend that misses a kind.
type Visitor[R any] interface {
	VisitLiteral(*Literal) (R, error)
	VisitAnd(*And) (R, error)
	VisitOr(*Or) (R, error)
	VisitNot(*Not) (R, error)
	VisitEq(*Eq) (R, error)
	VisitGt(*Gt) (R, error)
	VisitGte(*Gte) (R, error)
	VisitLt(*Lt) (R, error)
	VisitLte(*Lte) (R, error)
	VisitOneOf(*OneOf) (R, error)
	VisitContains(*Contains) (R, error)
	VisitMatchesRegex(*MatchesRegex) (R, error)
	VisitRel(*Rel) (R, error)
	VisitAttr(*Attr) (R, error)
	VisitVar(*Var) (R, error)
	VisitCall(*Call) (R, error)
}

// Walk dispatches e to the matching Visitor method.
//
// Typed nil pointers are reported as ErrNilExpr, same as a nil interface.
func Walk[R any](v Visitor[R], e Expr) (R, error) {
	var zero R
	if isNil(e) {
		return zero, ErrNilExpr
	}

	switch n := e.(type) {
	case *Literal:
		return v.VisitLiteral(n)
	case *And:
		return v.VisitAnd(n)
	case *Or:
		return v.VisitOr(n)
	case *Not:
		return v.VisitNot(n)
	case *Eq:
		return v.VisitEq(n)
	case *Gt:
		return v.VisitGt(n)
	case *Gte:
		return v.VisitGte(n)
	case *Lt:
		return v.VisitLt(n)
	case *Lte:
		return v.VisitLte(n)
	case *OneOf:
		return v.VisitOneOf(n)
	case *Contains:
		return v.VisitContains(n)
	case *MatchesRegex:
		return v.VisitMatchesRegex(n)
	case *Rel:
		return v.VisitRel(n)
	case *Attr:
		return v.VisitAttr(n)
	case *Var:
		return v.VisitVar(n)
	case *Call:
		return v.VisitCall(n)
	default:
		// Unreachable while Expr stays sealed.
		return zero, fmt.Errorf("unknown expression type %T", e)
	}
}

func isNil(e Expr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *Literal:
		return n == nil
	case *And:
		return n == nil
	case *Or:
		return n == nil
	case *Not:
		return n == nil
	case *Eq:
		return n == nil
	case *Gt:
		return n == nil
	case *Gte:
		return n == nil
	case *Lt:
		return n == nil
	case *Lte:
		return n == nil
	case *OneOf:
		return n == nil
	case *Contains:
		return n == nil
	case *MatchesRegex:
		return n == nil
	case *Rel:
		return n == nil
	case *Attr:
		return n == nil
	case *Var:
		return n == nil
	case *Call:
		return n == nil
	}
	return false
}

// Children returns the direct sub-expressions of e in field order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *And:
		return []Expr{n.Lhs, n.Rhs}
	case *Or:
		return []Expr{n.Lhs, n.Rhs}
	case *Not:
		return []Expr{n.Expr}
	case *Eq:
		return []Expr{n.Lhs, n.Rhs}
	case *Gt:
		return []Expr{n.Lhs, n.Rhs}
	case *Gte:
		return []Expr{n.Lhs, n.Rhs}
	case *Lt:
		return []Expr{n.Lhs, n.Rhs}
	case *Lte:
		return []Expr{n.Lhs, n.Rhs}
	case *OneOf:
		return []Expr{n.Member}
	case *Contains:
		return []Expr{n.Lhs}
	case *MatchesRegex:
		return []Expr{n.Lhs}
	case *Attr:
		return []Expr{n.Target}
	case *Call:
		return n.Arguments
	}
	return nil
}

// Inspect visits e depth-first, calling fn for every node. When fn returns
// false the children of that node are skipped.
func Inspect(e Expr, fn func(Expr) bool) {
	if isNil(e) || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Inspect(child, fn)
	}
}

// VarNames returns the distinct variable names referenced by e, in order of
// first appearance. Calls are not expanded.
func VarNames(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(e, func(n Expr) bool {
		if v, ok := n.(*Var); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
		return true
	})
	return names
}
