// Package validation checks FQL expressions against a schema.
//
// Unlike the compilers, validation never stops at the first problem: every
// unresolved association, unknown attribute and failed call expansion is
// reported, so one pass surfaces everything wrong with an expression.
package validation

import (
	"errors"
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/library"
	"github.com/roach88/fql/internal/schema"
)

// Result lists the problems found. It is valid when Errors is empty.
type Result struct {
	Errors []string `json:"errors"`
}

// Valid reports whether no errors were found.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Validator checks expressions against one schema and library.
type Validator struct {
	provider schema.Provider
	lib      *library.Library
}

// New creates a Validator. A nil lib is treated as library.Empty().
func New(provider schema.Provider, lib *library.Library) *Validator {
	if lib == nil {
		lib = library.Empty()
	}
	return &Validator{provider: provider, lib: lib}
}

// Validate is New(provider, lib).Validate(model, e).
func Validate(provider schema.Provider, model string, e expr.Expr, lib *library.Library) Result {
	return New(provider, lib).Validate(model, e)
}

// Validate checks e as a boolean expression rooted at model.
func (v *Validator) Validate(model string, e expr.Expr) Result {
	root, err := v.provider.Model(model)
	if err != nil {
		return Result{Errors: []string{err.Error()}}
	}

	w := &walker{Validator: v, root: root, errors: []string{}}
	if _, ok := e.(expr.BoolExpr); e != nil && !ok {
		w.fail("expression is %s, which is not a boolean expression", e.Kind())
	}
	w.walk(e, positionBool)
	return Result{Errors: w.errors}
}

type position int

const (
	positionBool position = iota
	positionValue
)

// walker resolves relation paths to models; every other node resolves to
// nil. Visit methods never fail, problems are appended to errors.
type walker struct {
	*Validator
	root   *schema.Model
	errors []string
	want   position
	depth  int
}

func (w *walker) fail(format string, args ...any) {
	w.errors = append(w.errors, fmt.Sprintf(format, args...))
}

func (w *walker) walk(e expr.Expr, want position) *schema.Model {
	saved := w.want
	w.want = want
	defer func() { w.want = saved }()

	m, err := expr.Walk[*schema.Model](w, e)
	if err != nil {
		w.fail("%v", err)
	}
	return m
}

func (w *walker) values(exprs ...expr.ValueExpr) {
	for _, e := range exprs {
		w.walk(e, positionValue)
	}
}

func (w *walker) VisitLiteral(*expr.Literal) (*schema.Model, error) { return nil, nil }
func (w *walker) VisitVar(*expr.Var) (*schema.Model, error)         { return nil, nil }

func (w *walker) VisitAnd(n *expr.And) (*schema.Model, error) {
	w.walk(n.Lhs, positionBool)
	w.walk(n.Rhs, positionBool)
	return nil, nil
}

func (w *walker) VisitOr(n *expr.Or) (*schema.Model, error) {
	w.walk(n.Lhs, positionBool)
	w.walk(n.Rhs, positionBool)
	return nil, nil
}

func (w *walker) VisitNot(n *expr.Not) (*schema.Model, error) {
	w.walk(n.Expr, positionBool)
	return nil, nil
}

func (w *walker) VisitEq(n *expr.Eq) (*schema.Model, error) {
	w.values(n.Lhs)
	if n.Rhs != nil {
		w.values(n.Rhs)
	}
	return nil, nil
}

func (w *walker) VisitGt(n *expr.Gt) (*schema.Model, error) {
	w.values(n.Lhs, n.Rhs)
	return nil, nil
}

func (w *walker) VisitGte(n *expr.Gte) (*schema.Model, error) {
	w.values(n.Lhs, n.Rhs)
	return nil, nil
}

func (w *walker) VisitLt(n *expr.Lt) (*schema.Model, error) {
	w.values(n.Lhs, n.Rhs)
	return nil, nil
}

func (w *walker) VisitLte(n *expr.Lte) (*schema.Model, error) {
	w.values(n.Lhs, n.Rhs)
	return nil, nil
}

func (w *walker) VisitOneOf(n *expr.OneOf) (*schema.Model, error) {
	w.values(n.Member)
	return nil, nil
}

func (w *walker) VisitContains(n *expr.Contains) (*schema.Model, error) {
	w.values(n.Lhs)
	return nil, nil
}

func (w *walker) VisitMatchesRegex(n *expr.MatchesRegex) (*schema.Model, error) {
	w.values(n.Lhs)
	return nil, nil
}

// VisitRel follows the path from the root. The first segment that does not
// resolve is reported and the rest of the path is skipped.
func (w *walker) VisitRel(n *expr.Rel) (*schema.Model, error) {
	if n.IsSelf() {
		return w.root, nil
	}
	current := w.root
	for _, segment := range n.Path {
		assoc, err := w.provider.Association(current.Name, segment)
		if errors.Is(err, schema.ErrNoSuchAssociation) {
			w.fail("model %s has no association %s", current.Name, segment)
			return nil, nil
		}
		if err != nil {
			w.fail("%v", err)
			return nil, nil
		}
		next, err := w.provider.Model(assoc.Model)
		if err != nil {
			w.fail("%v", err)
			return nil, nil
		}
		current = next
	}
	return current, nil
}

func (w *walker) VisitAttr(n *expr.Attr) (*schema.Model, error) {
	if n.Target == nil {
		w.fail("attribute %s has no target", n.Name)
		return nil, nil
	}
	target := w.walk(n.Target, positionValue)
	if target != nil && !target.HasColumn(n.Name) {
		w.fail("%s does not contain attribute %s", target.Name, n.Name)
	}
	return nil, nil
}

func (w *walker) VisitCall(n *expr.Call) (*schema.Model, error) {
	if w.depth >= library.MaxExpansionDepth {
		w.fail("cannot expand call %s: %v (%d)", n.Name, library.ErrExpansionDepth, library.MaxExpansionDepth)
		return nil, nil
	}
	out, err := w.lib.Call(n.Name, n.Arguments)
	if err != nil {
		w.fail("cannot expand call %s: %v", n.Name, err)
		return nil, nil
	}

	switch w.want {
	case positionBool:
		if _, ok := out.(expr.BoolExpr); !ok {
			w.fail("call %s expanded to %s, which is not a boolean expression", n.Name, out.Kind())
			return nil, nil
		}
	case positionValue:
		if _, ok := out.(expr.ValueExpr); !ok {
			w.fail("call %s expanded to %s, which is not a value expression", n.Name, out.Kind())
			return nil, nil
		}
	}

	w.depth++
	defer func() { w.depth-- }()
	return w.walk(out, w.want), nil
}
