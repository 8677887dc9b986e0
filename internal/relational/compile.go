// Package relational compiles FQL expressions into queryir plans.
//
// Relation paths become inner joins aliased by association name, one join
// per path segment in traversal order. Repeated references to the same path
// are not merged. Calls are expanded through the library and compiled in
// place. Compilation stops at the first error.
package relational

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/library"
	"github.com/roach88/fql/internal/queryir"
	"github.com/roach88/fql/internal/schema"
)

// Compiler turns expressions into plans against one schema. It holds no
// per-compilation state and is safe for concurrent use.
type Compiler struct {
	provider schema.Provider
	lib      *library.Library
}

// New creates a Compiler. A nil lib is treated as library.Empty().
func New(provider schema.Provider, lib *library.Library) *Compiler {
	if lib == nil {
		lib = library.Empty()
	}
	return &Compiler{provider: provider, lib: lib}
}

// Compile is New(provider, lib).Compile(model, e, vars).
func Compile(provider schema.Provider, model string, e expr.Expr, vars map[string]any, lib *library.Library) (*queryir.Plan, error) {
	return New(provider, lib).Compile(model, e, vars)
}

// Compile builds the plan selecting the rows of model for which e holds.
// vars binds every Var in e; values are converted with ir.FromGo.
func (c *Compiler) Compile(model string, e expr.Expr, vars map[string]any) (*queryir.Plan, error) {
	root, err := c.provider.Model(model)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	s := &compilation{
		Compiler: c,
		root:     root,
		from:     queryir.Table{Name: root.Table},
		vars:     vars,
	}
	where, err := s.predicate(e)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", model, err)
	}

	plan := &queryir.Plan{
		From:     s.from,
		Joins:    s.joins,
		Where:    where,
		Distinct: true,
	}
	slog.Debug("plan compiled", "model", model, "table", root.Table, "joins", len(s.joins))
	return plan, nil
}

// node is what a visited expression compiles to. Exactly one of pred,
// operand or table is meaningful for a given kind; literal booleans set both
// pred and operand.
type node struct {
	pred    queryir.Predicate
	operand queryir.Operand
	model   *schema.Model
	ref     string
}

type compilation struct {
	*Compiler
	root  *schema.Model
	from  queryir.Table
	vars  map[string]any
	joins []queryir.Join
}

func (s *compilation) predicate(e expr.Expr) (queryir.Predicate, error) {
	n, err := expr.Walk[node](s, e)
	if err != nil {
		return nil, err
	}
	if n.pred == nil {
		return nil, &KindError{Kind: e.Kind(), Message: "not a boolean expression"}
	}
	return n.pred, nil
}

func (s *compilation) operand(e expr.ValueExpr) (queryir.Operand, error) {
	n, err := expr.Walk[node](s, e)
	if err != nil {
		return nil, err
	}
	if n.operand == nil {
		if n.model != nil {
			return nil, &KindError{Kind: e.Kind(), Message: "a relation is not a value, select one of its attributes"}
		}
		return nil, &KindError{Kind: e.Kind(), Message: "not a value"}
	}
	return n.operand, nil
}

// scalar is operand for positions that do not accept lists.
func (s *compilation) scalar(e expr.ValueExpr, position expr.Kind) (queryir.Operand, error) {
	o, err := s.operand(e)
	if err != nil {
		return nil, err
	}
	if _, ok := listValue(o); ok {
		return nil, &KindError{Kind: position, Message: "a list is only allowed as the right side of eq"}
	}
	return o, nil
}

func listValue(o queryir.Operand) ([]ir.IRValue, bool) {
	v, ok := o.(queryir.Value)
	if !ok {
		return nil, false
	}
	arr, ok := v.Value.(ir.IRArray)
	return arr, ok
}

func isNullValue(o queryir.Operand) bool {
	v, ok := o.(queryir.Value)
	if !ok {
		return false
	}
	_, isNull := v.Value.(ir.IRNull)
	return isNull
}

func (s *compilation) VisitLiteral(n *expr.Literal) (node, error) {
	switch v := n.Value.(type) {
	case nil:
		return node{operand: queryir.Value{Value: ir.IRNull{}}}, nil
	case ir.IRBool:
		return node{pred: &queryir.Truth{Value: bool(v)}, operand: queryir.Value{Value: v}}, nil
	default:
		return node{operand: queryir.Value{Value: v}}, nil
	}
}

func (s *compilation) VisitAnd(n *expr.And) (node, error) {
	lhs, rhs, err := s.pair(n.Lhs, n.Rhs)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.And{Lhs: lhs, Rhs: rhs}}, nil
}

func (s *compilation) VisitOr(n *expr.Or) (node, error) {
	lhs, rhs, err := s.pair(n.Lhs, n.Rhs)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.Or{Lhs: lhs, Rhs: rhs}}, nil
}

func (s *compilation) pair(l, r expr.BoolExpr) (queryir.Predicate, queryir.Predicate, error) {
	lhs, err := s.predicate(l)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := s.predicate(r)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func (s *compilation) VisitNot(n *expr.Not) (node, error) {
	inner, err := s.predicate(n.Expr)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.Not{Predicate: inner}}, nil
}

// VisitEq compiles equality. A null side becomes IsNull and a list on the
// right becomes In, so one operator serves single values and collections.
func (s *compilation) VisitEq(n *expr.Eq) (node, error) {
	lhs, err := s.scalar(n.Lhs, expr.KindEq)
	if err != nil {
		return node{}, err
	}
	if expr.IsNullLiteral(n.Rhs) {
		return node{pred: &queryir.IsNull{Operand: lhs}}, nil
	}

	rhs, err := s.operand(n.Rhs)
	if err != nil {
		return node{}, err
	}
	if values, ok := listValue(rhs); ok {
		return node{pred: &queryir.In{Operand: lhs, Values: values}}, nil
	}
	switch {
	case isNullValue(rhs):
		return node{pred: &queryir.IsNull{Operand: lhs}}, nil
	case isNullValue(lhs):
		return node{pred: &queryir.IsNull{Operand: rhs}}, nil
	}
	return node{pred: &queryir.Compare{Op: queryir.OpEq, Left: lhs, Right: rhs}}, nil
}

func (s *compilation) compare(op queryir.CompareOp, kind expr.Kind, l, r expr.ValueExpr) (node, error) {
	lhs, err := s.scalar(l, kind)
	if err != nil {
		return node{}, err
	}
	rhs, err := s.scalar(r, kind)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.Compare{Op: op, Left: lhs, Right: rhs}}, nil
}

func (s *compilation) VisitGt(n *expr.Gt) (node, error) {
	return s.compare(queryir.OpGt, expr.KindGt, n.Lhs, n.Rhs)
}

func (s *compilation) VisitGte(n *expr.Gte) (node, error) {
	return s.compare(queryir.OpGte, expr.KindGte, n.Lhs, n.Rhs)
}

func (s *compilation) VisitLt(n *expr.Lt) (node, error) {
	return s.compare(queryir.OpLt, expr.KindLt, n.Lhs, n.Rhs)
}

func (s *compilation) VisitLte(n *expr.Lte) (node, error) {
	return s.compare(queryir.OpLte, expr.KindLte, n.Lhs, n.Rhs)
}

func (s *compilation) VisitOneOf(n *expr.OneOf) (node, error) {
	member, err := s.scalar(n.Member, expr.KindOneOf)
	if err != nil {
		return node{}, err
	}
	values := make([]ir.IRValue, len(n.Set))
	copy(values, n.Set)
	return node{pred: &queryir.In{Operand: member, Values: values}}, nil
}

func (s *compilation) VisitContains(n *expr.Contains) (node, error) {
	lhs, err := s.scalar(n.Lhs, expr.KindContains)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.Like{Operand: lhs, Pattern: "%" + n.Rhs + "%"}}, nil
}

func (s *compilation) VisitMatchesRegex(n *expr.MatchesRegex) (node, error) {
	lhs, err := s.scalar(n.Lhs, expr.KindMatchesRegex)
	if err != nil {
		return node{}, err
	}
	return node{pred: &queryir.Regexp{Operand: lhs, Pattern: n.Rhs}}, nil
}

func (s *compilation) VisitRel(n *expr.Rel) (node, error) {
	model, ref, err := s.resolve(n)
	if err != nil {
		return node{}, err
	}
	return node{model: model, ref: ref}, nil
}

// resolve walks the path from the root, appending one join per segment.
func (s *compilation) resolve(r *expr.Rel) (*schema.Model, string, error) {
	model, ref := s.root, s.from.Ref()
	if r.IsSelf() {
		return model, ref, nil
	}
	if len(r.Path) == 0 {
		return nil, "", &KindError{Kind: expr.KindRel, Message: "empty relation path"}
	}

	for _, segment := range r.Path {
		assoc, err := s.provider.Association(model.Name, segment)
		if errors.Is(err, schema.ErrNoSuchAssociation) {
			return nil, "", &UnknownAssociationError{Model: model.Name, Association: segment}
		}
		if err != nil {
			return nil, "", err
		}
		child, err := s.provider.Model(assoc.Model)
		if err != nil {
			return nil, "", fmt.Errorf("association %s.%s: %w", model.Name, segment, err)
		}

		s.joins = append(s.joins, queryir.Join{
			Table:  queryir.Table{Name: child.Table, Alias: segment},
			Parent: queryir.Column{Table: ref, Name: assoc.ParentKey},
			Child:  queryir.Column{Table: segment, Name: assoc.ChildKey},
		})
		model, ref = child, segment
	}
	return model, ref, nil
}

func (s *compilation) VisitAttr(n *expr.Attr) (node, error) {
	if n.Target == nil {
		return node{}, &KindError{Kind: expr.KindAttr, Message: "missing target relation"}
	}
	_, ref, err := s.resolve(n.Target)
	if err != nil {
		return node{}, err
	}
	return node{operand: queryir.Column{Table: ref, Name: n.Name}}, nil
}

func (s *compilation) VisitVar(n *expr.Var) (node, error) {
	raw, ok := s.vars[n.Name]
	if !ok {
		return node{}, &UnboundVariableError{Name: n.Name}
	}
	v, err := ir.FromGo(raw)
	if err != nil {
		return node{}, fmt.Errorf("variable %q: %w", n.Name, err)
	}
	if arr, ok := v.(ir.IRArray); ok {
		for i, elem := range arr {
			if !ir.IsPrimitive(elem) {
				return node{}, fmt.Errorf("variable %q: element %d is a %s", n.Name, i, ir.KindOf(elem))
			}
		}
	} else if !ir.IsPrimitive(v) {
		return node{}, fmt.Errorf("variable %q: a %s cannot be compared", n.Name, ir.KindOf(v))
	}
	return node{operand: queryir.Value{Value: v}}, nil
}

func (s *compilation) VisitCall(n *expr.Call) (node, error) {
	expanded, err := s.lib.Expand(n)
	if err != nil {
		return node{}, err
	}
	return expr.Walk[node](s, expanded)
}
