package serde

import (
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

// Tree field names.
const (
	fieldOp        = "op"
	fieldLhs       = "lhs"
	fieldRhs       = "rhs"
	fieldExpr      = "expr"
	fieldMember    = "member"
	fieldSet       = "set"
	fieldName      = "name"
	fieldTarget    = "target"
	fieldArguments = "arguments"
	fieldMetadata  = "metadata"
	fieldValue     = "value"
)

// tagDate marks a date leaf. It is not a node kind.
const tagDate = "date"

// Serialize converts e to its tagged tree.
func Serialize(e expr.Expr) (ir.IRValue, error) {
	return expr.Walk[ir.IRValue](encoder{}, e)
}

// Marshal serializes e to canonical JSON.
func Marshal(e expr.Expr) ([]byte, error) {
	tree, err := Serialize(e)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(tree)
}

// EncodeValue converts a literal or metadata value to its tree form. Dates
// become tagged objects at any depth.
func EncodeValue(v ir.IRValue) ir.IRValue {
	switch val := v.(type) {
	case nil:
		return ir.IRNull{}
	case ir.IRDate:
		return ir.IRObject{fieldOp: ir.IRString(tagDate), fieldValue: ir.IRString(val.String())}
	case ir.IRArray:
		out := make(ir.IRArray, len(val))
		for i, elem := range val {
			out[i] = EncodeValue(elem)
		}
		return out
	case ir.IRObject:
		out := make(ir.IRObject, len(val))
		for k, elem := range val {
			out[k] = EncodeValue(elem)
		}
		return out
	default:
		return v
	}
}

type encoder struct{}

func (encoder) node(kind expr.Kind, meta ir.IRObject, fields ...ir.IRPair) ir.IRObject {
	obj := ir.NewIRObject(fields...)
	obj[fieldOp] = ir.IRString(kind)
	if len(meta) > 0 {
		obj[fieldMetadata] = EncodeValue(meta)
	}
	return obj
}

func (x encoder) sub(e expr.Expr, field string) (ir.IRValue, error) {
	v, err := expr.Walk[ir.IRValue](x, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func (x encoder) binary(kind expr.Kind, meta ir.IRObject, lhs, rhs expr.Expr) (ir.IRValue, error) {
	l, err := x.sub(lhs, fieldLhs)
	if err != nil {
		return nil, err
	}
	r, err := x.sub(rhs, fieldRhs)
	if err != nil {
		return nil, err
	}
	return x.node(kind, meta, ir.O(fieldLhs, l), ir.O(fieldRhs, r)), nil
}

func (x encoder) VisitLiteral(n *expr.Literal) (ir.IRValue, error) {
	switch v := n.Value.(type) {
	case ir.IRArray:
		for i, elem := range v {
			if !ir.IsPrimitive(elem) {
				return nil, fmt.Errorf("literal list element %d is a %s", i, ir.KindOf(elem))
			}
		}
	case ir.IRObject:
		return nil, fmt.Errorf("literal cannot hold an object")
	}

	leaf := EncodeValue(n.Value)
	if len(n.Meta) == 0 {
		return leaf, nil
	}
	return x.node(expr.KindLiteral, n.Meta, ir.O(fieldValue, leaf)), nil
}

func (x encoder) VisitAnd(n *expr.And) (ir.IRValue, error) {
	return x.binary(expr.KindAnd, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitOr(n *expr.Or) (ir.IRValue, error) {
	return x.binary(expr.KindOr, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitNot(n *expr.Not) (ir.IRValue, error) {
	inner, err := x.sub(n.Expr, fieldExpr)
	if err != nil {
		return nil, err
	}
	return x.node(expr.KindNot, n.Meta, ir.O(fieldExpr, inner)), nil
}

func (x encoder) VisitEq(n *expr.Eq) (ir.IRValue, error) {
	// An absent rhs is the null literal.
	if n.Rhs == nil {
		return x.binary(expr.KindEq, n.Meta, n.Lhs, &expr.Literal{Value: ir.IRNull{}})
	}
	return x.binary(expr.KindEq, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitGt(n *expr.Gt) (ir.IRValue, error) {
	return x.binary(expr.KindGt, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitGte(n *expr.Gte) (ir.IRValue, error) {
	return x.binary(expr.KindGte, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitLt(n *expr.Lt) (ir.IRValue, error) {
	return x.binary(expr.KindLt, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitLte(n *expr.Lte) (ir.IRValue, error) {
	return x.binary(expr.KindLte, n.Meta, n.Lhs, n.Rhs)
}

func (x encoder) VisitOneOf(n *expr.OneOf) (ir.IRValue, error) {
	member, err := x.sub(n.Member, fieldMember)
	if err != nil {
		return nil, err
	}
	set, err := x.VisitLiteral(&expr.Literal{Value: orEmpty(n.Set)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fieldSet, err)
	}
	return x.node(expr.KindOneOf, n.Meta, ir.O(fieldMember, member), ir.O(fieldSet, set)), nil
}

func orEmpty(a ir.IRArray) ir.IRArray {
	if a == nil {
		return ir.IRArray{}
	}
	return a
}

func (x encoder) VisitContains(n *expr.Contains) (ir.IRValue, error) {
	lhs, err := x.sub(n.Lhs, fieldLhs)
	if err != nil {
		return nil, err
	}
	return x.node(expr.KindContains, n.Meta, ir.O(fieldLhs, lhs), ir.O(fieldRhs, ir.IRString(n.Rhs))), nil
}

func (x encoder) VisitMatchesRegex(n *expr.MatchesRegex) (ir.IRValue, error) {
	lhs, err := x.sub(n.Lhs, fieldLhs)
	if err != nil {
		return nil, err
	}
	return x.node(expr.KindMatchesRegex, n.Meta, ir.O(fieldLhs, lhs), ir.O(fieldRhs, ir.IRString(n.Rhs))), nil
}

func (x encoder) VisitRel(n *expr.Rel) (ir.IRValue, error) {
	if len(n.Path) == 0 {
		return nil, fmt.Errorf("relation path is empty")
	}
	path := make(ir.IRArray, len(n.Path))
	for i, seg := range n.Path {
		path[i] = ir.IRString(seg)
	}
	return x.node(expr.KindRel, n.Meta, ir.O(fieldName, path)), nil
}

func (x encoder) VisitAttr(n *expr.Attr) (ir.IRValue, error) {
	target, err := x.sub(n.Target, fieldTarget)
	if err != nil {
		return nil, err
	}
	return x.node(expr.KindAttr, n.Meta, ir.O(fieldTarget, target), ir.O(fieldName, ir.IRString(n.Name))), nil
}

func (x encoder) VisitVar(n *expr.Var) (ir.IRValue, error) {
	return x.node(expr.KindVar, n.Meta, ir.O(fieldName, ir.IRString(n.Name))), nil
}

func (x encoder) VisitCall(n *expr.Call) (ir.IRValue, error) {
	args := make(ir.IRArray, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := x.sub(a, fmt.Sprintf("%s[%d]", fieldArguments, i))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return x.node(expr.KindCall, n.Meta, ir.O(fieldName, ir.IRString(n.Name)), ir.O(fieldArguments, args)), nil
}
