package expr

import (
	"github.com/roach88/fql/internal/ir"
)

// Kind names a node kind. The values double as the serialized "op" tags.
type Kind string

const (
	KindLiteral      Kind = "literal"
	KindAnd          Kind = "and"
	KindOr           Kind = "or"
	KindNot          Kind = "not"
	KindEq           Kind = "eq"
	KindGt           Kind = "gt"
	KindGte          Kind = "gte"
	KindLt           Kind = "lt"
	KindLte          Kind = "lte"
	KindOneOf        Kind = "one_of"
	KindContains     Kind = "contains"
	KindMatchesRegex Kind = "matches_regex"
	KindRel          Kind = "rel"
	KindAttr         Kind = "attr"
	KindVar          Kind = "var"
	KindCall         Kind = "call"
)

// SelfName is the single path segment that denotes the query root.
const SelfName = "self"

// Expr is a node of the expression tree.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	Kind() Kind
	Metadata() ir.IRObject
	exprNode() // Marker method - seals interface to this package
}

// ValueExpr is an expression that produces a value.
type ValueExpr interface {
	Expr
	valueExpr()
}

// BoolExpr is an expression that produces a boolean.
type BoolExpr interface {
	Expr
	boolExpr()
}

// Root is the expression kind a query wraps.
type Root = BoolExpr

// Literal is a self-evaluating value: IRBool, IRInt, IRString, IRDate, IRNull,
// or an IRArray of those primitives.
type Literal struct {
	Value ir.IRValue
	Meta  ir.IRObject
}

// And is true when both sides are.
type And struct {
	Lhs  BoolExpr
	Rhs  BoolExpr
	Meta ir.IRObject
}

// Or is true when either side is.
type Or struct {
	Lhs  BoolExpr
	Rhs  BoolExpr
	Meta ir.IRObject
}

// Not negates its operand.
type Not struct {
	Expr BoolExpr
	Meta ir.IRObject
}

// Eq tests equality. A null Rhs means "is empty"; a list Rhs means
// membership, the same as OneOf.
type Eq struct {
	Lhs  ValueExpr
	Rhs  ValueExpr
	Meta ir.IRObject
}

// Gt is Lhs > Rhs.
type Gt struct {
	Lhs  ValueExpr
	Rhs  ValueExpr
	Meta ir.IRObject
}

// Gte is Lhs >= Rhs.
type Gte struct {
	Lhs  ValueExpr
	Rhs  ValueExpr
	Meta ir.IRObject
}

// Lt is Lhs < Rhs.
type Lt struct {
	Lhs  ValueExpr
	Rhs  ValueExpr
	Meta ir.IRObject
}

// Lte is Lhs <= Rhs.
type Lte struct {
	Lhs  ValueExpr
	Rhs  ValueExpr
	Meta ir.IRObject
}

// OneOf tests membership of Member in a list of primitives.
type OneOf struct {
	Member ValueExpr
	Set    ir.IRArray
	Meta   ir.IRObject
}

// Contains is a substring test (or membership, for list values).
type Contains struct {
	Lhs  ValueExpr
	Rhs  string
	Meta ir.IRObject
}

// MatchesRegex tests Lhs against the pattern in Rhs.
type MatchesRegex struct {
	Lhs  ValueExpr
	Rhs  string
	Meta ir.IRObject
}

// Rel is a chain of association names starting at the root.
// Path is never empty; []string{"self"} is the root itself.
type Rel struct {
	Path []string
	Meta ir.IRObject
}

// IsSelf reports whether the relation denotes the query root.
func (r *Rel) IsSelf() bool {
	return len(r.Path) == 1 && r.Path[0] == SelfName
}

// Attr is the attribute Name of the entity reached through Target.
type Attr struct {
	Target *Rel
	Name   string
	Meta   ir.IRObject
}

// Var is a named value supplied by the caller: at compile time for the
// relational and words backends, at call time for predicates.
type Var struct {
	Name string
	Meta ir.IRObject
}

// Call invokes a library function. Backends expand it before interpreting it.
type Call struct {
	Name      string
	Arguments []Expr
	Meta      ir.IRObject
}

func (*Literal) Kind() Kind      { return KindLiteral }
func (*And) Kind() Kind          { return KindAnd }
func (*Or) Kind() Kind           { return KindOr }
func (*Not) Kind() Kind          { return KindNot }
func (*Eq) Kind() Kind           { return KindEq }
func (*Gt) Kind() Kind           { return KindGt }
func (*Gte) Kind() Kind          { return KindGte }
func (*Lt) Kind() Kind           { return KindLt }
func (*Lte) Kind() Kind          { return KindLte }
func (*OneOf) Kind() Kind        { return KindOneOf }
func (*Contains) Kind() Kind     { return KindContains }
func (*MatchesRegex) Kind() Kind { return KindMatchesRegex }
func (*Rel) Kind() Kind          { return KindRel }
func (*Attr) Kind() Kind         { return KindAttr }
func (*Var) Kind() Kind          { return KindVar }
func (*Call) Kind() Kind         { return KindCall }

func (n *Literal) Metadata() ir.IRObject      { return n.Meta }
func (n *And) Metadata() ir.IRObject          { return n.Meta }
func (n *Or) Metadata() ir.IRObject           { return n.Meta }
func (n *Not) Metadata() ir.IRObject          { return n.Meta }
func (n *Eq) Metadata() ir.IRObject           { return n.Meta }
func (n *Gt) Metadata() ir.IRObject           { return n.Meta }
func (n *Gte) Metadata() ir.IRObject          { return n.Meta }
func (n *Lt) Metadata() ir.IRObject           { return n.Meta }
func (n *Lte) Metadata() ir.IRObject          { return n.Meta }
func (n *OneOf) Metadata() ir.IRObject        { return n.Meta }
func (n *Contains) Metadata() ir.IRObject     { return n.Meta }
func (n *MatchesRegex) Metadata() ir.IRObject { return n.Meta }
func (n *Rel) Metadata() ir.IRObject          { return n.Meta }
func (n *Attr) Metadata() ir.IRObject         { return n.Meta }
func (n *Var) Metadata() ir.IRObject          { return n.Meta }
func (n *Call) Metadata() ir.IRObject         { return n.Meta }

func (*Literal) exprNode()      {}
func (*And) exprNode()          {}
func (*Or) exprNode()           {}
func (*Not) exprNode()          {}
func (*Eq) exprNode()           {}
func (*Gt) exprNode()           {}
func (*Gte) exprNode()          {}
func (*Lt) exprNode()           {}
func (*Lte) exprNode()          {}
func (*OneOf) exprNode()        {}
func (*Contains) exprNode()     {}
func (*MatchesRegex) exprNode() {}
func (*Rel) exprNode()          {}
func (*Attr) exprNode()         {}
func (*Var) exprNode()          {}
func (*Call) exprNode()         {}

func (*Literal) valueExpr() {}
func (*Rel) valueExpr()     {}
func (*Attr) valueExpr()    {}
func (*Var) valueExpr()     {}
func (*Call) valueExpr()    {}

func (*Literal) boolExpr()      {}
func (*And) boolExpr()          {}
func (*Or) boolExpr()           {}
func (*Not) boolExpr()          {}
func (*Eq) boolExpr()           {}
func (*Gt) boolExpr()           {}
func (*Gte) boolExpr()          {}
func (*Lt) boolExpr()           {}
func (*Lte) boolExpr()          {}
func (*OneOf) boolExpr()        {}
func (*Contains) boolExpr()     {}
func (*MatchesRegex) boolExpr() {}
func (*Call) boolExpr()         {}

// IsComparison reports whether k is one of Eq, Gt, Gte, Lt, Lte.
func IsComparison(k Kind) bool {
	switch k {
	case KindEq, KindGt, KindGte, KindLt, KindLte:
		return true
	}
	return false
}

// Operands returns the two sides of a comparison node. ok is false for every
// other kind.
func Operands(e Expr) (lhs, rhs ValueExpr, ok bool) {
	switch n := e.(type) {
	case *Eq:
		return n.Lhs, n.Rhs, true
	case *Gt:
		return n.Lhs, n.Rhs, true
	case *Gte:
		return n.Lhs, n.Rhs, true
	case *Lt:
		return n.Lhs, n.Rhs, true
	case *Lte:
		return n.Lhs, n.Rhs, true
	}
	return nil, nil, false
}

// IsNullLiteral reports whether e is a literal null (a nil e counts).
func IsNullLiteral(e ValueExpr) bool {
	if e == nil {
		return true
	}
	lit, ok := e.(*Literal)
	if !ok {
		return false
	}
	_, isNull := lit.Value.(ir.IRNull)
	return isNull || lit.Value == nil
}

// ListLiteral returns the elements when e is a literal list.
func ListLiteral(e ValueExpr) (ir.IRArray, bool) {
	lit, ok := e.(*Literal)
	if !ok {
		return nil, false
	}
	arr, ok := lit.Value.(ir.IRArray)
	return arr, ok
}
