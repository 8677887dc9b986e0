// Package expr defines the FQL expression tree.
//
// The tree is a closed sum type: Expr is a sealed interface and only the node
// types in this package implement it. Backends dispatch through Walk and the
// Visitor interface, which has one method per node kind, so adding a kind
// fails to compile until every backend handles it.
//
// Node categories:
//
//	ValueExpr: Literal, Rel, Attr, Var, Call
//	BoolExpr:  And, Or, Not, Eq, Gt, Gte, Lt, Lte, OneOf, Contains,
//	           MatchesRegex, Literal (boolean), Call
//
// A query root is any BoolExpr. Literal and Call sit in both categories; a
// literal in a boolean position must hold an ir.IRBool, which backends check
// when they compile it.
//
// Nodes are immutable after construction. Composition builds new parents that
// share existing children; no function in this module mutates a node. Every
// node carries a Meta map for tooling. Meta is never interpreted by a backend
// and Equal ignores it.
package expr
