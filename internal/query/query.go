// Package query is the entry point for working with FQL expressions. A Query
// pairs a boolean expression with the library its calls expand through and
// hands both to whichever backend is asked for.
package query

import (
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/library"
	"github.com/roach88/fql/internal/outcome"
	"github.com/roach88/fql/internal/predicate"
	"github.com/roach88/fql/internal/queryir"
	"github.com/roach88/fql/internal/querysql"
	"github.com/roach88/fql/internal/relational"
	"github.com/roach88/fql/internal/schema"
	"github.com/roach88/fql/internal/serde"
	"github.com/roach88/fql/internal/validation"
	"github.com/roach88/fql/internal/words"
)

// Query is an immutable boolean expression plus its library. Composition
// returns new values that share the existing subtrees.
type Query struct {
	root expr.BoolExpr
	lib  *library.Library
}

// New wraps root. A nil lib is treated as library.Empty().
func New(root expr.BoolExpr, lib *library.Library) Query {
	if lib == nil {
		lib = library.Empty()
	}
	return Query{root: root, lib: lib}
}

// Unmarshal decodes a query from its JSON form.
func Unmarshal(data []byte, lib *library.Library) outcome.Outcome[Query] {
	return outcome.Map(serde.UnmarshalBool(data), func(root expr.BoolExpr) Query {
		return New(root, lib)
	})
}

// Expr returns the root expression.
func (q Query) Expr() expr.BoolExpr { return q.root }

// Library returns the library calls expand through.
func (q Query) Library() *library.Library { return q.lib }

func (q Query) String() string { return expr.Format(q.root) }

// And returns q AND other.
func (q Query) And(other expr.BoolExpr) Query {
	return Query{root: &expr.And{Lhs: q.root, Rhs: other}, lib: q.lib}
}

// Or returns q OR other.
func (q Query) Or(other expr.BoolExpr) Query {
	return Query{root: &expr.Or{Lhs: q.root, Rhs: other}, lib: q.lib}
}

// Not returns NOT q.
func (q Query) Not() Query {
	return Query{root: &expr.Not{Expr: q.root}, lib: q.lib}
}

// Expand returns the query with every call replaced by its expansion.
func (q Query) Expand() (Query, error) {
	root, err := q.lib.ExpandBool(q.root)
	if err != nil {
		return Query{}, fmt.Errorf("expand: %w", err)
	}
	return Query{root: root, lib: q.lib}, nil
}

// Plan compiles the query to a relational plan over model.
func (q Query) Plan(provider schema.Provider, model string, vars map[string]any) (*queryir.Plan, error) {
	return relational.Compile(provider, model, q.root, vars, q.lib)
}

// SQL compiles the query and renders it for dialect.
func (q Query) SQL(provider schema.Provider, model string, vars map[string]any, dialect querysql.Dialect) (string, []any, error) {
	plan, err := q.Plan(provider, model, vars)
	if err != nil {
		return "", nil, err
	}
	return querysql.Render(*plan, dialect)
}

// Predicate compiles the query to an in-memory predicate.
func (q Query) Predicate() (*predicate.Program, error) {
	return predicate.Compile(q.root, q.lib)
}

// Describe renders the query as text. The query's library is used unless
// opts set another.
func (q Query) Describe(opts ...words.Option) (string, error) {
	return words.Compile(q.root, append([]words.Option{words.WithLibrary(q.lib)}, opts...)...)
}

// Validate checks the query against model.
func (q Query) Validate(provider schema.Provider, model string) validation.Result {
	return validation.Validate(provider, model, q.root, q.lib)
}

// Serialize returns the query's tree form.
func (q Query) Serialize() (ir.IRValue, error) {
	return serde.Serialize(q.root)
}

// Marshal returns the query's canonical JSON form.
func (q Query) Marshal() ([]byte, error) {
	return serde.Marshal(q.root)
}

// Fingerprint is the content address of the serialized query. Metadata is
// part of the tree, so it changes the fingerprint.
func (q Query) Fingerprint() (string, error) {
	tree, err := q.Serialize()
	if err != nil {
		return "", err
	}
	return ir.Fingerprint(ir.DomainExpression, tree)
}
