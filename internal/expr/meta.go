package expr

import (
	"maps"

	"github.com/roach88/fql/internal/ir"
)

// WithMeta returns a shallow copy of e whose metadata is e's metadata merged
// with meta (keys in meta win). Children are shared, e is left untouched.
func WithMeta[E Expr](e E, meta ir.IRObject) E {
	merged := make(ir.IRObject, len(e.Metadata())+len(meta))
	maps.Copy(merged, e.Metadata())
	maps.Copy(merged, meta)

	var out Expr
	switch n := Expr(e).(type) {
	case *Literal:
		c := *n
		c.Meta = merged
		out = &c
	case *And:
		c := *n
		c.Meta = merged
		out = &c
	case *Or:
		c := *n
		c.Meta = merged
		out = &c
	case *Not:
		c := *n
		c.Meta = merged
		out = &c
	case *Eq:
		c := *n
		c.Meta = merged
		out = &c
	case *Gt:
		c := *n
		c.Meta = merged
		out = &c
	case *Gte:
		c := *n
		c.Meta = merged
		out = &c
	case *Lt:
		c := *n
		c.Meta = merged
		out = &c
	case *Lte:
		c := *n
		c.Meta = merged
		out = &c
	case *OneOf:
		c := *n
		c.Meta = merged
		out = &c
	case *Contains:
		c := *n
		c.Meta = merged
		out = &c
	case *MatchesRegex:
		c := *n
		c.Meta = merged
		out = &c
	case *Rel:
		c := *n
		c.Meta = merged
		out = &c
	case *Attr:
		c := *n
		c.Meta = merged
		out = &c
	case *Var:
		c := *n
		c.Meta = merged
		out = &c
	case *Call:
		c := *n
		c.Meta = merged
		out = &c
	default:
		return e
	}
	return out.(E)
}
