package expr

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/fql/internal/ir"
)

var (
	compareDates = cmp.Comparer(func(a, b ir.IRDate) bool { return a.Equal(b) })

	ignoreMeta = cmp.FilterPath(func(p cmp.Path) bool {
		sf, ok := p.Last().(cmp.StructField)
		return ok && sf.Name() == "Meta"
	}, cmp.Ignore())

	// An Eq without a right-hand side tests for null.
	absentRhs = cmp.Transformer("expr.Eq", func(e *Eq) *Eq {
		if e == nil || e.Rhs != nil {
			return e
		}
		out := *e
		out.Rhs = &Literal{Value: ir.IRNull{}}
		return &out
	})

	structural = cmp.Options{compareDates, absentRhs, cmpopts.EquateEmpty(), ignoreMeta}
	withMeta   = cmp.Options{compareDates, absentRhs, cmpopts.EquateEmpty()}
)

// Equal reports whether a and b are structurally equal. Metadata is ignored
// and an Eq with a nil Rhs equals one whose Rhs is the null literal.
func Equal(a, b Expr) bool {
	return cmp.Equal(a, b, structural)
}

// EqualWithMeta is Equal but also compares metadata. A nil map equals an
// empty one.
func EqualWithMeta(a, b Expr) bool {
	return cmp.Equal(a, b, withMeta)
}

// Diff returns a human-readable structural difference, or "" when Equal.
func Diff(a, b Expr) string {
	return cmp.Diff(a, b, structural)
}

// CmpOptions returns the go-cmp options Equal uses, for tests comparing
// values that embed expressions.
func CmpOptions() cmp.Options {
	return structural
}
