package expr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fql/internal/dsl"
	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

func TestNodeCategories(t *testing.T) {
	// Compile-time check via assignment
	var _ expr.ValueExpr = &expr.Literal{}
	var _ expr.ValueExpr = &expr.Rel{}
	var _ expr.ValueExpr = &expr.Attr{}
	var _ expr.ValueExpr = &expr.Var{}
	var _ expr.ValueExpr = &expr.Call{}

	var _ expr.BoolExpr = &expr.Literal{}
	var _ expr.BoolExpr = &expr.And{}
	var _ expr.BoolExpr = &expr.Or{}
	var _ expr.BoolExpr = &expr.Not{}
	var _ expr.BoolExpr = &expr.Eq{}
	var _ expr.BoolExpr = &expr.Gt{}
	var _ expr.BoolExpr = &expr.Gte{}
	var _ expr.BoolExpr = &expr.Lt{}
	var _ expr.BoolExpr = &expr.Lte{}
	var _ expr.BoolExpr = &expr.OneOf{}
	var _ expr.BoolExpr = &expr.Contains{}
	var _ expr.BoolExpr = &expr.MatchesRegex{}
	var _ expr.Root = &expr.Call{}
}

func TestEqualIgnoresMetadata(t *testing.T) {
	a := dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "es")
	b := dsl.Meta(dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "es"), map[string]any{"note": "x"})

	assert.True(t, expr.Equal(a, b))
	assert.False(t, expr.EqualWithMeta(a, b))
	assert.Empty(t, expr.Diff(a, b))

	c := dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "fr")
	assert.False(t, expr.Equal(a, c))
	assert.NotEmpty(t, expr.Diff(a, c))
}

func TestEqualComparesDates(t *testing.T) {
	a := dsl.Lt(dsl.Prop("dob"), dsl.Date(1990, time.January, 1))
	b := dsl.Lt(dsl.Prop("dob"), ir.DateOf(time.Date(1990, time.January, 1, 15, 0, 0, 0, time.UTC)))
	c := dsl.Lt(dsl.Prop("dob"), dsl.Date(1990, time.January, 2))

	assert.True(t, expr.Equal(a, b))
	assert.False(t, expr.Equal(a, c))
}

func TestEqualAbsentRhsIsNull(t *testing.T) {
	absent := &expr.Eq{Lhs: dsl.Prop("email")}
	null := dsl.IsEmpty(dsl.Prop("email"))

	assert.True(t, expr.Equal(absent, null))
	assert.True(t, expr.EqualWithMeta(dsl.Not(absent), dsl.Not(null)))
	assert.Empty(t, expr.Diff(null, absent))
	assert.False(t, expr.Equal(absent, dsl.Eq(dsl.Prop("email"), "")))
	assert.Nil(t, absent.Rhs, "comparison leaves the node untouched")
}

func TestEqualWithMetaTreatsNilAsEmpty(t *testing.T) {
	a := &expr.Var{Name: "x"}
	b := &expr.Var{Name: "x", Meta: ir.IRObject{}}
	assert.True(t, expr.EqualWithMeta(a, b))
}

func TestWithMetaCopies(t *testing.T) {
	inner := dsl.Var("x")
	orig := dsl.Gt(inner, 1)

	tagged := expr.WithMeta(orig, ir.IRObject{"source": ir.IRString("ui")})
	assert.Empty(t, orig.Meta, "original untouched")
	assert.Equal(t, ir.IRString("ui"), tagged.Meta["source"])
	assert.Same(t, inner, tagged.Lhs.(*expr.Var), "children shared")

	retagged := expr.WithMeta(tagged, ir.IRObject{"rank": ir.IRInt(2)})
	assert.Len(t, retagged.Meta, 2)
	assert.Len(t, tagged.Meta, 1)
}

func TestWithMetaKeepsInterfaceType(t *testing.T) {
	var e expr.BoolExpr = dsl.Bool(true)
	out := expr.WithMeta(e, ir.IRObject{"k": ir.IRBool(true)})
	lit, ok := out.(*expr.Literal)
	require.True(t, ok)
	assert.Equal(t, ir.IRBool(true), lit.Meta["k"])
}

func TestRelIsSelf(t *testing.T) {
	assert.True(t, dsl.Self().IsSelf())
	assert.False(t, dsl.Rel("address").IsSelf())
	assert.False(t, dsl.Rel("self", "address").IsSelf())
}

func TestOperands(t *testing.T) {
	lhs, rhs, ok := expr.Operands(dsl.Gte(dsl.Prop("age"), 18))
	require.True(t, ok)
	assert.Equal(t, "age", lhs.(*expr.Attr).Name)
	assert.Equal(t, ir.IRInt(18), rhs.(*expr.Literal).Value)

	_, _, ok = expr.Operands(dsl.Not(dsl.Bool(true)))
	assert.False(t, ok)
}

func TestIsNullLiteral(t *testing.T) {
	assert.True(t, expr.IsNullLiteral(nil))
	assert.True(t, expr.IsNullLiteral(dsl.Null()))
	assert.False(t, expr.IsNullLiteral(dsl.Lit("")))
	assert.False(t, expr.IsNullLiteral(dsl.Var("x")))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    expr.Expr
		expected string
	}{
		{
			"or of comparisons",
			dsl.Or(
				dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "es"),
				dsl.Gt(dsl.Attr(dsl.Rel("salary"), "amount"), dsl.Var("threshold")),
			),
			`((location.country == "es") || (salary.amount > $threshold))`,
		},
		{"not", dsl.Not(dsl.IsEmpty(dsl.Prop("name"))), `!(self.name == null)`},
		{"one of", dsl.OneOf(dsl.Prop("role"), "admin", "staff"), `(self.role in ["admin", "staff"])`},
		{"contains", dsl.Contains(dsl.Prop("name"), "an"), `(self.name contains "an")`},
		{"regex", dsl.Matches(dsl.Prop("name"), "^A"), `(self.name =~ /^A/)`},
		{"call", dsl.Call("between", dsl.Prop("age"), 18, 65), `between(self.age, 18, 65)`},
		{"date", dsl.Lt(dsl.Prop("dob"), dsl.Date(2000, time.May, 4)), `(self.dob < date(2000-05-04))`},
		{"nil", nil, `<nil expression>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expr.Format(tt.input))
		})
	}
}

type kindCounter struct{ kinds []expr.Kind }

func (c *kindCounter) record(e expr.Expr) (int, error) {
	c.kinds = append(c.kinds, e.Kind())
	return len(c.kinds), nil
}

func (c *kindCounter) VisitLiteral(n *expr.Literal) (int, error)           { return c.record(n) }
func (c *kindCounter) VisitAnd(n *expr.And) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitOr(n *expr.Or) (int, error)                     { return c.record(n) }
func (c *kindCounter) VisitNot(n *expr.Not) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitEq(n *expr.Eq) (int, error)                     { return c.record(n) }
func (c *kindCounter) VisitGt(n *expr.Gt) (int, error)                     { return c.record(n) }
func (c *kindCounter) VisitGte(n *expr.Gte) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitLt(n *expr.Lt) (int, error)                     { return c.record(n) }
func (c *kindCounter) VisitLte(n *expr.Lte) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitOneOf(n *expr.OneOf) (int, error)               { return c.record(n) }
func (c *kindCounter) VisitContains(n *expr.Contains) (int, error)         { return c.record(n) }
func (c *kindCounter) VisitMatchesRegex(n *expr.MatchesRegex) (int, error) { return c.record(n) }
func (c *kindCounter) VisitRel(n *expr.Rel) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitAttr(n *expr.Attr) (int, error)                 { return c.record(n) }
func (c *kindCounter) VisitVar(n *expr.Var) (int, error)                   { return c.record(n) }
func (c *kindCounter) VisitCall(n *expr.Call) (int, error)                 { return c.record(n) }

func TestWalkDispatchesEveryKind(t *testing.T) {
	nodes := []expr.Expr{
		dsl.Lit(1), dsl.And(dsl.Bool(true), dsl.Bool(false)), dsl.Or(dsl.Bool(true), dsl.Bool(false)),
		dsl.Not(dsl.Bool(true)), dsl.Eq(1, 1), dsl.Gt(1, 1), dsl.Gte(1, 1), dsl.Lt(1, 1), dsl.Lte(1, 1),
		dsl.OneOf(1, 1), dsl.Contains("a", "a"), dsl.Matches("a", "a"), dsl.Self(), dsl.Prop("a"),
		dsl.Var("a"), dsl.Call("f"),
	}

	c := &kindCounter{}
	for _, n := range nodes {
		_, err := expr.Walk[int](c, n)
		require.NoError(t, err)
	}

	assert.Equal(t, []expr.Kind{
		expr.KindLiteral, expr.KindAnd, expr.KindOr, expr.KindNot, expr.KindEq, expr.KindGt,
		expr.KindGte, expr.KindLt, expr.KindLte, expr.KindOneOf, expr.KindContains,
		expr.KindMatchesRegex, expr.KindRel, expr.KindAttr, expr.KindVar, expr.KindCall,
	}, c.kinds)
}

func TestWalkNil(t *testing.T) {
	c := &kindCounter{}

	_, err := expr.Walk[int](c, nil)
	assert.ErrorIs(t, err, expr.ErrNilExpr)

	var typed *expr.And
	_, err = expr.Walk[int](c, typed)
	assert.ErrorIs(t, err, expr.ErrNilExpr)
	assert.Empty(t, c.kinds)
}

func TestInspectAndVarNames(t *testing.T) {
	e := dsl.And(
		dsl.Gt(dsl.Prop("amount"), dsl.Var("min")),
		dsl.Or(dsl.Lt(dsl.Prop("amount"), dsl.Var("max")), dsl.Eq(dsl.Var("min"), 0)),
	)

	assert.Equal(t, []string{"min", "max"}, expr.VarNames(e))

	count := 0
	expr.Inspect(e, func(n expr.Expr) bool {
		count++
		_, isOr := n.(*expr.Or)
		return !isOr
	})
	// And, Gt, Attr, Rel, Var, Or
	assert.Equal(t, 6, count)
}
