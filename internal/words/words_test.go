package words

import (
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/roach88/fql/internal/dsl"
	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/i18n"
	"github.com/roach88/fql/internal/library"
)

func locationOrSalary() expr.BoolExpr {
	return dsl.Or(
		dsl.Eq(dsl.Attr(dsl.Rel("location"), "country"), "es"),
		dsl.Gt(dsl.Attr(dsl.Rel("salary"), "amount"), dsl.Var("threshold")),
	)
}

func render(t *testing.T, e expr.Expr, opts ...Option) string {
	t.Helper()
	out, err := Compile(e, append([]Option{WithLibrary(library.Standard())}, opts...)...)
	require.NoError(t, err)
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		e        expr.Expr
		expected string
	}{
		{"true", dsl.Bool(true), "true"},
		{"false", dsl.Bool(false), "false"},
		{"int", dsl.Lit(5), "5"},
		{"string", dsl.Lit("hello"), `"hello"`},
		{"null", dsl.Null(), "null"},
		{"date", dsl.Date(2024, time.March, 1), "March 01, 2024"},
		{"list", dsl.List("Hello", "Goodbye"), `["Hello", "Goodbye"]`},

		{"and", dsl.And(dsl.Bool(true), dsl.Bool(false)), "BOTH (true) AND (false)"},
		{"not and", dsl.Not(dsl.And(dsl.Bool(true), dsl.Bool(false))), "NOT BOTH (true) AND (false)"},
		{"or", dsl.Or(dsl.Bool(true), dsl.Bool(false)), "EITHER (true) OR (false)"},
		{"not or", dsl.Not(dsl.Or(dsl.Bool(true), dsl.Bool(false))), "NEITHER (true) NOR (false)"},

		{"eq", dsl.Eq(true, false), "true equals false"},
		{"not eq", dsl.Not(dsl.Eq(true, false)), "true does not equal false"},
		{"is empty", dsl.IsEmpty(true), "true is empty"},
		{"is not empty", dsl.Not(dsl.IsEmpty(true)), "true is not empty"},
		{"eq list", dsl.Eq(dsl.Prop("role"), dsl.List("admin", "staff")), `their role is one of ["admin", "staff"]`},

		{"gt", dsl.Gt(5, 2), "5 is greater than 2"},
		{"not gt", dsl.Not(dsl.Gt(5, 2)), "5 is not greater than 2"},
		{"gte", dsl.Gte(5, 2), "5 is greater than (or equals) 2"},
		{"not gte", dsl.Not(dsl.Gte(5, 2)), "5 is not greater than (or equals) 2"},
		{"lt", dsl.Lt(5, 2), "5 is less than 2"},
		{"not lt", dsl.Not(dsl.Lt(5, 2)), "5 is not less than 2"},
		{"lte", dsl.Lte(5, 2), "5 is less than (or equals) 2"},
		{"not lte", dsl.Not(dsl.Lte(5, 2)), "5 is not less than (or equals) 2"},

		{"one of", dsl.OneOf("Hello", "Hello", "Goodbye"), `"Hello" is one of ["Hello", "Goodbye"]`},
		{"not one of", dsl.Not(dsl.OneOf("Hello", "Hello", "Goodbye")), `"Hello" is not one of ["Hello", "Goodbye"]`},
		{"contains", dsl.Contains("Something", "thing"), `"Something" contains "thing"`},
		{"not contains", dsl.Not(dsl.Contains("Something", "thing")), `"Something" does not contain "thing"`},
		{"matches", dsl.Matches("Something", "thing"), `"Something" matches "thing"`},
		{"not matches", dsl.Not(dsl.Matches("Something", "thing")), `"Something" does not match "thing"`},

		{"rel", dsl.Rel("location"), "of the location"},
		{"self", dsl.Self(), "themselves"},
		{"nested rel", dsl.Eq(dsl.Attr(dsl.Rel("address", "city"), "name"), "Barcelona"), `the name of the city of the address equals "Barcelona"`},
		{"own attribute", dsl.Prop("property"), "their property"},
		{"attribute", dsl.Attr(dsl.Rel("location"), "property"), "the property of the location"},
		{"underscores", dsl.Prop("first_name"), "their first name"},
		{"catalog noun", dsl.Prop("dob"), "their date of birth"},
		{"var", dsl.Var("username"), "a given username"},

		{"double negation", dsl.Not(dsl.Not(dsl.Eq(true, false))), "true equals false"},
		{"negated literal", dsl.Not(dsl.Bool(true)), "it is not the case that true"},
		{"children start affirmative",
			dsl.Not(dsl.And(dsl.Not(dsl.Eq(1, 2)), dsl.Eq(3, 4))),
			"NOT BOTH (1 does not equal 2) AND (3 equals 4)"},
		{"call", dsl.Call("present", dsl.Prop("email")), "their email is not empty"},
		{"negated call", dsl.Not(dsl.Call("present", dsl.Prop("email"))), "their email is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, render(t, tt.e))
		})
	}
}

func TestNegationUsesDedicatedPhrasing(t *testing.T) {
	and := dsl.And(dsl.Eq(dsl.Prop("a"), 1), dsl.Eq(dsl.Prop("b"), 2))

	negated := render(t, dsl.Not(and))
	assert.Equal(t, "NOT BOTH (their a equals 1) AND (their b equals 2)", negated)
	assert.NotEqual(t, "not ("+render(t, and)+")", negated)

	assert.NotContains(t, render(t, dsl.Not(dsl.IsEmpty(dsl.Prop("x")))), "= null")
}

func TestStyleFallsBack(t *testing.T) {
	html := WithStyle("html")

	assert.Equal(t, "<strong>BOTH</strong> (true) <strong>AND</strong> (false)",
		render(t, dsl.And(dsl.Bool(true), dsl.Bool(false)), html))
	assert.Equal(t, "true equals false", render(t, dsl.Eq(true, false), html),
		"no equals_html, so the plain template is used")
	assert.Equal(t, "BOTH (true) AND (false)",
		render(t, dsl.And(dsl.Bool(true), dsl.Bool(false)), WithStyle("markdown")))
}

func TestGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	spanish := i18n.Default().Catalog(language.Spanish)

	nineties := dsl.And(
		dsl.Call("between", dsl.Prop("dob"), dsl.Date(1990, time.January, 1), dsl.Date(1999, time.December, 31)),
		dsl.Not(dsl.OneOf(dsl.Prop("role"), "admin", "staff")),
	)

	tests := []struct {
		name string
		e    expr.Expr
		opts []Option
	}{
		{"location_or_salary_en", locationOrSalary(), nil},
		{"location_or_salary_html", locationOrSalary(), []Option{WithStyle("html")}},
		{"location_or_salary_es", locationOrSalary(), []Option{WithCatalog(spanish)}},
		{"nineties_not_staff_en", nineties, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, []byte(render(t, tt.e, tt.opts...)))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Run("missing translation", func(t *testing.T) {
		empty := i18n.NewLocale(language.English, map[string]string{})
		_, err := Compile(dsl.And(dsl.Bool(true), dsl.Bool(false)), WithCatalog(empty))

		var missing *MissingTranslationError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "fql.both", missing.Key)
	})

	t.Run("literal needs no translation", func(t *testing.T) {
		empty := i18n.NewLocale(language.English, map[string]string{})
		out, err := Compile(dsl.Lit(3), WithCatalog(empty))
		require.NoError(t, err)
		assert.Equal(t, "3", out)
	})

	t.Run("unknown call", func(t *testing.T) {
		_, err := Compile(dsl.Call("nope"))
		assert.ErrorIs(t, err, library.ErrNotImplemented)
	})

	t.Run("nil expression", func(t *testing.T) {
		_, err := Compile(nil)
		assert.ErrorIs(t, err, expr.ErrNilExpr)
	})

	t.Run("attribute without target", func(t *testing.T) {
		_, err := Compile(&expr.Attr{Name: "x"})
		assert.ErrorContains(t, err, "attribute x has no target")
	})
}

func TestRendererIsReusable(t *testing.T) {
	r := New(WithLibrary(library.Standard()))
	first, err := r.Render(locationOrSalary())
	require.NoError(t, err)
	second, err := r.Render(locationOrSalary())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
