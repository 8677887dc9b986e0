package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fql/internal/dsl"
	"github.com/roach88/fql/internal/expr"
)

func adult(args []expr.Expr) (expr.Expr, error) {
	return dsl.Gte(args[0], 18), nil
}

func TestEmpty(t *testing.T) {
	lib := Empty()
	assert.Equal(t, 0, lib.Len())
	assert.Empty(t, lib.Names())
	assert.Equal(t, "<Library {  }>", lib.String())
}

func TestCallNotImplemented(t *testing.T) {
	lib := Empty().Register("adult", adult).Register("minor", adult)

	_, err := lib.Call("senior", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)

	var nie *NotImplementedError
	require.ErrorAs(t, err, &nie)
	assert.Equal(t, "senior", nie.Name)
	assert.Equal(t, []string{"adult", "minor"}, nie.Available)
	assert.Equal(t, `"senior" is not implemented in the library. Available functions: {adult, minor}`, err.Error())
}

func TestRegisterLastWriteWins(t *testing.T) {
	lib := Empty()
	lib.Register("flag", func([]expr.Expr) (expr.Expr, error) { return dsl.Bool(true), nil })
	lib.Register("flag", func([]expr.Expr) (expr.Expr, error) { return dsl.Bool(false), nil })

	out, err := lib.Call("flag", nil)
	require.NoError(t, err)
	assert.True(t, expr.Equal(dsl.Bool(false), out))
	assert.Equal(t, 1, lib.Len())
}

func TestCallWrapsRuleErrors(t *testing.T) {
	errBad := errors.New("bad args")
	lib := New(map[string]Rule{
		"fails":  func([]expr.Expr) (expr.Expr, error) { return nil, errBad },
		"panics": func(args []expr.Expr) (expr.Expr, error) { return args[5], nil },
		"nil":    func([]expr.Expr) (expr.Expr, error) { return nil, nil },
	})

	_, err := lib.Call("fails", nil)
	var ee *ExpansionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "fails", ee.Name)
	assert.ErrorIs(t, err, errBad)

	_, err = lib.Call("panics", nil)
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "rule panicked")

	_, err = lib.Call("nil", nil)
	assert.ErrorIs(t, err, expr.ErrNilExpr)
}

func TestCallIsDeterministic(t *testing.T) {
	lib := Empty().Register("adult", adult)
	x := dsl.Prop("age")

	a, err := lib.Call("adult", []expr.Expr{x})
	require.NoError(t, err)
	b, err := lib.Call("adult", []expr.Expr{x})
	require.NoError(t, err)

	assert.True(t, expr.Equal(a, b))
	assert.NotSame(t, a, b, "not memoized")
}

func TestExpandRecursive(t *testing.T) {
	lib := Standard().Register("working_age", func(args []expr.Expr) (expr.Expr, error) {
		return dsl.Call("between", args[0], 18, 65), nil
	})

	e := dsl.And(dsl.Call("working_age", dsl.Prop("age")), dsl.Eq(dsl.Prop("active"), true))
	out, err := lib.Expand(e)
	require.NoError(t, err)

	want := dsl.And(
		dsl.And(dsl.Gte(dsl.Prop("age"), 18), dsl.Lte(dsl.Prop("age"), 65)),
		dsl.Eq(dsl.Prop("active"), true),
	)
	assert.True(t, expr.Equal(want, out), expr.Diff(want, out))
	assert.Same(t, e.Rhs, out.(*expr.And).Rhs, "untouched subtrees are shared")
}

func TestExpandWithoutCallsReturnsSameTree(t *testing.T) {
	e := dsl.Or(dsl.Eq(dsl.Prop("a"), 1), dsl.Not(dsl.Contains(dsl.Prop("b"), "x")))
	out, err := Empty().Expand(e)
	require.NoError(t, err)
	assert.Same(t, e, out)
}

func TestExpandKeepsMetadata(t *testing.T) {
	e := dsl.Meta(dsl.Not(dsl.Call("present", dsl.Prop("name"))), map[string]any{"id": "n1"})
	out, err := Standard().Expand(e)
	require.NoError(t, err)
	assert.True(t, expr.EqualWithMeta(
		dsl.Meta(dsl.Not(dsl.Not(dsl.IsEmpty(dsl.Prop("name")))), map[string]any{"id": "n1"}),
		out,
	))
}

func TestExpandDepthLimit(t *testing.T) {
	lib := Empty()
	lib.Register("forever", func(args []expr.Expr) (expr.Expr, error) {
		return dsl.Not(dsl.Call("forever")), nil
	})

	_, err := lib.Expand(dsl.Call("forever"))
	assert.ErrorIs(t, err, ErrExpansionDepth)
}

func TestExpandRejectsMiscategorizedResult(t *testing.T) {
	lib := Empty().
		Register("name", func([]expr.Expr) (expr.Expr, error) { return dsl.Prop("name"), nil }).
		Register("check", func([]expr.Expr) (expr.Expr, error) { return dsl.Bool(true), nil }).
		Register("pred", func([]expr.Expr) (expr.Expr, error) { return dsl.Eq(1, 1), nil })

	_, err := lib.Expand(dsl.And(dsl.Call("name"), dsl.Bool(true)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call name expanded to attr, which is not a boolean expression")

	_, err = lib.Expand(dsl.Eq(dsl.Call("pred"), 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call pred expanded to eq, which is not a value expression")

	out, err := lib.Expand(dsl.Eq(dsl.Call("name"), "x"))
	require.NoError(t, err)
	assert.True(t, expr.Equal(dsl.Eq(dsl.Prop("name"), "x"), out))

	_, err = lib.ExpandBool(dsl.Call("check"))
	require.NoError(t, err)

	_, err = lib.ExpandBool(dsl.Call("name"))
	assert.Error(t, err)
}

func TestStandard(t *testing.T) {
	age, name := dsl.Prop("age"), dsl.Prop("name")

	tests := []struct {
		name     string
		call     *expr.Call
		expected expr.Expr
	}{
		{"between", dsl.Call("between", age, 18, 65), dsl.And(dsl.Gte(age, 18), dsl.Lte(age, 65))},
		{"present", dsl.Call("present", name), dsl.Not(dsl.IsEmpty(name))},
		{"blank", dsl.Call("blank", name), dsl.Or(dsl.IsEmpty(name), dsl.Eq(name, ""))},
		{"not_one_of", dsl.Call("not_one_of", name, []string{"a", "b"}), dsl.Not(dsl.OneOf(name, "a", "b"))},
		{"starts_with", dsl.Call("starts_with", name, "J.R"), dsl.Matches(name, `^J\.R`)},
		{"ends_with", dsl.Call("ends_with", name, "son"), dsl.Matches(name, `son$`)},
	}

	lib := Standard()
	assert.Equal(t, []string{"between", "blank", "ends_with", "not_one_of", "present", "starts_with"}, lib.Names())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := lib.Call(tt.call.Name, tt.call.Arguments)
			require.NoError(t, err)
			assert.True(t, expr.Equal(tt.expected, out), expr.Diff(tt.expected, out))
		})
	}
}

func TestStandardArgumentErrors(t *testing.T) {
	lib := Standard()

	tests := []struct {
		name    string
		call    *expr.Call
		message string
	}{
		{"between arity", dsl.Call("between", dsl.Prop("age"), 1), "want 3 arguments, got 2"},
		{"present of predicate", dsl.Call("present", dsl.Eq(1, 1)), "argument 1 must be a value, got eq"},
		{"not_one_of scalar", dsl.Call("not_one_of", dsl.Prop("a"), "x"), "argument 2 must be a list literal"},
		{"starts_with non-literal", dsl.Call("starts_with", dsl.Prop("a"), dsl.Var("p")), "argument 2 must be a string literal, got var"},
		{"ends_with int", dsl.Call("ends_with", dsl.Prop("a"), 3), "argument 2 must be a string literal, got int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lib.Call(tt.call.Name, tt.call.Arguments)
			var ee *ExpansionError
			require.ErrorAs(t, err, &ee)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestStandardIsIndependent(t *testing.T) {
	a := Standard()
	a.Register("extra", adult)
	assert.False(t, Standard().Has("extra"))
}
