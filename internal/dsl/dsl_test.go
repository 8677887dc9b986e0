package dsl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

func TestLit(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected ir.IRValue
	}{
		{"string", "es", ir.IRString("es")},
		{"int", 42, ir.IRInt(42)},
		{"bool", false, ir.IRBool(false)},
		{"nil", nil, ir.IRNull{}},
		{"time", time.Date(2020, time.February, 3, 4, 5, 6, 0, time.UTC), ir.NewIRDate(2020, time.February, 3)},
		{"list", []string{"a", "b"}, ir.IRArray{ir.IRString("a"), ir.IRString("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lit(tt.input).Value)
		})
	}
}

func TestLitPanics(t *testing.T) {
	assert.Panics(t, func() { Lit(1.5) })
	assert.Panics(t, func() { Lit(map[string]any{"a": 1}) })
	assert.Panics(t, func() { Lit([]any{[]any{1}}) }, "nested lists are not primitives")
}

func TestRelPanicsOnEmptyPath(t *testing.T) {
	assert.PanicsWithValue(t, "dsl: relation path must not be empty", func() { Rel() })
}

func TestRelCopiesPath(t *testing.T) {
	path := []string{"address", "city"}
	r := Rel(path...)
	path[0] = "changed"
	assert.Equal(t, []string{"address", "city"}, r.Path)
}

func TestValuePassesExpressionsThrough(t *testing.T) {
	v := Var("x")
	assert.Same(t, v, Value(v).(*expr.Var))
	assert.Equal(t, ir.IRInt(3), Value(3).(*expr.Literal).Value)
}

func TestEqWithNil(t *testing.T) {
	e := Eq(Prop("name"), nil)
	assert.True(t, expr.IsNullLiteral(e.Rhs))
	assert.True(t, expr.Equal(e, IsEmpty(Prop("name"))))
}

func TestOneOf(t *testing.T) {
	e := OneOf(Prop("role"), "admin", "staff")
	assert.Equal(t, ir.IRArray{ir.IRString("admin"), ir.IRString("staff")}, e.Set)

	empty := OneOf(Prop("role"))
	assert.NotNil(t, empty.Set)
	assert.Empty(t, empty.Set)
}

func TestAllAndAny(t *testing.T) {
	a, b, c := Eq(Prop("a"), 1), Eq(Prop("b"), 2), Eq(Prop("c"), 3)

	assert.True(t, expr.Equal(And(And(a, b), c), All(a, b, c)))
	assert.True(t, expr.Equal(Or(Or(a, b), c), Any(a, b, c)))
	assert.True(t, expr.Equal(a, All(a)))
	assert.True(t, expr.Equal(Bool(true), All()))
	assert.True(t, expr.Equal(Bool(false), Any()))
}

func TestCall(t *testing.T) {
	c := Call("between", Prop("age"), 18, 65)
	require.Len(t, c.Arguments, 3)
	assert.IsType(t, &expr.Attr{}, c.Arguments[0])
	assert.Equal(t, ir.IRInt(65), c.Arguments[2].(*expr.Literal).Value)
}

func TestMeta(t *testing.T) {
	e := Meta(Var("x"), map[string]any{"label": "X", "born": time.Date(2001, time.March, 1, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, ir.IRString("X"), e.Meta["label"])
	assert.Equal(t, ir.NewIRDate(2001, time.March, 1), e.Meta["born"])

	assert.Panics(t, func() { Meta(Var("x"), map[string]any{"bad": 0.5}) })
}
