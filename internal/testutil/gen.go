package testutil

import (
	"time"

	"pgregory.net/rapid"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
)

var (
	identifier = rapid.StringMatching(`[a-z][a-z_]{0,7}`)
	metaKey    = rapid.StringMatching(`[a-z]{1,5}`)
)

// Primitive draws a literal primitive: null, bool, int, string or date.
func Primitive() *rapid.Generator[ir.IRValue] {
	return rapid.OneOf(
		rapid.Just[ir.IRValue](ir.IRNull{}),
		rapid.Map(rapid.Bool(), func(b bool) ir.IRValue { return ir.IRBool(b) }),
		rapid.Map(rapid.Int64(), func(n int64) ir.IRValue { return ir.IRInt(n) }),
		rapid.Map(rapid.String(), func(s string) ir.IRValue { return ir.IRString(s) }),
		rapid.Map(rapid.IntRange(-20000, 20000), func(days int) ir.IRValue {
			return ir.DateOf(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days))
		}),
	)
}

// PrimitiveList draws a short list of primitives.
func PrimitiveList() *rapid.Generator[ir.IRArray] {
	return rapid.Map(rapid.SliceOfN(Primitive(), 0, 4), func(vs []ir.IRValue) ir.IRArray {
		return ir.IRArray(vs)
	})
}

// Meta draws metadata, usually empty.
func Meta() *rapid.Generator[ir.IRObject] {
	return rapid.Custom(func(t *rapid.T) ir.IRObject {
		if !rapid.Bool().Draw(t, "hasMeta") {
			return nil
		}
		keys := rapid.SliceOfNDistinct(metaKey, 1, 3, rapid.ID[string]).Draw(t, "metaKeys")
		out := make(ir.IRObject, len(keys))
		for _, k := range keys {
			out[k] = Primitive().Draw(t, "metaValue")
		}
		return out
	})
}

// Rel draws a relation path.
func Rel() *rapid.Generator[*expr.Rel] {
	return rapid.Custom(func(t *rapid.T) *expr.Rel {
		if rapid.Bool().Draw(t, "self") {
			return &expr.Rel{Path: []string{expr.SelfName}, Meta: Meta().Draw(t, "meta")}
		}
		path := rapid.SliceOfN(identifier, 1, 3).Draw(t, "path")
		return &expr.Rel{Path: path, Meta: Meta().Draw(t, "meta")}
	})
}

// Value draws a value expression. Call arguments recurse into Bool with a
// smaller depth.
func Value(depth int) *rapid.Generator[expr.ValueExpr] {
	return rapid.Custom(func(t *rapid.T) expr.ValueExpr {
		meta := Meta().Draw(t, "meta")
		choice := rapid.IntRange(0, 5).Draw(t, "valueKind")
		if depth <= 0 && choice == 5 {
			choice = 0
		}
		switch choice {
		case 0:
			return &expr.Literal{Value: Primitive().Draw(t, "literal"), Meta: meta}
		case 1:
			return &expr.Literal{Value: PrimitiveList().Draw(t, "list"), Meta: meta}
		case 2:
			return Rel().Draw(t, "rel")
		case 3:
			return &expr.Attr{Target: Rel().Draw(t, "target"), Name: identifier.Draw(t, "attr"), Meta: meta}
		case 4:
			return &expr.Var{Name: identifier.Draw(t, "var"), Meta: meta}
		default:
			args := rapid.SliceOfN(anyExpr(depth-1), 0, 3).Draw(t, "args")
			return &expr.Call{Name: identifier.Draw(t, "fn"), Arguments: args, Meta: meta}
		}
	})
}

func anyExpr(depth int) *rapid.Generator[expr.Expr] {
	return rapid.OneOf(
		rapid.Map(Value(depth), func(v expr.ValueExpr) expr.Expr { return v }),
		rapid.Map(Bool(depth), func(b expr.BoolExpr) expr.Expr { return b }),
	)
}

// Bool draws a boolean expression of at most the given depth.
func Bool(depth int) *rapid.Generator[expr.BoolExpr] {
	return rapid.Custom(func(t *rapid.T) expr.BoolExpr {
		meta := Meta().Draw(t, "meta")
		kinds := 11
		if depth <= 0 {
			kinds = 7
		}
		value := func(label string) expr.ValueExpr { return Value(depth-1).Draw(t, label) }
		sub := func(label string) expr.BoolExpr { return Bool(depth-1).Draw(t, label) }

		switch rapid.IntRange(0, kinds).Draw(t, "boolKind") {
		case 0:
			return &expr.Literal{Value: ir.IRBool(rapid.Bool().Draw(t, "b")), Meta: meta}
		case 1:
			if rapid.IntRange(0, 5).Draw(t, "absentRhs") == 0 {
				return &expr.Eq{Lhs: value("lhs"), Meta: meta}
			}
			return &expr.Eq{Lhs: value("lhs"), Rhs: value("rhs"), Meta: meta}
		case 2:
			return &expr.Gt{Lhs: value("lhs"), Rhs: value("rhs"), Meta: meta}
		case 3:
			return &expr.Gte{Lhs: value("lhs"), Rhs: value("rhs"), Meta: meta}
		case 4:
			return &expr.Lt{Lhs: value("lhs"), Rhs: value("rhs"), Meta: meta}
		case 5:
			return &expr.Lte{Lhs: value("lhs"), Rhs: value("rhs"), Meta: meta}
		case 6:
			return &expr.OneOf{Member: value("member"), Set: PrimitiveList().Draw(t, "set"), Meta: meta}
		case 7:
			return &expr.Contains{Lhs: value("lhs"), Rhs: rapid.String().Draw(t, "substr"), Meta: meta}
		case 8:
			return &expr.MatchesRegex{Lhs: value("lhs"), Rhs: rapid.String().Draw(t, "pattern"), Meta: meta}
		case 9:
			return &expr.And{Lhs: sub("lhs"), Rhs: sub("rhs"), Meta: meta}
		case 10:
			return &expr.Or{Lhs: sub("lhs"), Rhs: sub("rhs"), Meta: meta}
		default:
			return &expr.Not{Expr: sub("expr"), Meta: meta}
		}
	})
}
