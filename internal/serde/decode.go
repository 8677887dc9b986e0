package serde

import (
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/outcome"
)

// Deserialize rebuilds an expression from its tagged tree. Any problem in the
// tree yields an Error outcome whose cause is an *Errors listing all of them.
func Deserialize(tree ir.IRValue) outcome.Outcome[expr.Expr] {
	d := &decoder{}
	e := d.expr(tree, "$")
	return d.result(e)
}

// DeserializeBool is Deserialize for a query root, which must be a boolean
// expression.
func DeserializeBool(tree ir.IRValue) outcome.Outcome[expr.BoolExpr] {
	d := &decoder{}
	e := d.bool(tree, "$")
	return outcome.Map(d.result(e), func(e expr.Expr) expr.BoolExpr { return e.(expr.BoolExpr) })
}

// Unmarshal parses JSON and deserializes it.
func Unmarshal(data []byte) outcome.Outcome[expr.Expr] {
	return outcome.Bind(parse(data), Deserialize)
}

// UnmarshalBool parses JSON and deserializes a query root.
func UnmarshalBool(data []byte) outcome.Outcome[expr.BoolExpr] {
	return outcome.Bind(parse(data), DeserializeBool)
}

func parse(data []byte) outcome.Outcome[ir.IRValue] {
	tree, err := ir.ParseJSON(data)
	if err != nil {
		return outcome.Error[ir.IRValue]("invalid JSON: "+err.Error(), err)
	}
	return outcome.Ok(tree)
}

// DecodeValue reverses EncodeValue: tagged date objects become IRDate at any
// depth. Malformed date tags are left as objects.
func DecodeValue(v ir.IRValue) ir.IRValue {
	switch val := v.(type) {
	case ir.IRArray:
		out := make(ir.IRArray, len(val))
		for i, elem := range val {
			out[i] = DecodeValue(elem)
		}
		return out
	case ir.IRObject:
		if d, ok := dateTag(val); ok {
			return d
		}
		out := make(ir.IRObject, len(val))
		for k, elem := range val {
			out[k] = DecodeValue(elem)
		}
		return out
	default:
		return v
	}
}

func dateTag(obj ir.IRObject) (ir.IRDate, bool) {
	if op, _ := obj[fieldOp].(ir.IRString); op != tagDate || len(obj) != 2 {
		return ir.IRDate{}, false
	}
	s, ok := obj[fieldValue].(ir.IRString)
	if !ok {
		return ir.IRDate{}, false
	}
	d, err := ir.ParseIRDate(string(s))
	return d, err == nil
}

type decoder struct {
	errs []*FieldError
}

func (d *decoder) fail(path, format string, args ...any) {
	d.errs = append(d.errs, &FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) result(e expr.Expr) outcome.Outcome[expr.Expr] {
	if len(d.errs) > 0 {
		err := &Errors{Fields: d.errs}
		return outcome.Error[expr.Expr]("deserialize: "+err.Error(), err)
	}
	return outcome.Ok(e)
}

// expr decodes any node. It returns nil after recording an error.
func (d *decoder) expr(v ir.IRValue, path string) expr.Expr {
	switch val := v.(type) {
	case nil:
		d.fail(path, "missing")
		return nil
	case ir.IRObject:
		return d.node(val, path)
	default:
		if lit := d.leaf(v, path); lit != nil {
			return lit
		}
		return nil
	}
}

// bool decodes a node in a boolean position.
func (d *decoder) bool(v ir.IRValue, path string) expr.BoolExpr {
	e := d.expr(v, path)
	if e == nil {
		return nil
	}
	if lit, ok := e.(*expr.Literal); ok {
		if _, isBool := lit.Value.(ir.IRBool); !isBool {
			d.fail(path, "expected a boolean expression, got a %s literal", ir.KindOf(lit.Value))
			return nil
		}
	}
	b, ok := e.(expr.BoolExpr)
	if !ok {
		d.fail(path, "expected a boolean expression, got %s", e.Kind())
		return nil
	}
	return b
}

// value decodes a node in a value position.
func (d *decoder) value(v ir.IRValue, path string) expr.ValueExpr {
	e := d.expr(v, path)
	if e == nil {
		return nil
	}
	ve, ok := e.(expr.ValueExpr)
	if !ok {
		d.fail(path, "expected a value expression, got %s", e.Kind())
		return nil
	}
	return ve
}

// leaf decodes a bare primitive or list literal.
func (d *decoder) leaf(v ir.IRValue, path string) *expr.Literal {
	val, ok := d.literalValue(v, path)
	if !ok {
		return nil
	}
	return &expr.Literal{Value: val}
}

func (d *decoder) literalValue(v ir.IRValue, path string) (ir.IRValue, bool) {
	switch val := v.(type) {
	case ir.IRNull, ir.IRString, ir.IRInt, ir.IRBool, ir.IRDate:
		return val, true
	case ir.IRArray:
		out := make(ir.IRArray, len(val))
		ok := true
		for i, elem := range val {
			p, good := d.primitive(elem, fmt.Sprintf("%s[%d]", path, i))
			out[i] = p
			ok = ok && good
		}
		return out, ok
	case ir.IRObject:
		if op, _ := val[fieldOp].(ir.IRString); op == tagDate {
			return d.date(val, path)
		}
		d.fail(path, "expected a literal, got an object")
		return nil, false
	default:
		d.fail(path, "unsupported value %T", v)
		return nil, false
	}
}

func (d *decoder) primitive(v ir.IRValue, path string) (ir.IRValue, bool) {
	switch val := v.(type) {
	case ir.IRNull, ir.IRString, ir.IRInt, ir.IRBool, ir.IRDate:
		return val, true
	case ir.IRObject:
		if op, _ := val[fieldOp].(ir.IRString); op == tagDate {
			return d.date(val, path)
		}
	}
	d.fail(path, "expected a primitive, got %s", ir.KindOf(v))
	return nil, false
}

func (d *decoder) date(obj ir.IRObject, path string) (ir.IRValue, bool) {
	s, ok := obj[fieldValue].(ir.IRString)
	if !ok {
		d.fail(path+"."+fieldValue, "date value must be a string")
		return nil, false
	}
	date, err := ir.ParseIRDate(string(s))
	if err != nil {
		d.fail(path+"."+fieldValue, "%v", err)
		return nil, false
	}
	return date, true
}

func (d *decoder) str(obj ir.IRObject, field, path string) (string, bool) {
	s, ok := obj[field].(ir.IRString)
	if !ok {
		d.fail(path+"."+field, "expected a string, got %s", ir.KindOf(obj[field]))
		return "", false
	}
	return string(s), true
}

func (d *decoder) meta(obj ir.IRObject, path string) (ir.IRObject, bool) {
	raw, present := obj[fieldMetadata]
	if !present {
		return nil, true
	}
	m, ok := raw.(ir.IRObject)
	if !ok {
		d.fail(path+"."+fieldMetadata, "expected an object, got %s", ir.KindOf(raw))
		return nil, false
	}
	if len(m) == 0 {
		return nil, true
	}
	out := make(ir.IRObject, len(m))
	for k, v := range m {
		out[k] = DecodeValue(v)
	}
	return out, true
}

// node decodes a tagged object. Every field is decoded even after an error,
// so one pass reports all problems.
func (d *decoder) node(obj ir.IRObject, path string) expr.Expr {
	rawOp, present := obj[fieldOp]
	if !present {
		d.fail(path, "object has no %q tag", fieldOp)
		return nil
	}
	op, ok := rawOp.(ir.IRString)
	if !ok {
		d.fail(path+"."+fieldOp, "expected a string, got %s", ir.KindOf(rawOp))
		return nil
	}

	before := len(d.errs)
	meta, _ := d.meta(obj, path)
	at := func(field string) string { return path + "." + field }

	var out expr.Expr
	switch expr.Kind(op) {
	case expr.KindAnd:
		out = &expr.And{Lhs: d.bool(obj[fieldLhs], at(fieldLhs)), Rhs: d.bool(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindOr:
		out = &expr.Or{Lhs: d.bool(obj[fieldLhs], at(fieldLhs)), Rhs: d.bool(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindNot:
		out = &expr.Not{Expr: d.bool(obj[fieldExpr], at(fieldExpr)), Meta: meta}
	case expr.KindEq:
		lhs := d.value(obj[fieldLhs], at(fieldLhs))
		var rhs expr.ValueExpr = &expr.Literal{Value: ir.IRNull{}}
		if raw, ok := obj[fieldRhs]; ok {
			rhs = d.value(raw, at(fieldRhs))
		}
		out = &expr.Eq{Lhs: lhs, Rhs: rhs, Meta: meta}
	case expr.KindGt:
		out = &expr.Gt{Lhs: d.value(obj[fieldLhs], at(fieldLhs)), Rhs: d.value(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindGte:
		out = &expr.Gte{Lhs: d.value(obj[fieldLhs], at(fieldLhs)), Rhs: d.value(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindLt:
		out = &expr.Lt{Lhs: d.value(obj[fieldLhs], at(fieldLhs)), Rhs: d.value(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindLte:
		out = &expr.Lte{Lhs: d.value(obj[fieldLhs], at(fieldLhs)), Rhs: d.value(obj[fieldRhs], at(fieldRhs)), Meta: meta}
	case expr.KindOneOf:
		member := d.value(obj[fieldMember], at(fieldMember))
		set, ok := obj[fieldSet].(ir.IRArray)
		if !ok {
			d.fail(at(fieldSet), "expected a list, got %s", ir.KindOf(obj[fieldSet]))
		}
		vals, _ := d.literalValue(orEmpty(set), at(fieldSet))
		arr, _ := vals.(ir.IRArray)
		out = &expr.OneOf{Member: member, Set: arr, Meta: meta}
	case expr.KindContains:
		lhs := d.value(obj[fieldLhs], at(fieldLhs))
		rhs, _ := d.str(obj, fieldRhs, path)
		out = &expr.Contains{Lhs: lhs, Rhs: rhs, Meta: meta}
	case expr.KindMatchesRegex:
		lhs := d.value(obj[fieldLhs], at(fieldLhs))
		rhs, _ := d.str(obj, fieldRhs, path)
		out = &expr.MatchesRegex{Lhs: lhs, Rhs: rhs, Meta: meta}
	case expr.KindRel:
		out = d.rel(obj, path, meta)
	case expr.KindAttr:
		var target *expr.Rel
		if t, ok := obj[fieldTarget].(ir.IRObject); ok && t[fieldOp] == ir.IRString(expr.KindRel) {
			m, _ := d.meta(t, at(fieldTarget))
			target = d.rel(t, at(fieldTarget), m)
		} else {
			d.fail(at(fieldTarget), "expected a rel, got %s", describe(obj[fieldTarget]))
		}
		name, _ := d.str(obj, fieldName, path)
		out = &expr.Attr{Target: target, Name: name, Meta: meta}
	case expr.KindVar:
		name, _ := d.str(obj, fieldName, path)
		out = &expr.Var{Name: name, Meta: meta}
	case expr.KindCall:
		name, _ := d.str(obj, fieldName, path)
		var args []expr.Expr
		switch raw := obj[fieldArguments].(type) {
		case nil:
		case ir.IRArray:
			args = make([]expr.Expr, len(raw))
			for i, a := range raw {
				args[i] = d.expr(a, fmt.Sprintf("%s[%d]", at(fieldArguments), i))
			}
		default:
			d.fail(at(fieldArguments), "expected a list, got %s", ir.KindOf(raw))
		}
		out = &expr.Call{Name: name, Arguments: args, Meta: meta}
	case expr.KindLiteral:
		raw, ok := obj[fieldValue]
		if !ok {
			d.fail(at(fieldValue), "missing")
			return nil
		}
		val, _ := d.literalValue(raw, at(fieldValue))
		out = &expr.Literal{Value: val, Meta: meta}
	case tagDate:
		val, _ := d.date(obj, path)
		out = &expr.Literal{Value: val, Meta: meta}
	default:
		d.fail(at(fieldOp), "unrecognized op %q", string(op))
		return nil
	}

	if len(d.errs) > before {
		return nil
	}
	return out
}

func (d *decoder) rel(obj ir.IRObject, path string, meta ir.IRObject) *expr.Rel {
	raw, ok := obj[fieldName].(ir.IRArray)
	if !ok {
		d.fail(path+"."+fieldName, "expected a list of names, got %s", ir.KindOf(obj[fieldName]))
		return nil
	}
	if len(raw) == 0 {
		d.fail(path+"."+fieldName, "relation path must not be empty")
		return nil
	}
	segs := make([]string, len(raw))
	good := true
	for i, seg := range raw {
		s, ok := seg.(ir.IRString)
		if !ok {
			d.fail(fmt.Sprintf("%s.%s[%d]", path, fieldName, i), "expected a string, got %s", ir.KindOf(seg))
			good = false
			continue
		}
		segs[i] = string(s)
	}
	if !good {
		return nil
	}
	return &expr.Rel{Path: segs, Meta: meta}
}

func describe(v ir.IRValue) string {
	if obj, ok := v.(ir.IRObject); ok {
		if op, ok := obj[fieldOp].(ir.IRString); ok {
			return string(op)
		}
	}
	return ir.KindOf(v)
}
