package queryir

import (
	"fmt"

	"github.com/roach88/fql/internal/ir"
)

// Pointer returns p in its pointer form, so callers can switch over pointer
// cases only. Nil and unknown predicates are returned unchanged.
func Pointer(p Predicate) Predicate {
	switch v := p.(type) {
	case Truth:
		return &v
	case And:
		return &v
	case Or:
		return &v
	case Not:
		return &v
	case Compare:
		return &v
	case IsNull:
		return &v
	case In:
		return &v
	case Like:
		return &v
	case Regexp:
		return &v
	}
	return p
}

// Tree encodes the plan as an IR value, for display and fingerprinting.
//
//	{"distinct":true,"from":{"name":"users"},"joins":[...],"where":{"op":"=",...}}
func (p Plan) Tree() (ir.IRObject, error) {
	joins := make(ir.IRArray, len(p.Joins))
	for i, j := range p.Joins {
		joins[i] = ir.IRObject{
			"table":  tableTree(j.Table),
			"parent": columnTree(j.Parent),
			"child":  columnTree(j.Child),
		}
	}

	out := ir.IRObject{
		"from":     tableTree(p.From),
		"joins":    joins,
		"distinct": ir.IRBool(p.Distinct),
	}
	if p.Where != nil {
		where, err := PredicateTree(p.Where)
		if err != nil {
			return nil, err
		}
		out["where"] = where
	}
	return out, nil
}

// Fingerprint is the content-addressed identity of the plan.
func (p Plan) Fingerprint() (string, error) {
	tree, err := p.Tree()
	if err != nil {
		return "", err
	}
	return ir.Fingerprint(ir.DomainPlan, tree)
}

func tableTree(t Table) ir.IRObject {
	out := ir.IRObject{"name": ir.IRString(t.Name)}
	if t.Alias != "" {
		out["alias"] = ir.IRString(t.Alias)
	}
	return out
}

func columnTree(c Column) ir.IRObject {
	return ir.IRObject{"table": ir.IRString(c.Table), "column": ir.IRString(c.Name)}
}

// PredicateTree encodes a predicate as an IR value.
func PredicateTree(pred Predicate) (ir.IRValue, error) {
	switch p := Pointer(pred).(type) {
	case nil:
		return nil, fmt.Errorf("nil predicate")
	case *Truth:
		return ir.IRObject{"op": ir.IRString("truth"), "value": ir.IRBool(p.Value)}, nil
	case *And:
		return binaryTree("and", p.Lhs, p.Rhs)
	case *Or:
		return binaryTree("or", p.Lhs, p.Rhs)
	case *Not:
		inner, err := PredicateTree(p.Predicate)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{"op": ir.IRString("not"), "predicate": inner}, nil
	case *Compare:
		left, err := operandTree(p.Left)
		if err != nil {
			return nil, err
		}
		right, err := operandTree(p.Right)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{"op": ir.IRString(string(p.Op)), "left": left, "right": right}, nil
	case *IsNull:
		operand, err := operandTree(p.Operand)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{"op": ir.IRString("is_null"), "operand": operand}, nil
	case *In:
		operand, err := operandTree(p.Operand)
		if err != nil {
			return nil, err
		}
		values := make(ir.IRArray, len(p.Values))
		copy(values, p.Values)
		return ir.IRObject{"op": ir.IRString("in"), "operand": operand, "values": values}, nil
	case *Like:
		return patternTree("like", p.Operand, p.Pattern)
	case *Regexp:
		return patternTree("regexp", p.Operand, p.Pattern)
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", pred)
	}
}

func binaryTree(op string, lhs, rhs Predicate) (ir.IRValue, error) {
	l, err := PredicateTree(lhs)
	if err != nil {
		return nil, err
	}
	r, err := PredicateTree(rhs)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"op": ir.IRString(op), "lhs": l, "rhs": r}, nil
}

func patternTree(op string, operand Operand, pattern string) (ir.IRValue, error) {
	o, err := operandTree(operand)
	if err != nil {
		return nil, err
	}
	return ir.IRObject{"op": ir.IRString(op), "operand": o, "pattern": ir.IRString(pattern)}, nil
}

func operandTree(o Operand) (ir.IRValue, error) {
	switch v := o.(type) {
	case Column:
		return columnTree(v), nil
	case *Column:
		return columnTree(*v), nil
	case Value:
		return valueTree(v.Value)
	case *Value:
		return valueTree(v.Value)
	default:
		return nil, fmt.Errorf("unsupported operand type: %T", o)
	}
}

func valueTree(v ir.IRValue) (ir.IRValue, error) {
	if v == nil {
		return nil, fmt.Errorf("value operand without a value")
	}
	return ir.IRObject{"value": v}, nil
}
