package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/fql/internal/ir"
)

// Format renders e in a compact, single-line debugging notation:
//
//	(location.country == "es" || salary.amount > $threshold)
//
// The notation is for logs and error messages only; it is not parsed back.
func Format(e Expr) string {
	s, err := Walk[string](formatter{}, e)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

// FormatValue renders a literal value in the notation used by Format.
func FormatValue(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return strconv.Quote(string(val))
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRBool:
		return strconv.FormatBool(bool(val))
	case ir.IRDate:
		return "date(" + val.String() + ")"
	case ir.IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = FormatValue(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

type formatter struct{}

func (f formatter) binary(op string, lhs, rhs Expr) (string, error) {
	return "(" + Format(lhs) + " " + op + " " + f.operand(rhs) + ")", nil
}

func (formatter) operand(e Expr) string {
	if isNil(e) {
		return "null"
	}
	return Format(e)
}

func (formatter) VisitLiteral(n *Literal) (string, error) {
	return FormatValue(n.Value), nil
}

func (f formatter) VisitAnd(n *And) (string, error) {
	return f.binary("&&", n.Lhs, n.Rhs)
}

func (f formatter) VisitOr(n *Or) (string, error) {
	return f.binary("||", n.Lhs, n.Rhs)
}

func (formatter) VisitNot(n *Not) (string, error) {
	return "!" + Format(n.Expr), nil
}

func (f formatter) VisitEq(n *Eq) (string, error) {
	return f.binary("==", n.Lhs, n.Rhs)
}

func (f formatter) VisitGt(n *Gt) (string, error) {
	return f.binary(">", n.Lhs, n.Rhs)
}

func (f formatter) VisitGte(n *Gte) (string, error) {
	return f.binary(">=", n.Lhs, n.Rhs)
}

func (f formatter) VisitLt(n *Lt) (string, error) {
	return f.binary("<", n.Lhs, n.Rhs)
}

func (f formatter) VisitLte(n *Lte) (string, error) {
	return f.binary("<=", n.Lhs, n.Rhs)
}

func (formatter) VisitOneOf(n *OneOf) (string, error) {
	return "(" + Format(n.Member) + " in " + FormatValue(n.Set) + ")", nil
}

func (formatter) VisitContains(n *Contains) (string, error) {
	return "(" + Format(n.Lhs) + " contains " + strconv.Quote(n.Rhs) + ")", nil
}

func (formatter) VisitMatchesRegex(n *MatchesRegex) (string, error) {
	return "(" + Format(n.Lhs) + " =~ /" + n.Rhs + "/)", nil
}

func (formatter) VisitRel(n *Rel) (string, error) {
	return strings.Join(n.Path, "."), nil
}

func (formatter) VisitAttr(n *Attr) (string, error) {
	if n.Target == nil {
		return n.Name, nil
	}
	return strings.Join(n.Target.Path, ".") + "." + n.Name, nil
}

func (formatter) VisitVar(n *Var) (string, error) {
	return "$" + n.Name, nil
}

func (formatter) VisitCall(n *Call) (string, error) {
	args := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = Format(a)
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")", nil
}
