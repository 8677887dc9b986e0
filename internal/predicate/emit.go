package predicate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/library"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Words that cannot follow a dot in CEL field selection.
var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// emitter renders every node as a self-delimiting CEL term: comparisons and
// connectives are parenthesized, so negation and nesting need no precedence
// analysis.
type emitter struct {
	lib *library.Library
}

func (m *emitter) walk(e expr.Expr) (string, error) {
	return expr.Walk[string](m, e)
}

func (m *emitter) binary(lhs, rhs expr.Expr, op string) (string, error) {
	l, err := m.walk(lhs)
	if err != nil {
		return "", err
	}
	r, err := m.walk(rhs)
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

func (m *emitter) VisitLiteral(n *expr.Literal) (string, error) {
	return literal(n.Value)
}

func literal(v ir.IRValue) (string, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "null", nil
	case ir.IRBool:
		return strconv.FormatBool(bool(val)), nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.IRString:
		return strconv.Quote(string(val)), nil
	case ir.IRDate:
		return `timestamp("` + val.Time().Format("2006-01-02T15:04:05Z") + `")`, nil
	case ir.IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			s, err := literal(elem)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", fmt.Errorf("literal of kind %s is not supported", ir.KindOf(v))
	}
}

func (m *emitter) VisitAnd(n *expr.And) (string, error) { return m.binary(n.Lhs, n.Rhs, "&&") }
func (m *emitter) VisitOr(n *expr.Or) (string, error)   { return m.binary(n.Lhs, n.Rhs, "||") }

func (m *emitter) VisitNot(n *expr.Not) (string, error) {
	inner, err := m.walk(n.Expr)
	if err != nil {
		return "", err
	}
	return "!" + inner, nil
}

func (m *emitter) VisitEq(n *expr.Eq) (string, error) {
	l, err := m.walk(n.Lhs)
	if err != nil {
		return "", err
	}
	if n.Rhs == nil || expr.IsNullLiteral(n.Rhs) {
		return "(dyn(" + l + ") == null)", nil
	}
	r, err := m.walk(n.Rhs)
	if err != nil {
		return "", err
	}
	if _, ok := expr.ListLiteral(n.Rhs); ok {
		return "(" + l + " in " + r + ")", nil
	}
	if _, ok := n.Rhs.(*expr.Var); ok {
		// Bound lists test membership, as in the relational compiler
		return "(type(" + r + ") == list ? " + l + " in " + r + " : " + l + " == " + r + ")", nil
	}
	return "(" + l + " == " + r + ")", nil
}

func (m *emitter) VisitGt(n *expr.Gt) (string, error)   { return m.binary(n.Lhs, n.Rhs, ">") }
func (m *emitter) VisitGte(n *expr.Gte) (string, error) { return m.binary(n.Lhs, n.Rhs, ">=") }
func (m *emitter) VisitLt(n *expr.Lt) (string, error)   { return m.binary(n.Lhs, n.Rhs, "<") }
func (m *emitter) VisitLte(n *expr.Lte) (string, error) { return m.binary(n.Lhs, n.Rhs, "<=") }

func (m *emitter) VisitOneOf(n *expr.OneOf) (string, error) {
	member, err := m.walk(n.Member)
	if err != nil {
		return "", err
	}
	set, err := literal(n.Set)
	if err != nil {
		return "", err
	}
	return "(" + member + " in " + set + ")", nil
}

func (m *emitter) VisitContains(n *expr.Contains) (string, error) {
	l, err := m.walk(n.Lhs)
	if err != nil {
		return "", err
	}
	needle := strconv.Quote(n.Rhs)
	return "(type(" + l + ") == list ? " + needle + " in " + l + " : " + l + ".contains(" + needle + "))", nil
}

func (m *emitter) VisitMatchesRegex(n *expr.MatchesRegex) (string, error) {
	l, err := m.walk(n.Lhs)
	if err != nil {
		return "", err
	}
	return l + ".matches(" + strconv.Quote(n.Rhs) + ")", nil
}

func (m *emitter) VisitRel(n *expr.Rel) (string, error) {
	if n.IsSelf() {
		return rootVar, nil
	}
	var b strings.Builder
	b.WriteString(rootVar)
	for _, segment := range n.Path {
		b.WriteString(selector(segment))
	}
	return b.String(), nil
}

func (m *emitter) VisitAttr(n *expr.Attr) (string, error) {
	if n.Target == nil {
		return "", fmt.Errorf("attribute %s has no target", n.Name)
	}
	target, err := m.VisitRel(n.Target)
	if err != nil {
		return "", err
	}
	return target + selector(n.Name), nil
}

func (m *emitter) VisitVar(n *expr.Var) (string, error) {
	return varsVar + "[" + strconv.Quote(n.Name) + "]", nil
}

func (m *emitter) VisitCall(n *expr.Call) (string, error) {
	expanded, err := m.lib.Expand(n)
	if err != nil {
		return "", err
	}
	return m.walk(expanded)
}

// selector is field selection for plain identifiers and map indexing for
// anything else.
func selector(name string) string {
	if identifier.MatchString(name) && !reserved[name] {
		return "." + name
	}
	return "[" + strconv.Quote(name) + "]"
}
