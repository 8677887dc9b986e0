// Package words describes FQL expressions in natural language.
//
// Every node renders through a catalog template keyed by fql.<op>. Negation
// is carried down the tree instead of being printed where it appears, so
// Not(And(a, b)) reads "NOT BOTH (a) AND (b)" and Not(Eq(x, null)) reads
// "x is not empty".
package words

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/i18n"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/library"
)

// DateLayout formats date literals.
const DateLayout = "January 02, 2006"

var defaultCatalog = sync.OnceValue(func() i18n.Catalog {
	return i18n.Default().Catalog()
})

// MissingTranslationError reports a template absent from the catalog.
type MissingTranslationError struct {
	Key string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("missing translation %s", e.Key)
}

// Renderer renders expressions with one catalog, library and style. It is
// safe for concurrent use.
type Renderer struct {
	catalog i18n.Catalog
	lib     *library.Library
	style   string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCatalog selects the catalog. The default is the built-in English one.
func WithCatalog(c i18n.Catalog) Option {
	return func(r *Renderer) { r.catalog = c }
}

// WithLibrary sets the library used to expand calls.
func WithLibrary(lib *library.Library) Option {
	return func(r *Renderer) { r.lib = lib }
}

// WithStyle prefers templates suffixed with _<style>, such as fql.both_html.
func WithStyle(style string) Option {
	return func(r *Renderer) { r.style = style }
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = defaultCatalog()
	}
	if r.lib == nil {
		r.lib = library.Empty()
	}
	return r
}

// Compile is New(opts...).Render(e).
func Compile(e expr.Expr, opts ...Option) (string, error) {
	return New(opts...).Render(e)
}

// Render describes e.
func (r *Renderer) Render(e expr.Expr) (string, error) {
	out, err := r.render(e, false)
	if err != nil {
		return "", fmt.Errorf("describe: %w", err)
	}
	return out, nil
}

func (r *Renderer) render(e expr.Expr, negated bool) (string, error) {
	return expr.Walk[string](&pass{Renderer: r, negated: negated}, e)
}

// translate looks up fql.<key>, preferring the styled variant.
func (r *Renderer) translate(key string, args map[string]string) (string, error) {
	full := "fql." + key
	if r.style != "" {
		if tmpl, ok := r.catalog.Lookup(full + "_" + r.style); ok {
			return i18n.Interpolate(tmpl, args), nil
		}
	}
	tmpl, ok := r.catalog.Lookup(full)
	if !ok {
		return "", &MissingTranslationError{Key: full}
	}
	return i18n.Interpolate(tmpl, args), nil
}

// noun is the catalog name of an identifier, or the identifier with
// underscores read as spaces.
func (r *Renderer) noun(name string) string {
	if n, ok := r.catalog.Lookup("fql.attributes." + name); ok {
		return n
	}
	return strings.ReplaceAll(name, "_", " ")
}

// pass is one level of the walk. Children always start affirmative except
// under Not, which flips the flag.
type pass struct {
	*Renderer
	negated bool
}

func (p *pass) pick(affirmative, negative string) string {
	if p.negated {
		return negative
	}
	return affirmative
}

func (p *pass) binary(key string, lhs, rhs expr.Expr) (string, error) {
	left, err := p.render(lhs, false)
	if err != nil {
		return "", err
	}
	right, err := p.render(rhs, false)
	if err != nil {
		return "", err
	}
	return p.translate(key, map[string]string{"left": left, "right": right})
}

// plain renders a node that has no negated form, wrapping it in fql.not when
// negated.
func (p *pass) plain(text string) (string, error) {
	if !p.negated {
		return text, nil
	}
	return p.translate("not", map[string]string{"expr": text})
}

func (p *pass) VisitLiteral(n *expr.Literal) (string, error) {
	text, err := literal(n.Value)
	if err != nil {
		return "", err
	}
	return p.plain(text)
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
		return `"` + string(val) + `"`, nil
	case ir.IRDate:
		return val.Time().Format(DateLayout), nil
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
		return "", fmt.Errorf("literal of kind %s cannot be described", ir.KindOf(v))
	}
}

func (p *pass) VisitAnd(n *expr.And) (string, error) {
	return p.binary(p.pick("both", "not_both"), n.Lhs, n.Rhs)
}

func (p *pass) VisitOr(n *expr.Or) (string, error) {
	return p.binary(p.pick("either", "neither"), n.Lhs, n.Rhs)
}

func (p *pass) VisitNot(n *expr.Not) (string, error) {
	return p.render(n.Expr, !p.negated)
}

func (p *pass) VisitEq(n *expr.Eq) (string, error) {
	if n.Rhs == nil || expr.IsNullLiteral(n.Rhs) {
		noun, err := p.render(n.Lhs, false)
		if err != nil {
			return "", err
		}
		return p.translate(p.pick("is_empty", "is_not_empty"), map[string]string{"noun": noun})
	}
	if _, ok := expr.ListLiteral(n.Rhs); ok {
		return p.binary(p.pick("one_of", "not_one_of"), n.Lhs, n.Rhs)
	}
	return p.binary(p.pick("equals", "does_not_equal"), n.Lhs, n.Rhs)
}

func (p *pass) VisitGt(n *expr.Gt) (string, error) {
	return p.binary(p.pick("greater_than", "not_greater_than"), n.Lhs, n.Rhs)
}

func (p *pass) VisitGte(n *expr.Gte) (string, error) {
	return p.binary(p.pick("greater_than_or_equals", "not_greater_than_or_equals"), n.Lhs, n.Rhs)
}

func (p *pass) VisitLt(n *expr.Lt) (string, error) {
	return p.binary(p.pick("less_than", "not_less_than"), n.Lhs, n.Rhs)
}

func (p *pass) VisitLte(n *expr.Lte) (string, error) {
	return p.binary(p.pick("less_than_or_equals", "not_less_than_or_equals"), n.Lhs, n.Rhs)
}

func (p *pass) VisitOneOf(n *expr.OneOf) (string, error) {
	return p.binary(p.pick("one_of", "not_one_of"), n.Member, &expr.Literal{Value: n.Set})
}

func (p *pass) VisitContains(n *expr.Contains) (string, error) {
	return p.binary(p.pick("contains", "does_not_contain"), n.Lhs, &expr.Literal{Value: ir.IRString(n.Rhs)})
}

func (p *pass) VisitMatchesRegex(n *expr.MatchesRegex) (string, error) {
	return p.binary(p.pick("matches", "does_not_match"), n.Lhs, &expr.Literal{Value: ir.IRString(n.Rhs)})
}

// VisitRel reads the path backwards: [address city] is "of the city of the
// address".
func (p *pass) VisitRel(n *expr.Rel) (string, error) {
	if n.IsSelf() {
		return p.translate("self", nil)
	}
	parts := make([]string, 0, len(n.Path))
	for i := len(n.Path) - 1; i >= 0; i-- {
		part, err := p.translate("genitive", map[string]string{"noun": p.noun(n.Path[i])})
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

func (p *pass) VisitAttr(n *expr.Attr) (string, error) {
	if n.Target == nil {
		return "", fmt.Errorf("attribute %s has no target", n.Name)
	}
	name := p.noun(n.Name)
	if n.Target.IsSelf() {
		return p.translate("own_attribute", map[string]string{"name": name})
	}
	owner, err := p.render(n.Target, false)
	if err != nil {
		return "", err
	}
	return p.translate("attribute", map[string]string{"name": name, "owner": owner})
}

func (p *pass) VisitVar(n *expr.Var) (string, error) {
	return p.translate("variable", map[string]string{"name": p.noun(n.Name)})
}

// VisitCall renders the expansion in place, so a negated call negates its
// expansion.
func (p *pass) VisitCall(n *expr.Call) (string, error) {
	expanded, err := p.lib.Expand(n)
	if err != nil {
		return "", err
	}
	return p.render(expanded, p.negated)
}
