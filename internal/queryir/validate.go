package queryir

import (
	"fmt"

	"github.com/roach88/fql/internal/ir"
)

// MaxPortableJoins is the join count above which Validate warns. Some
// engines plan long join chains poorly.
const MaxPortableJoins = 8

// ValidationResult contains portability analysis of a plan.
type ValidationResult struct {
	// IsPortable indicates the plan behaves the same on every supported
	// SQL engine.
	IsPortable bool

	// Warnings lists the non-portable constructs found. Empty when
	// IsPortable is true.
	Warnings []string
}

// Validate checks a plan for constructs whose meaning differs between SQL
// engines:
//  1. Regexp - needs a registered function on SQLite, and the pattern
//     dialect differs between engines
//  2. Like - case sensitivity differs (SQLite and MySQL fold ASCII case,
//     PostgreSQL does not)
//  3. Compare against NULL - never true; IsNull was probably intended
//  4. More than MaxPortableJoins joins
//
// Non-portable plans are allowed and will execute. Validate is a pure
// function with no side effects.
func Validate(plan Plan) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validatePlan(plan)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validatePlan(plan Plan) {
	if plan.From.Name == "" {
		v.addWarning("Plan has no base table")
	}
	if len(plan.Joins) > MaxPortableJoins {
		v.addWarning("%d joins exceed the portable limit of %d", len(plan.Joins), MaxPortableJoins)
	}

	aliases := map[string]bool{plan.From.Ref(): true}
	for _, j := range plan.Joins {
		ref := j.Table.Ref()
		if aliases[ref] {
			v.addWarning("Table reference '%s' is joined more than once", ref)
		}
		aliases[ref] = true
	}

	if plan.Where != nil {
		v.validatePredicate(plan.Where)
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addWarning("nil predicate inside a connective")
	case Truth, *Truth:
		// Constant predicates are portable
	case And:
		v.validatePair(pred.Lhs, pred.Rhs)
	case *And:
		v.validatePair(pred.Lhs, pred.Rhs)
	case Or:
		v.validatePair(pred.Lhs, pred.Rhs)
	case *Or:
		v.validatePair(pred.Lhs, pred.Rhs)
	case Not:
		v.validatePredicate(pred.Predicate)
	case *Not:
		v.validatePredicate(pred.Predicate)
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case IsNull, *IsNull, In, *In:
		// Portable
	case Like:
		v.validateLike(pred)
	case *Like:
		v.validateLike(*pred)
	case Regexp:
		v.validateRegexp(pred)
	case *Regexp:
		v.validateRegexp(*pred)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validatePair(lhs, rhs Predicate) {
	v.validatePredicate(lhs)
	v.validatePredicate(rhs)
}

func (v *validator) validateCompare(c Compare) {
	for _, o := range []Operand{c.Left, c.Right} {
		if isNullValue(o) {
			v.addWarning("Comparison '%s' against NULL is never true - use IsNull", c.Op)
			return
		}
	}
}

func (v *validator) validateLike(l Like) {
	v.addWarning("LIKE %q - case sensitivity differs between engines", l.Pattern)
}

func (v *validator) validateRegexp(r Regexp) {
	v.addWarning("Regular expression %q - pattern syntax differs between engines", r.Pattern)
}

func isNullValue(o Operand) bool {
	var val ir.IRValue
	switch op := o.(type) {
	case Value:
		val = op.Value
	case *Value:
		val = op.Value
	default:
		return false
	}
	_, isNull := val.(ir.IRNull)
	return isNull
}
