// Package library holds the caller-owned registry of named macro rules that
// expand Call nodes into other expressions.
//
// A Library is built once and then shared: registration must finish before
// any backend starts compiling with it. Lookups take no locks.
package library

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/fql/internal/expr"
)

// Rule expands the arguments of a Call into an expression. A rule reports
// bad arguments through its error; it must not mutate args.
type Rule func(args []expr.Expr) (expr.Expr, error)

// Library maps function names to rules. The zero value is not usable; use
// New or Empty.
type Library struct {
	rules map[string]Rule
}

// New returns a library containing the given rules.
func New(rules map[string]Rule) *Library {
	lib := Empty()
	for name, rule := range rules {
		lib.Register(name, rule)
	}
	return lib
}

// Empty returns a library with no functions.
func Empty() *Library {
	return &Library{rules: make(map[string]Rule)}
}

// Register adds or replaces the rule for name. The last registration wins.
// It returns l for chaining.
func (l *Library) Register(name string, rule Rule) *Library {
	l.rules[name] = rule
	return l
}

// Has reports whether name is registered.
func (l *Library) Has(name string) bool {
	_, ok := l.rules[name]
	return ok
}

// Names returns the registered function names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.rules))
	for name := range l.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered functions.
func (l *Library) Len() int { return len(l.rules) }

// Call expands a single invocation. The result may itself contain Call
// nodes; use Expand to resolve those too.
//
// A missing function is a *NotImplementedError. A rule that fails or panics
// is reported as an *ExpansionError.
func (l *Library) Call(name string, args []expr.Expr) (out expr.Expr, err error) {
	rule, ok := l.rules[name]
	if !ok {
		return nil, &NotImplementedError{Name: name, Available: l.Names()}
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ExpansionError{Name: name, Err: fmt.Errorf("rule panicked: %v", r)}
		}
	}()

	out, err = rule(args)
	if err != nil {
		return nil, &ExpansionError{Name: name, Err: err}
	}
	if out == nil {
		return nil, &ExpansionError{Name: name, Err: expr.ErrNilExpr}
	}
	return out, nil
}

// String lists the registered names, e.g. "<Library { between, present }>".
func (l *Library) String() string {
	return "<Library { " + strings.Join(l.Names(), ", ") + " }>"
}
