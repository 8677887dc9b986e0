package library

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented is matched by every *NotImplementedError.
var ErrNotImplemented = errors.New("not implemented")

// ErrExpansionDepth is returned when expansion nests deeper than
// MaxExpansionDepth, usually because a rule expands into a call to itself.
var ErrExpansionDepth = errors.New("expansion depth exceeded")

// NotImplementedError reports a Call to a name the library does not have.
type NotImplementedError struct {
	Name      string
	Available []string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%q is not implemented in the library. Available functions: {%s}",
		e.Name, strings.Join(e.Available, ", "))
}

func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}

// ExpansionError reports a rule that failed while expanding Name.
type ExpansionError struct {
	Name string
	Err  error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("expanding %s: %v", e.Name, e.Err)
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}
