package serde

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every deserialization error.
var ErrMalformed = errors.New("malformed expression tree")

// FieldError is one problem at one location of the tree. Path uses
// JSONPath-like notation: $.lhs.target, $.arguments[2].
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Path + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrMalformed
}

// Errors is every FieldError found in one Deserialize call, in tree order.
type Errors struct {
	Fields []*FieldError
}

func (e *Errors) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Error()
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Fields), strings.Join(parts, "; "))
}

func (e *Errors) Unwrap() []error {
	out := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f
	}
	return out
}

// Paths returns the path of every field error.
func (e *Errors) Paths() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Path
	}
	return out
}
