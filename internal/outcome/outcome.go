// Package outcome provides Outcome, the two-variant result used by fallible
// operations that must never panic: deserialization and query loading.
//
// An Outcome is either Ok (carrying a value) or Error (carrying a message and
// an optional cause). Map and Bind chain steps; the first error short-circuits
// every later step unchanged.
package outcome

import (
	"errors"
	"fmt"
)

// ErrFailed is the cause reported by an Error outcome constructed without one.
var ErrFailed = errors.New("outcome failed")

// Outcome is Ok(value) or Error(message, cause). The zero value is Ok with the
// zero T.
type Outcome[T any] struct {
	value   T
	failed  bool
	message string
	cause   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Error builds a failed outcome. cause may be nil.
func Error[T any](message string, cause error) Outcome[T] {
	return Outcome[T]{failed: true, message: message, cause: cause}
}

// FromErr returns Ok(v) when err is nil and Error(err.Error(), err) otherwise.
func FromErr[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Error[T](err.Error(), err)
	}
	return Ok(v)
}

// IsOk reports whether the outcome carries a value.
func (o Outcome[T]) IsOk() bool { return !o.failed }

// IsError reports whether the outcome failed.
func (o Outcome[T]) IsError() bool { return o.failed }

// Value returns the carried value, or the zero T for an error.
func (o Outcome[T]) Value() T { return o.value }

// Message returns the error message, or "" for Ok.
func (o Outcome[T]) Message() string { return o.message }

// Err returns nil for Ok. For an error it returns an error whose message is
// the outcome message and which unwraps to the cause (or ErrFailed).
func (o Outcome[T]) Err() error {
	if !o.failed {
		return nil
	}
	return &Failure{Message: o.message, Cause: o.cause}
}

// Get returns the value and Err().
func (o Outcome[T]) Get() (T, error) {
	return o.value, o.Err()
}

// Unwrap returns the value, or panics with the carried cause. An error
// without a cause panics with a generic failure naming the message.
func (o Outcome[T]) Unwrap() T {
	if !o.failed {
		return o.value
	}
	if o.cause != nil {
		panic(o.cause)
	}
	panic(fmt.Errorf("%w: %s", ErrFailed, o.message))
}

// String implements fmt.Stringer.
func (o Outcome[T]) String() string {
	if o.failed {
		return fmt.Sprintf("Error(%s)", o.message)
	}
	return fmt.Sprintf("Ok(%v)", o.value)
}

// Failure is the error form of a failed Outcome.
type Failure struct {
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Message == "" && f.Cause != nil {
		return f.Cause.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	if f.Cause == nil {
		return ErrFailed
	}
	return f.Cause
}

// Map transforms an Ok value. Errors propagate unchanged.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	if o.failed {
		return Outcome[U]{failed: true, message: o.message, cause: o.cause}
	}
	return Ok(fn(o.value))
}

// Bind chains a fallible step. Errors propagate unchanged and fn is not
// called.
func Bind[T, U any](o Outcome[T], fn func(T) Outcome[U]) Outcome[U] {
	if o.failed {
		return Outcome[U]{failed: true, message: o.message, cause: o.cause}
	}
	return fn(o.value)
}

// Collect turns a slice of outcomes into an outcome of a slice. When any
// element failed, the result is a single error joining every failure in
// order, so no partial slice is ever returned.
func Collect[T any](outcomes []Outcome[T]) Outcome[[]T] {
	values := make([]T, 0, len(outcomes))
	var errs []error
	var messages []string
	for _, o := range outcomes {
		if o.failed {
			errs = append(errs, o.Err())
			messages = append(messages, o.message)
			continue
		}
		values = append(values, o.value)
	}
	if len(errs) > 0 {
		return Error[[]T](joinMessages(messages), errors.Join(errs...))
	}
	return Ok(values)
}

func joinMessages(messages []string) string {
	if len(messages) == 1 {
		return messages[0]
	}
	out := fmt.Sprintf("%d errors:", len(messages))
	for _, m := range messages {
		out += "\n  " + m
	}
	return out
}
