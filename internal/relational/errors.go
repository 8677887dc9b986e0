package relational

import (
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/schema"
)

// UnknownAssociationError reports a relation path segment that is not an
// association of the model reached so far.
type UnknownAssociationError struct {
	Model       string
	Association string
}

func (e *UnknownAssociationError) Error() string {
	return fmt.Sprintf("model %s has no association %s", e.Model, e.Association)
}

// Unwrap returns schema.ErrNoSuchAssociation.
func (e *UnknownAssociationError) Unwrap() error {
	return schema.ErrNoSuchAssociation
}

// UnboundVariableError reports a Var with no compile-time value.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("variable %q is not bound", e.Name)
}

// KindError reports a node used where its kind has no relational meaning,
// such as a relation compared as a value or a list ordered with >.
type KindError struct {
	Kind    expr.Kind
	Message string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
