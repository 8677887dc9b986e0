package store

import (
	"errors"
	"fmt"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/outcome"
	"github.com/roach88/fql/internal/serde"
)

var (
	// ErrNotFound is returned when no saved query has the requested name.
	ErrNotFound = errors.New("saved query not found")

	// ErrCorrupt is returned when a stored expression does not match its
	// fingerprint or cannot be decoded.
	ErrCorrupt = errors.New("corrupt saved query")
)

// marshalExpression converts an expression to canonical JSON TEXT and its
// fingerprint. Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalExpression(e expr.Expr) (string, string, error) {
	tree, err := serde.Serialize(e)
	if err != nil {
		return "", "", fmt.Errorf("marshal expression: %w", err)
	}
	data, err := ir.MarshalCanonical(tree)
	if err != nil {
		return "", "", fmt.Errorf("marshal expression: %w", err)
	}
	fp, err := ir.Fingerprint(ir.DomainExpression, tree)
	if err != nil {
		return "", "", fmt.Errorf("marshal expression: %w", err)
	}
	return string(data), fp, nil
}

// unmarshalExpression parses stored JSON TEXT, checks it against the stored
// fingerprint, then decodes it through the serde codec.
func unmarshalExpression(data, fingerprint string) outcome.Outcome[expr.Expr] {
	tree, err := ir.ParseJSON([]byte(data))
	if err != nil {
		return outcome.Error[expr.Expr]("unmarshal expression: "+err.Error(), fmt.Errorf("%w: %w", ErrCorrupt, err))
	}

	fp, err := ir.Fingerprint(ir.DomainExpression, tree)
	if err != nil {
		return outcome.Error[expr.Expr]("unmarshal expression: "+err.Error(), fmt.Errorf("%w: %w", ErrCorrupt, err))
	}
	if fp != fingerprint {
		return outcome.Error[expr.Expr]("unmarshal expression: fingerprint mismatch", ErrCorrupt)
	}

	return serde.Deserialize(tree)
}
