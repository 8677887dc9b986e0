package store

import (
	"context"
	"fmt"

	"github.com/roach88/fql/internal/library"
	"github.com/roach88/fql/internal/relational"
	"github.com/roach88/fql/internal/schema"
)

// RunQuery loads a saved query, compiles it against the schema with vars and
// lib, and executes it.
func (s *Store) RunQuery(ctx context.Context, name string, provider schema.Provider, vars map[string]any, lib *library.Library, opts ...ExecOption) (*Rows, error) {
	q, err := s.GetQuery(ctx, name)
	if err != nil {
		return nil, err
	}
	plan, err := relational.Compile(provider, q.Model, q.Expr, vars, lib)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return s.Execute(ctx, *plan, opts...)
}
