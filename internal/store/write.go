package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/fql/internal/expr"
)

// SaveQuery stores e under name as a query over model. Saving under an
// existing name replaces the expression, keeps the ID and moves the query
// to the end of the listing order.
//
// The expression is serialized to canonical JSON per RFC 8785 and stored
// with its fingerprint.
func (s *Store) SaveQuery(ctx context.Context, name, model string, e expr.Expr) (SavedQuery, error) {
	if name == "" {
		return SavedQuery{}, fmt.Errorf("save query: name is required")
	}
	if model == "" {
		return SavedQuery{}, fmt.Errorf("save query %s: model is required", name)
	}

	data, fp, err := marshalExpression(e)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("save query %s: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_queries
		(id, name, model, expression, fingerprint, seq, created_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM saved_queries), ?)
		ON CONFLICT(name) DO UPDATE SET
			model = excluded.model,
			expression = excluded.expression,
			fingerprint = excluded.fingerprint,
			seq = excluded.seq,
			created_at = excluded.created_at
	`,
		s.newID(),
		name,
		model,
		data,
		fp,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("save query %s: %w", name, err)
	}
	slog.Debug("query saved", "name", name, "model", model, "fingerprint", fp)

	return s.GetQuery(ctx, name)
}

// DeleteQuery removes a saved query. Returns ErrNotFound if none has that
// name.
func (s *Store) DeleteQuery(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete query %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete query %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
