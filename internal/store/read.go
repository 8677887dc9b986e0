package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/fql/internal/expr"
	"github.com/roach88/fql/internal/outcome"
)

// SavedQuery is a named expression over a model.
type SavedQuery struct {
	ID          string
	Name        string
	Model       string
	Expr        expr.Expr
	Fingerprint string
	Seq         int64
	CreatedAt   time.Time
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const selectSavedQuery = `
	SELECT id, name, model, expression, fingerprint, seq, created_at
	FROM saved_queries
`

// GetQuery retrieves a saved query by name.
// Returns an error wrapping ErrNotFound if there is none, and one wrapping
// ErrCorrupt or *serde.Errors if the stored expression cannot be decoded.
func (s *Store) GetQuery(ctx context.Context, name string) (SavedQuery, error) {
	row := s.db.QueryRowContext(ctx, selectSavedQuery+`WHERE name = ?`, name)

	result, err := scanSavedQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedQuery{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return SavedQuery{}, err
	}

	q, err := result.Get()
	if err != nil {
		return SavedQuery{}, fmt.Errorf("saved query %s: %w", name, err)
	}
	return q, nil
}

// ListQueries returns every saved query ordered by seq ASC, id ASC COLLATE
// BINARY. Each entry is decoded separately, so one corrupt row is reported
// in its own Outcome without hiding the others.
//
// Returns an empty slice (not nil) if the catalog is empty.
func (s *Store) ListQueries(ctx context.Context) ([]outcome.Outcome[SavedQuery], error) {
	rows, err := s.db.QueryContext(ctx, selectSavedQuery+`ORDER BY seq ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query saved queries: %w", err)
	}
	defer rows.Close()

	out := []outcome.Outcome[SavedQuery]{}
	for rows.Next() {
		q, err := scanSavedQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved queries: %w", err)
	}
	return out, nil
}

// QueriesByFingerprint returns the names of saved queries whose expression
// has the given fingerprint, in listing order.
func (s *Store) QueriesByFingerprint(ctx context.Context, fingerprint string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM saved_queries
		WHERE fingerprint = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return names, nil
}

// scanSavedQuery reads one row. Scan failures are returned as errors;
// decoding failures become an error Outcome.
func scanSavedQuery(row rowScanner) (outcome.Outcome[SavedQuery], error) {
	var (
		q          SavedQuery
		expression string
		createdAt  string
	)
	if err := row.Scan(&q.ID, &q.Name, &q.Model, &expression, &q.Fingerprint, &q.Seq, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outcome.Outcome[SavedQuery]{}, err
		}
		return outcome.Outcome[SavedQuery]{}, fmt.Errorf("scan saved query: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return outcome.Error[SavedQuery]("saved query "+q.Name+": bad created_at", fmt.Errorf("%w: %w", ErrCorrupt, err)), nil
	}
	q.CreatedAt = ts

	return outcome.Map(unmarshalExpression(expression, q.Fingerprint), func(e expr.Expr) SavedQuery {
		q.Expr = e
		return q
	}), nil
}
