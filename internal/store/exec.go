package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/fql/internal/queryir"
	"github.com/roach88/fql/internal/querysql"
)

// Executor runs plans against a database/sql connection.
type Executor struct {
	db      *sql.DB
	dialect querysql.Dialect
}

// NewExecutor wraps an open database. The dialect must match the driver.
func NewExecutor(db *sql.DB, dialect querysql.Dialect) *Executor {
	return &Executor{db: db, dialect: dialect}
}

// Connect opens a database through any registered driver, for example
// "pgx" with DialectPostgres or "mysql" with DialectMySQL, and verifies the
// connection.
func Connect(ctx context.Context, driver, dsn string, dialect querysql.Dialect) (*Executor, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewExecutor(db, dialect), nil
}

// Close closes the database connection.
func (e *Executor) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Executor methods when available.
func (e *Executor) DB() *sql.DB {
	return e.db
}

// Dialect returns the SQL dialect plans are rendered in.
func (e *Executor) Dialect() querysql.Dialect {
	return e.dialect
}

// ExecOption adjusts how a plan is rendered for execution.
type ExecOption func(*querysql.SQLCompiler)

// OrderBy sorts the result by a column of the base table.
func OrderBy(column string) ExecOption {
	return func(c *querysql.SQLCompiler) { c.OrderBy = column }
}

// Rows is a materialized result. Columns keeps the order the database
// reported; each entry of Values lines up with it.
type Rows struct {
	Columns []string
	Values  [][]any
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.Values) }

// Maps returns each row keyed by column name.
func (r *Rows) Maps() []map[string]any {
	out := make([]map[string]any, len(r.Values))
	for i, row := range r.Values {
		m := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}

// Execute renders plan for the executor's dialect and runs it.
// TEXT and BLOB values are returned as strings.
func (e *Executor) Execute(ctx context.Context, plan queryir.Plan, opts ...ExecOption) (*Rows, error) {
	compiler := querysql.NewSQLCompiler(e.dialect)
	for _, opt := range opts {
		opt(compiler)
	}
	query, args, err := compiler.Compile(plan)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", query, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	slog.Debug("plan executed", "dialect", e.dialect, "sql", query, "rows", result.Len())
	return result, nil
}

func scanRows(rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &Rows{Columns: columns, Values: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Values = append(result.Values, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
