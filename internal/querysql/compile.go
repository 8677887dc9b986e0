// Package querysql renders queryir plans as parameterized SQL.
package querysql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/queryir"
)

// SQLCompiler compiles plans to parameterized SQL for one dialect.
//
// CRITICAL: All values are parameterized (never interpolated). Only
// identifiers from the schema appear in the SQL text, always quoted.
type SQLCompiler struct {
	Dialect Dialect

	// OrderBy names a column of the base table to sort by. Empty leaves
	// the order to the engine.
	OrderBy string
}

// NewSQLCompiler creates a compiler for the dialect.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// Render is NewSQLCompiler(d).Compile(plan).
func Render(plan queryir.Plan, d Dialect) (string, []any, error) {
	return NewSQLCompiler(d).Compile(plan)
}

// Compile converts a plan to SQL. Returns (sql, params, error).
//
//	SELECT DISTINCT "users".* FROM "users"
//	INNER JOIN "addresses" AS "address" ON "users"."id" = "address"."tenant_id"
//	WHERE "address"."country" = ?
func (c *SQLCompiler) Compile(plan queryir.Plan) (string, []any, error) {
	if !c.Dialect.valid() {
		return "", nil, fmt.Errorf("unknown dialect %q", c.Dialect)
	}
	if plan.From.Name == "" {
		return "", nil, fmt.Errorf("plan has no base table")
	}

	base := c.Dialect.quote(plan.From.Ref())
	query := sq.StatementBuilder.
		PlaceholderFormat(c.Dialect.placeholders()).
		Select(base + ".*").
		From(c.table(plan.From))
	if plan.Distinct {
		query = query.Distinct()
	}

	joins, err := uniqueJoins(plan)
	if err != nil {
		return "", nil, err
	}
	for _, j := range joins {
		query = query.JoinClause(fmt.Sprintf("INNER JOIN %s ON %s = %s",
			c.table(j.Table), c.column(j.Parent), c.column(j.Child)))
	}

	if plan.Where != nil {
		where, err := c.compilePredicate(plan.Where)
		if err != nil {
			return "", nil, fmt.Errorf("compile where: %w", err)
		}
		query = query.Where(where)
	}

	if c.OrderBy != "" {
		query = query.OrderBy(base + "." + c.Dialect.quote(c.OrderBy) + " ASC")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("render sql: %w", err)
	}
	return sql, args, nil
}

// uniqueJoins drops joins identical to an earlier one, keeping first-seen
// order. Two different joins under one alias cannot be expressed in SQL.
func uniqueJoins(plan queryir.Plan) ([]queryir.Join, error) {
	seen := map[string]queryir.Join{plan.From.Ref(): {Table: plan.From}}
	out := make([]queryir.Join, 0, len(plan.Joins))
	for _, j := range plan.Joins {
		ref := j.Table.Ref()
		if prev, ok := seen[ref]; ok {
			if prev == j {
				continue
			}
			return nil, fmt.Errorf("conflicting joins for alias %q", ref)
		}
		seen[ref] = j
		out = append(out, j)
	}
	return out, nil
}

func (c *SQLCompiler) table(t queryir.Table) string {
	if t.Alias == "" {
		return c.Dialect.quote(t.Name)
	}
	return c.Dialect.quote(t.Name) + " AS " + c.Dialect.quote(t.Alias)
}

func (c *SQLCompiler) column(col queryir.Column) string {
	return c.Dialect.quote(col.Table) + "." + c.Dialect.quote(col.Name)
}

// compilePredicate compiles a predicate to a squirrel fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (sq.Sqlizer, error) {
	switch pred := queryir.Pointer(p).(type) {
	case nil:
		return nil, fmt.Errorf("nil predicate")
	case *queryir.Truth:
		return sq.Expr(c.Dialect.truth(pred.Value)), nil
	case *queryir.And:
		lhs, rhs, err := c.compilePair(pred.Lhs, pred.Rhs)
		if err != nil {
			return nil, err
		}
		return sq.And{lhs, rhs}, nil
	case *queryir.Or:
		lhs, rhs, err := c.compilePair(pred.Lhs, pred.Rhs)
		if err != nil {
			return nil, err
		}
		return sq.Or{lhs, rhs}, nil
	case *queryir.Not:
		inner, err := c.compilePredicate(pred.Predicate)
		if err != nil {
			return nil, err
		}
		sql, args, err := inner.ToSql()
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT ("+sql+")", args...), nil
	case *queryir.Compare:
		return c.compileCompare(*pred)
	case *queryir.IsNull:
		sql, args, err := c.compileOperand(pred.Operand)
		if err != nil {
			return nil, err
		}
		return sq.Expr(sql+" IS NULL", args...), nil
	case *queryir.In:
		return c.compileIn(*pred)
	case *queryir.Like:
		return c.compilePattern(pred.Operand, "LIKE", pred.Pattern)
	case *queryir.Regexp:
		return c.compilePattern(pred.Operand, c.Dialect.regexpOp(), pred.Pattern)
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compilePair(l, r queryir.Predicate) (sq.Sqlizer, sq.Sqlizer, error) {
	lhs, err := c.compilePredicate(l)
	if err != nil {
		return nil, nil, err
	}
	rhs, err := c.compilePredicate(r)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func (c *SQLCompiler) compileCompare(cmp queryir.Compare) (sq.Sqlizer, error) {
	switch cmp.Op {
	case queryir.OpEq, queryir.OpGt, queryir.OpGte, queryir.OpLt, queryir.OpLte:
	default:
		return nil, fmt.Errorf("unsupported comparison %q", cmp.Op)
	}
	left, largs, err := c.compileOperand(cmp.Left)
	if err != nil {
		return nil, err
	}
	right, rargs, err := c.compileOperand(cmp.Right)
	if err != nil {
		return nil, err
	}
	return sq.Expr(left+" "+string(cmp.Op)+" "+right, append(largs, rargs...)...), nil
}

// compileIn renders IN with one placeholder per value. An empty set never
// matches.
func (c *SQLCompiler) compileIn(in queryir.In) (sq.Sqlizer, error) {
	if len(in.Values) == 0 {
		return sq.Expr("(1=0)"), nil
	}
	sql, args, err := c.compileOperand(in.Operand)
	if err != nil {
		return nil, err
	}
	for _, v := range in.Values {
		param, err := irValueToParam(v)
		if err != nil {
			return nil, err
		}
		args = append(args, param)
	}
	return sq.Expr(sql+" IN ("+sq.Placeholders(len(in.Values))+")", args...), nil
}

func (c *SQLCompiler) compilePattern(o queryir.Operand, op, pattern string) (sq.Sqlizer, error) {
	sql, args, err := c.compileOperand(o)
	if err != nil {
		return nil, err
	}
	return sq.Expr(sql+" "+op+" ?", append(args, pattern)...), nil
}

func (c *SQLCompiler) compileOperand(o queryir.Operand) (string, []any, error) {
	switch op := o.(type) {
	case queryir.Column:
		return c.column(op), nil, nil
	case *queryir.Column:
		return c.column(*op), nil, nil
	case queryir.Value:
		return c.compileValue(op.Value)
	case *queryir.Value:
		return c.compileValue(op.Value)
	default:
		return "", nil, fmt.Errorf("unsupported operand type: %T", o)
	}
}

func (c *SQLCompiler) compileValue(v ir.IRValue) (string, []any, error) {
	param, err := irValueToParam(v)
	if err != nil {
		return "", nil, err
	}
	return "?", []any{param}, nil
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL
// parameters. Dates become ISO strings, which compare correctly in every
// supported engine.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRDate:
		return val.String(), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// Describe returns a single-line rendering with arguments listed after the
// SQL, for logs and CLI output.
func Describe(sql string, args []any) string {
	if len(args) == 0 {
		return sql
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%#v", a)
	}
	return sql + " -- [" + strings.Join(parts, ", ") + "]"
}
