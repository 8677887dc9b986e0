package querysql

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fql/internal/dsl"
	"github.com/roach88/fql/internal/ir"
	"github.com/roach88/fql/internal/queryir"
	"github.com/roach88/fql/internal/relational"
	"github.com/roach88/fql/internal/testutil"
)

const selectUsers = `SELECT DISTINCT "users".* FROM "users"`

var (
	name  = queryir.Column{Table: "users", Name: "name"}
	email = queryir.Column{Table: "users", Name: "email"}
	age   = queryir.Column{Table: "users", Name: "age"}
)

func where(p queryir.Predicate) queryir.Plan {
	return queryir.Plan{From: queryir.Table{Name: "users"}, Where: p, Distinct: true}
}

func TestCompile_Predicates(t *testing.T) {
	tests := []struct {
		name     string
		pred     queryir.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{"true", queryir.Truth{Value: true}, selectUsers + ` WHERE 1`, nil},
		{"false", &queryir.Truth{}, selectUsers + ` WHERE 0`, nil},
		{
			"and",
			&queryir.And{Lhs: queryir.Truth{Value: true}, Rhs: queryir.Truth{}},
			selectUsers + ` WHERE (1 AND 0)`, nil,
		},
		{
			"or",
			&queryir.Or{Lhs: queryir.Truth{Value: true}, Rhs: queryir.Truth{}},
			selectUsers + ` WHERE (1 OR 0)`, nil,
		},
		{"not", &queryir.Not{Predicate: queryir.Truth{Value: true}}, selectUsers + ` WHERE NOT (1)`, nil},
		{"is null", &queryir.IsNull{Operand: email}, selectUsers + ` WHERE "users"."email" IS NULL`, nil},
		{
			"is not null",
			&queryir.Not{Predicate: &queryir.IsNull{Operand: email}},
			selectUsers + ` WHERE NOT ("users"."email" IS NULL)`, nil,
		},
		{
			"eq",
			&queryir.Compare{Op: queryir.OpEq, Left: name, Right: queryir.Value{Value: ir.IRString("Alice")}},
			selectUsers + ` WHERE "users"."name" = ?`, []any{"Alice"},
		},
		{
			"column to column",
			queryir.Compare{Op: queryir.OpLt, Left: age, Right: queryir.Column{Table: "users", Name: "id"}},
			selectUsers + ` WHERE "users"."age" < "users"."id"`, nil,
		},
		{
			"date",
			&queryir.Compare{Op: queryir.OpGte, Left: queryir.Column{Table: "users", Name: "dob"}, Right: queryir.Value{Value: ir.NewIRDate(2000, time.May, 4)}},
			selectUsers + ` WHERE "users"."dob" >= ?`, []any{"2000-05-04"},
		},
		{
			"in",
			&queryir.In{Operand: name, Values: []ir.IRValue{ir.IRString("this"), ir.IRString("that")}},
			selectUsers + ` WHERE "users"."name" IN (?,?)`, []any{"this", "that"},
		},
		{"empty in", &queryir.In{Operand: name}, selectUsers + ` WHERE (1=0)`, nil},
		{
			"like",
			&queryir.Like{Operand: name, Pattern: "%thing%"},
			selectUsers + ` WHERE "users"."name" LIKE ?`, []any{"%thing%"},
		},
		{
			"regexp",
			&queryir.Regexp{Operand: name, Pattern: "^A"},
			selectUsers + ` WHERE "users"."name" REGEXP ?`, []any{"^A"},
		},
		{
			"value on the left",
			&queryir.IsNull{Operand: queryir.Value{Value: ir.IRNull{}}},
			selectUsers + ` WHERE ? IS NULL`, []any{nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Render(where(tt.pred), DialectSQLite)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestCompile_Dialects(t *testing.T) {
	plan := where(&queryir.And{
		Lhs: &queryir.Compare{Op: queryir.OpGte, Left: age, Right: queryir.Value{Value: ir.IRInt(18)}},
		Rhs: &queryir.Or{
			Lhs: &queryir.Regexp{Operand: name, Pattern: "^A"},
			Rhs: queryir.Truth{Value: true},
		},
	})

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectSQLite, selectUsers + ` WHERE ("users"."age" >= ? AND ("users"."name" REGEXP ? OR 1))`},
		{DialectPostgres, selectUsers + ` WHERE ("users"."age" >= $1 AND ("users"."name" ~ $2 OR TRUE))`},
		{DialectMySQL, "SELECT DISTINCT `users`.* FROM `users` WHERE (`users`.`age` >= ? AND (`users`.`name` REGEXP ? OR TRUE))"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			sql, args, err := Render(plan, tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []any{int64(18), "^A"}, args)
		})
	}
}

func TestCompile_FromExpression(t *testing.T) {
	e := dsl.And(
		dsl.Eq(dsl.Attr(dsl.Rel("address"), "country"), "es"),
		dsl.Eq(dsl.Attr(dsl.Rel("address", "city"), "name"), "Madrid"),
	)
	plan, err := relational.Compile(testutil.Schema(), "User", e, nil, nil)
	require.NoError(t, err)

	sql, args, err := Render(*plan, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, selectUsers+
		` INNER JOIN "addresses" AS "address" ON "users"."id" = "address"."tenant_id"`+
		` INNER JOIN "cities" AS "city" ON "address"."city_id" = "city"."id"`+
		` WHERE ("address"."country" = ? AND "city"."name" = ?)`, sql)
	assert.Equal(t, []any{"es", "Madrid"}, args)
}

func TestCompile_RepeatedJoinsRenderOnce(t *testing.T) {
	e := dsl.And(
		dsl.Eq(dsl.Attr(dsl.Rel("address"), "country"), "es"),
		dsl.Not(dsl.IsEmpty(dsl.Attr(dsl.Rel("address"), "street"))),
	)
	plan, err := relational.Compile(testutil.Schema(), "User", e, nil, nil)
	require.NoError(t, err)
	require.Len(t, plan.Joins, 2, "the plan keeps every traversal")

	sql, args, err := Render(*plan, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(sql, "INNER JOIN"))
	assert.Equal(t, selectUsers+
		` INNER JOIN "addresses" AS "address" ON "users"."id" = "address"."tenant_id"`+
		` WHERE ("address"."country" = $1 AND NOT ("address"."street" IS NULL))`, sql)
	assert.Equal(t, []any{"es"}, args)
}

func TestCompile_ConflictingJoinAlias(t *testing.T) {
	addresses := queryir.Table{Name: "addresses", Alias: "address"}
	plan := queryir.Plan{
		From: queryir.Table{Name: "users"},
		Joins: []queryir.Join{
			{Table: addresses, Parent: queryir.Column{Table: "users", Name: "id"}, Child: queryir.Column{Table: "address", Name: "tenant_id"}},
			{Table: addresses, Parent: queryir.Column{Table: "users", Name: "id"}, Child: queryir.Column{Table: "address", Name: "owner_id"}},
		},
	}

	_, _, err := Render(plan, DialectSQLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `conflicting joins for alias "address"`)
}

func TestCompile_SingleJoin(t *testing.T) {
	plan, err := relational.Compile(testutil.Schema(), "User",
		dsl.Eq(dsl.Attr(dsl.Rel("address"), "country"), "es"), nil, nil)
	require.NoError(t, err)

	sql, args, err := Render(*plan, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT DISTINCT "users".* FROM "users" INNER JOIN "addresses" AS "address" ON "users"."id" = "address"."tenant_id" WHERE "address"."country" = ?`,
		sql)
	assert.Equal(t, []any{"es"}, args)

	// Values are parameters, never part of the SQL text
	assert.NotContains(t, sql, "es'")
}

func TestCompile_OrderByAndPlainSelect(t *testing.T) {
	c := NewSQLCompiler(DialectPostgres)
	c.OrderBy = "id"

	sql, args, err := c.Compile(queryir.Plan{From: queryir.Table{Name: "users"}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "users".* FROM "users" ORDER BY "users"."id" ASC`, sql)
	assert.Empty(t, args)
}

func TestCompile_QuotesIdentifiers(t *testing.T) {
	plan := where(&queryir.IsNull{Operand: queryir.Column{Table: "users", Name: `we"ird`}})
	sql, _, err := Render(plan, DialectSQLite)
	require.NoError(t, err)
	assert.Contains(t, sql, `"users"."we""ird" IS NULL`)

	sql, _, err = Render(where(&queryir.IsNull{Operand: queryir.Column{Table: "users", Name: "a`b"}}), DialectMySQL)
	require.NoError(t, err)
	assert.Contains(t, sql, "`users`.`a``b` IS NULL")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		plan    queryir.Plan
		dialect Dialect
	}{
		{"unknown dialect", where(queryir.Truth{}), Dialect("oracle")},
		{"no base table", queryir.Plan{}, DialectSQLite},
		{"nil inside and", where(&queryir.And{Lhs: queryir.Truth{}}), DialectSQLite},
		{"list operand", where(&queryir.Compare{Op: queryir.OpEq, Left: name, Right: queryir.Value{Value: ir.IRArray{}}}), DialectSQLite},
		{"bad operator", where(&queryir.Compare{Op: "<>", Left: name, Right: name}), DialectSQLite},
		{"nil operand", where(&queryir.IsNull{}), DialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Render(tt.plan, tt.dialect)
			assert.Error(t, err)
		})
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"sqlite":     DialectSQLite,
		"SQLite3":    DialectSQLite,
		"postgres":   DialectPostgres,
		"postgresql": DialectPostgres,
		" mysql ":    DialectMySQL,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDialect("oracle")
	assert.ErrorContains(t, err, "unknown dialect")
	assert.Len(t, Dialects(), 3)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `SELECT 1`, Describe("SELECT 1", nil))
	assert.Equal(t, `x = ? -- ["es", 3]`, Describe("x = ?", []any{"es", int64(3)}))
}
