package querysql

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Dialect is a SQL dialect a plan can be rendered for.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// Dialects lists the supported dialects.
func Dialects() []Dialect {
	return []Dialect{DialectSQLite, DialectPostgres, DialectMySQL}
}

// ParseDialect accepts a dialect name, case-insensitively. "postgresql" and
// "sqlite3" are accepted as aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	}
	return "", fmt.Errorf("unknown dialect %q (want sqlite, postgres or mysql)", s)
}

// quote quotes an identifier, doubling embedded quote characters.
func (d Dialect) quote(ident string) string {
	q := `"`
	if d == DialectMySQL {
		q = "`"
	}
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

func (d Dialect) placeholders() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

func (d Dialect) truth(b bool) string {
	switch {
	case d == DialectSQLite && b:
		return "1"
	case d == DialectSQLite:
		return "0"
	case b:
		return "TRUE"
	default:
		return "FALSE"
	}
}

func (d Dialect) regexpOp() string {
	if d == DialectPostgres {
		return "~"
	}
	return "REGEXP"
}

func (d Dialect) valid() bool {
	switch d {
	case DialectSQLite, DialectPostgres, DialectMySQL:
		return true
	}
	return false
}
