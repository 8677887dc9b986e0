package queryir

import "github.com/roach88/fql/internal/ir"

// Plan is a compiled relational query.
//
// Semantics:
//
//	SELECT [DISTINCT] <from>.* FROM <from>
//	  INNER JOIN <join.Table> ON <join.Parent> = <join.Child> ...
//	WHERE <where>
//
// Where is nil when there is no filter.
type Plan struct {
	From     Table
	Joins    []Join
	Where    Predicate
	Distinct bool
}

// Table is a table reference. Alias is empty for the base table.
type Table struct {
	Name  string
	Alias string
}

// Ref returns the name the table is referenced by in columns: the alias when
// set, otherwise the table name.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Join is an inner join of Table on Parent = Child. Parent belongs to a table
// already in scope (the base table or an earlier join); Child belongs to
// Table.
type Join struct {
	Table  Table
	Parent Column
	Child  Column
}

// Predicate is a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Truth: constant true or false
//   - And, Or, Not: boolean connectives
//   - Compare: left <op> right
//   - IsNull: operand IS NULL
//   - In: operand IN (values...)
//   - Like: operand LIKE pattern
//   - Regexp: operand matches a regular expression
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Operand is one side of a comparison.
//
// This is a sealed interface - only Column and Value implement it.
type Operand interface {
	operandNode()
}

// Column is a qualified column, Table being the reference returned by
// Table.Ref.
type Column struct {
	Table string
	Name  string
}

func (Column) operandNode() {}

// Value is a parameter value. It is always bound, never interpolated.
type Value struct {
	Value ir.IRValue
}

func (Value) operandNode() {}

// CompareOp is the operator of a Compare predicate.
type CompareOp string

const (
	OpEq  CompareOp = "="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
)

// Truth is a constant predicate.
type Truth struct {
	Value bool
}

func (Truth) predicateNode() {}

// And is Lhs AND Rhs.
type And struct {
	Lhs, Rhs Predicate
}

func (And) predicateNode() {}

// Or is Lhs OR Rhs.
type Or struct {
	Lhs, Rhs Predicate
}

func (Or) predicateNode() {}

// Not negates Predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Compare is Left <Op> Right.
//
// Comparing against a NULL value is never true in SQL; compilers emit IsNull
// instead.
type Compare struct {
	Op    CompareOp
	Left  Operand
	Right Operand
}

func (Compare) predicateNode() {}

// IsNull is Operand IS NULL.
type IsNull struct {
	Operand Operand
}

func (IsNull) predicateNode() {}

// In is set membership. An empty Values list never matches.
type In struct {
	Operand Operand
	Values  []ir.IRValue
}

func (In) predicateNode() {}

// Like is a LIKE pattern test ('%' and '_' wildcards).
type Like struct {
	Operand Operand
	Pattern string
}

func (Like) predicateNode() {}

// Regexp is a regular expression test. Pattern syntax is RE2 where the
// engine allows it.
type Regexp struct {
	Operand Operand
	Pattern string
}

func (Regexp) predicateNode() {}
