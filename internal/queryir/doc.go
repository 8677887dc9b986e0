// Package queryir provides the abstract relational query plan that FQL
// expressions compile to.
//
// A Plan is what an external query engine executes: a base table, the inner
// joins reached through association paths, a boolean predicate over
// qualified columns and parameter values, and a distinctness flag. Joins can
// multiply root rows, so compiled plans always ask for distinct rows.
//
//	[expression] -> relational -> [Plan] -> querysql -> [SQL + args]
//	                                     -> store.Execute
//
// SEALED INTERFACES:
//
// Predicate and Operand are sealed with unexported marker methods. Only
// types in this package implement them, so backends can switch over them
// exhaustively:
//
//	switch p := pred.(type) {
//	case *Compare:
//	    // ...
//	case *IsNull:
//	    // ...
//	}
//
// Values carried by Value operands are ir.IRValue, so plans never contain
// floats and encode canonically (see Plan.Tree and Fingerprint).
//
// PORTABILITY:
//
// Validate reports constructs whose behavior differs between SQL engines
// (regular expressions, LIKE case folding, NULL comparisons, long join
// chains). Warnings never prevent execution.
package queryir
