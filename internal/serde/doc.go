// Package serde converts expressions to and from the portable tagged tree.
//
// Every composite node becomes an object with an "op" tag:
//
//	{"op": "eq",
//	 "lhs": {"op": "attr", "target": {"op": "rel", "name": ["location"]}, "name": "country"},
//	 "rhs": "es"}
//
// Primitive literals are bare leaves (null, bool, int, string, and arrays of
// those). Dates are tagged as {"op": "date", "value": "2024-03-01"} so the
// kind survives a round trip, and a literal that carries metadata is wrapped
// as {"op": "literal", "value": ..., "metadata": {...}}. The "metadata" key is
// only written when a node has metadata.
//
// Deserialize never panics and never returns a partial expression. Every
// problem found in the tree is reported, each with the path of the offending
// field.
package serde
