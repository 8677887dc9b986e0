// Package testutil provides deterministic fixtures for tests: rapid
// generators for expressions, a sample schema, and predictable clocks and
// ID sources for the store.
package testutil
