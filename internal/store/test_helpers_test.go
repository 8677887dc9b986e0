package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/fql/internal/testutil"
)

// createTestStore creates a new temp-dir store with a deterministic clock
// and ID source.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDs(testutil.SequentialIDs("query")),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixtureSQL creates the tables of testutil.Schema() with a few rows:
//
//	Alice  es  Madrid     3300000
//	Bob    fr  Paris      2100000  (no email, minor)
//	Carmen es  Barcelona  1600000  (inactive)
const fixtureSQL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT, age INTEGER, dob TEXT, role TEXT, active INTEGER);
CREATE TABLE addresses (id INTEGER PRIMARY KEY, tenant_id INTEGER, country TEXT, street TEXT, city_id INTEGER);
CREATE TABLE cities (id INTEGER PRIMARY KEY, address_id INTEGER, name TEXT, population INTEGER);

INSERT INTO users VALUES
	(1, 'Alice', 'alice@example.com', 30, '1994-02-01', 'admin', 1),
	(2, 'Bob', NULL, 17, '2007-06-10', 'member', 1),
	(3, 'Carmen', 'carmen@example.es', 45, '1979-11-23', 'member', 0);
INSERT INTO addresses VALUES
	(1, 1, 'es', 'Gran Via', 1),
	(2, 2, 'fr', 'Rue de Rivoli', 2),
	(3, 3, 'es', 'Diagonal', 3);
INSERT INTO cities VALUES
	(1, 1, 'Madrid', 3300000),
	(2, 2, 'Paris', 2100000),
	(3, 3, 'Barcelona', 1600000);
`

// createFixtureStore is createTestStore with the fixture tables loaded.
func createFixtureStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.Exec(context.Background(), fixtureSQL); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return s
}
