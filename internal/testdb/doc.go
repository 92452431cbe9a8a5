//go:build integration

// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests are skipped unless DATABASE_URL (or COMPETE_TEST_DB_URL) is set.
// The schema is brought up to date with the migrations embedded in the
// postgres package, so tests always run against the same schema the server
// ships with.
//
// # Basic Usage
//
//	func TestDocumentStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.ResetDocuments(t, db)
//
//	    docs := postgres.NewPostgresDocumentStore(db, nil)
//	    ...
//	}
//
// Document store tests share one table, so they call ResetDocuments and do
// not run in parallel.
package testdb
