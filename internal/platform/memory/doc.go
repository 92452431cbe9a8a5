// Package memory provides a process-local implementation of
// store.DocumentStore with the same revision and unique-field semantics as the
// PostgreSQL backend. It backs the test suites and the "memory" database
// driver for local runs.
package memory
