// Package store defines the document store contract used by the services.
// Documents are schemaless JSON bodies grouped into collections and carry a
// revision number that every conditioned write is checked against, so that
// read-modify-write cycles can detect concurrent modification without locks.
package store
