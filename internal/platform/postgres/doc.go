// Package postgres provides the PostgreSQL implementation of
// store.DocumentStore. Documents live in a single JSONB table keyed by
// (collection, id) with a revision column that conditioned writes compare
// against. Queries are built with goqu and executed through sqlx on the pgx
// stdlib driver; the schema is managed by goose migrations embedded in the
// binary.
package postgres
