// Package service contains the application use cases: accounts, competitions
// and the community lists (newsletter and reviews).
//
// Services depend on the store.DocumentStore contract, never on a concrete
// backend. Every mutation of a list field inside a document goes through the
// registration package, which makes concurrent writers safe without locks.
// Account uniqueness is enforced by the store's unique fields instead, since
// each account is its own document.
//
// Errors are returned as wrapped sentinels from the domain and store packages;
// the API layer maps them to HTTP status codes with errors.Is.
package service
