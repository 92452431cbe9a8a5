package store

import (
	"context"
	"time"
)

// Collection names.
const (
	CollectionAccounts     = "user_accounts"
	CollectionCompetitions = "competitions"
	CollectionReviews      = "reviews"
)

// Document is a stored JSON body and its metadata.
type Document struct {
	Collection string
	ID         string
	// Revision starts at 1 and increases by one on every successful write.
	Revision  int64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore is the persistence contract. Implementations must be safe for
// concurrent use; correctness of concurrent read-modify-write cycles rests on
// Replace being conditioned on the revision, not on client-side locking.
type DocumentStore interface {
	// Get returns the current version of a document.
	// Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Create inserts a new document at revision 1.
	// Returns ErrDuplicate if the ID or a unique field is already taken.
	Create(ctx context.Context, collection, id string, data []byte) (*Document, error)

	// Replace overwrites the document body only if its revision still equals
	// expectedRevision. Returns ErrRevisionConflict if it changed,
	// ErrNotFound if it no longer exists.
	Replace(ctx context.Context, collection, id string, expectedRevision int64, data []byte) (*Document, error)

	// Delete removes a document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, collection, id string) error

	// List returns every document in a collection ordered by creation time.
	List(ctx context.Context, collection string) ([]*Document, error)

	// FindByField returns the documents whose top-level string field equals
	// value exactly. Callers normalize value the same way it was stored.
	FindByField(ctx context.Context, collection, field, value string) ([]*Document, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
