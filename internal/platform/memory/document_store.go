package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/competehub/compete-api/internal/store"
)

type entry struct {
	doc *store.Document
	seq uint64
}

// DocumentStore keeps documents in maps guarded by a single RWMutex.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	unique      map[string][]string
	seq         uint64
	now         func() time.Time
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithUniqueFields declares top-level string fields whose non-empty values
// must be unique within the collection, mirroring the unique indexes of the
// PostgreSQL schema.
func WithUniqueFields(collection string, fields ...string) Option {
	return func(s *DocumentStore) {
		s.unique[collection] = append(s.unique[collection], fields...)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) {
		s.now = now
	}
}

// NewDocumentStore creates an empty store.
func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		collections: make(map[string]map[string]*entry),
		unique:      make(map[string][]string),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// Get implements store.DocumentStore.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, store.NewStoreError(collection, id, "get", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return nil, store.NewStoreError(collection, id, "get", store.ErrNotFound)
	}
	return cloneDocument(e.doc), nil
}

// Create implements store.DocumentStore.
func (s *DocumentStore) Create(ctx context.Context, collection, id string, data []byte) (*store.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, store.NewStoreError(collection, id, "create", err)
	}
	fields, err := store.DecodeFields(data)
	if err != nil {
		return nil, store.NewStoreError(collection, id, "create", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collection(collection)
	if _, exists := docs[id]; exists {
		return nil, store.NewStoreError(collection, id, "create", store.ErrDuplicate)
	}
	if err := s.checkUnique(collection, id, fields); err != nil {
		return nil, store.NewStoreError(collection, id, "create", err)
	}

	now := s.now()
	s.seq++
	doc := &store.Document{
		Collection: collection,
		ID:         id,
		Revision:   1,
		Data:       cloneBytes(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	docs[id] = &entry{doc: doc, seq: s.seq}
	return cloneDocument(doc), nil
}

// Replace implements store.DocumentStore.
func (s *DocumentStore) Replace(
	ctx context.Context,
	collection, id string,
	expectedRevision int64,
	data []byte,
) (*store.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, store.NewStoreError(collection, id, "replace", err)
	}
	fields, err := store.DecodeFields(data)
	if err != nil {
		return nil, store.NewStoreError(collection, id, "replace", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return nil, store.NewStoreError(collection, id, "replace", store.ErrNotFound)
	}
	if e.doc.Revision != expectedRevision {
		return nil, store.NewStoreError(collection, id, "replace", store.ErrRevisionConflict)
	}
	if err := s.checkUnique(collection, id, fields); err != nil {
		return nil, store.NewStoreError(collection, id, "replace", err)
	}

	doc := cloneDocument(e.doc)
	doc.Revision++
	doc.Data = cloneBytes(data)
	doc.UpdatedAt = s.now()
	e.doc = doc
	return cloneDocument(doc), nil
}

// Delete implements store.DocumentStore.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := checkContext(ctx); err != nil {
		return store.NewStoreError(collection, id, "delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return store.NewStoreError(collection, id, "delete", store.ErrNotFound)
	}
	delete(s.collections[collection], id)
	return nil
}

// List implements store.DocumentStore.
func (s *DocumentStore) List(ctx context.Context, collection string) ([]*store.Document, error) {
	return s.filter(ctx, collection, "list", func(*store.Document) bool { return true })
}

// FindByField implements store.DocumentStore.
func (s *DocumentStore) FindByField(
	ctx context.Context,
	collection, field, value string,
) ([]*store.Document, error) {
	return s.filter(ctx, collection, "find", func(doc *store.Document) bool {
		fields, err := store.DecodeFields(doc.Data)
		if err != nil {
			return false
		}
		got, ok := fields.String(field)
		return ok && got == value
	})
}

// Ping implements store.DocumentStore.
func (s *DocumentStore) Ping(ctx context.Context) error {
	return checkContext(ctx)
}

func (s *DocumentStore) filter(
	ctx context.Context,
	collection, op string,
	keep func(*store.Document) bool,
) ([]*store.Document, error) {
	if err := checkContext(ctx); err != nil {
		return nil, store.NewStoreError(collection, "", op, err)
	}

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.collections[collection]))
	for _, e := range s.collections[collection] {
		if keep(e.doc) {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	docs := make([]*store.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, cloneDocument(e.doc))
	}
	return docs, nil
}

// collection returns the map for name, creating it. Callers hold s.mu.
func (s *DocumentStore) collection(name string) map[string]*entry {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]*entry)
		s.collections[name] = docs
	}
	return docs
}

// checkUnique rejects fields that collide with another document's unique
// values. Callers hold s.mu.
func (s *DocumentStore) checkUnique(collection, id string, fields store.Fields) error {
	for _, field := range s.unique[collection] {
		value, ok := fields.String(field)
		if !ok || value == "" {
			continue
		}
		for otherID, e := range s.collections[collection] {
			if otherID == id {
				continue
			}
			other, err := store.DecodeFields(e.doc.Data)
			if err != nil {
				continue
			}
			if got, ok := other.String(field); ok && got == value {
				return fmt.Errorf("%w: %s", store.ErrDuplicate, field)
			}
		}
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return nil
}

func cloneDocument(doc *store.Document) *store.Document {
	c := *doc
	c.Data = cloneBytes(doc.Data)
	return &c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
