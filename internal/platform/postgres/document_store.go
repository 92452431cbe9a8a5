package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/store"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
)

const documentsTable = "documents"

var documentColumns = []interface{}{"collection", "id", "revision", "data", "created_at", "updated_at"}

// documentRow is the sqlx scan target for the documents table.
type documentRow struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Revision   int64     `db:"revision"`
	Data       []byte    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r documentRow) toDocument() *store.Document {
	return &store.Document{
		Collection: r.Collection,
		ID:         r.ID,
		Revision:   r.Revision,
		Data:       r.Data,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the DocumentStore interface.
// It accepts a database handle that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDocumentStore(db *sqlx.DB, logger *slog.Logger) *PostgresDocumentStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:      db,
		dialect: goqu.Dialect("postgres"),
		logger:  logger.With(slog.String("component", "document_store")),
	}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// Get implements store.DocumentStore.Get
func (s *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	query, args, err := s.getQuery(collection, id)
	if err != nil {
		return nil, store.NewStoreError(collection, id, "get", err)
	}

	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, s.fail(ctx, collection, id, "get", err)
	}
	return row.toDocument(), nil
}

// Create implements store.DocumentStore.Create
// Unique expression indexes on the accounts collection surface as store.ErrDuplicate.
func (s *PostgresDocumentStore) Create(
	ctx context.Context,
	collection, id string,
	data []byte,
) (*store.Document, error) {
	query, args, err := s.createQuery(collection, id, data)
	if err != nil {
		return nil, store.NewStoreError(collection, id, "create", err)
	}

	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, s.fail(ctx, collection, id, "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("document created",
		slog.String("collection", collection),
		slog.String("id", id))
	return row.toDocument(), nil
}

// Replace implements store.DocumentStore.Replace
// The UPDATE only matches while the stored revision equals expectedRevision.
// When nothing matched, a follow-up lookup tells a conflict from a deletion.
func (s *PostgresDocumentStore) Replace(
	ctx context.Context,
	collection, id string,
	expectedRevision int64,
	data []byte,
) (*store.Document, error) {
	query, args, err := s.replaceQuery(collection, id, expectedRevision, data)
	if err != nil {
		return nil, store.NewStoreError(collection, id, "replace", err)
	}

	var row documentRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if err == nil {
		return row.toDocument(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, s.fail(ctx, collection, id, "replace", err)
	}

	exists, existsErr := s.exists(ctx, collection, id)
	if existsErr != nil {
		return nil, s.fail(ctx, collection, id, "replace", existsErr)
	}
	if !exists {
		return nil, store.NewStoreError(collection, id, "replace", store.ErrNotFound)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("conditioned replace lost to a concurrent write",
		slog.String("collection", collection),
		slog.String("id", id),
		slog.Int64("expected_revision", expectedRevision))
	return nil, store.NewStoreError(collection, id, "replace", store.ErrRevisionConflict)
}

// Delete implements store.DocumentStore.Delete
func (s *PostgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	query, args, err := s.deleteQuery(collection, id)
	if err != nil {
		return store.NewStoreError(collection, id, "delete", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return s.fail(ctx, collection, id, "delete", err)
	}
	if err := CheckRowsAffected(result); err != nil {
		return store.NewStoreError(collection, id, "delete", err)
	}
	return nil
}

// List implements store.DocumentStore.List
func (s *PostgresDocumentStore) List(ctx context.Context, collection string) ([]*store.Document, error) {
	query, args, err := s.listQuery(collection, nil)
	if err != nil {
		return nil, store.NewStoreError(collection, "", "list", err)
	}
	return s.selectDocuments(ctx, collection, "list", query, args)
}

// FindByField implements store.DocumentStore.FindByField
func (s *PostgresDocumentStore) FindByField(
	ctx context.Context,
	collection, field, value string,
) ([]*store.Document, error) {
	query, args, err := s.listQuery(collection, fieldEquals(field, value))
	if err != nil {
		return nil, store.NewStoreError(collection, "", "find", err)
	}
	return s.selectDocuments(ctx, collection, "find", query, args)
}

// Ping implements store.DocumentStore.Ping
func (s *PostgresDocumentStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return MapError(err)
	}
	return nil
}

func (s *PostgresDocumentStore) selectDocuments(
	ctx context.Context,
	collection, op, query string,
	args []interface{},
) ([]*store.Document, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, s.fail(ctx, collection, "", op, err)
	}

	docs := make([]*store.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs, nil
}

func (s *PostgresDocumentStore) exists(ctx context.Context, collection, id string) (bool, error) {
	query, args, err := s.dialect.From(documentsTable).
		Select(goqu.L("1")).
		Where(goqu.Ex{"collection": collection, "id": id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.GetContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// fail maps a driver error and logs it with the document coordinates.
func (s *PostgresDocumentStore) fail(ctx context.Context, collection, id, op string, err error) error {
	mapped := MapError(err)
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case store.IsNotFoundError(mapped), store.IsDuplicateError(mapped):
		log.Debug("document operation rejected",
			slog.String("operation", op),
			slog.String("collection", collection),
			slog.String("id", id),
			slog.String("error", mapped.Error()))
	default:
		log.Error("document operation failed",
			slog.String("operation", op),
			slog.String("collection", collection),
			slog.String("id", id),
			slog.String("error", mapped.Error()))
	}
	return store.NewStoreError(collection, id, op, mapped)
}

// fieldEquals matches a top-level JSON field of data as text.
func fieldEquals(field, value string) exp.Expression {
	return goqu.L("data->>? = ?", field, value)
}

func (s *PostgresDocumentStore) getQuery(collection, id string) (string, []interface{}, error) {
	return s.dialect.From(documentsTable).
		Select(documentColumns...).
		Where(goqu.Ex{"collection": collection, "id": id}).
		Prepared(true).
		ToSQL()
}

func (s *PostgresDocumentStore) createQuery(collection, id string, data []byte) (string, []interface{}, error) {
	return s.dialect.Insert(documentsTable).
		Rows(goqu.Record{
			"collection": collection,
			"id":         id,
			"revision":   1,
			"data":       goqu.L("?::jsonb", string(data)),
		}).
		Returning(documentColumns...).
		Prepared(true).
		ToSQL()
}

func (s *PostgresDocumentStore) replaceQuery(
	collection, id string,
	expectedRevision int64,
	data []byte,
) (string, []interface{}, error) {
	return s.dialect.Update(documentsTable).
		Set(goqu.Record{
			"data":       goqu.L("?::jsonb", string(data)),
			"revision":   goqu.L("revision + 1"),
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"collection": collection, "id": id, "revision": expectedRevision}).
		Returning(documentColumns...).
		Prepared(true).
		ToSQL()
}

func (s *PostgresDocumentStore) deleteQuery(collection, id string) (string, []interface{}, error) {
	return s.dialect.Delete(documentsTable).
		Where(goqu.Ex{"collection": collection, "id": id}).
		Prepared(true).
		ToSQL()
}

func (s *PostgresDocumentStore) listQuery(collection string, extra exp.Expression) (string, []interface{}, error) {
	ds := s.dialect.From(documentsTable).
		Select(documentColumns...).
		Where(goqu.Ex{"collection": collection})
	if extra != nil {
		ds = ds.Where(extra)
	}
	return ds.Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
}
