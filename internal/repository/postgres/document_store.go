package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the store needs
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentStore implements domain.RecordStore on a single JSONB table keyed
// by (collection, id)
type DocumentStore struct {
	db DBTX
}

var _ domain.RecordStore = (*DocumentStore)(nil)

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db DBTX) *DocumentStore {
	return &DocumentStore{db: db}
}

const (
	listDocumentsAsc = `SELECT id, fields FROM documents
WHERE collection = $1
ORDER BY fields->>$2 ASC, id ASC`

	listDocumentsDesc = `SELECT id, fields FROM documents
WHERE collection = $1
ORDER BY fields->>$2 DESC, id ASC`

	insertDocument = `INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`

	getDocument = `SELECT fields FROM documents WHERE collection = $1 AND id = $2`

	mergeDocument = `UPDATE documents SET fields = fields || $3::jsonb
WHERE collection = $1 AND id = $2`

	deleteDocument = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	limitDocuments = `SELECT id, fields FROM documents
WHERE collection = $1
ORDER BY created_at ASC
LIMIT $2`
)

// List returns every document in collection ordered by a top-level field
func (s *DocumentStore) List(ctx context.Context, collection string, orderBy domain.OrderBy) ([]domain.Document, error) {
	query := listDocumentsAsc
	if orderBy.Descending {
		query = listDocumentsDesc
	}

	rows, err := s.db.Query(ctx, query, collection, orderBy.Field)
	if err != nil {
		return nil, unavailable("list "+collection, err)
	}
	return collectDocuments(rows, collection)
}

// Create inserts fields under a new UUID and returns it
func (s *DocumentStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if _, err := s.db.Exec(ctx, insertDocument, collection, id, data); err != nil {
		return "", unavailable("create in "+collection, err)
	}
	return id, nil
}

// Get returns a single document
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	var data []byte
	err := s.db.QueryRow(ctx, getDocument, collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Document{}, unavailable("get "+collection+"/"+id, err)
	}

	fields, err := decodeFields(data)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{ID: id, Fields: fields}, nil
}

// Update merges fields into the stored document; keys set to nil become
// JSON null
func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, mergeDocument, collection, id, data)
	if err != nil {
		return unavailable("update "+collection+"/"+id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.db.Exec(ctx, deleteDocument, collection, id)
	if err != nil {
		return unavailable("delete "+collection+"/"+id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// QueryLimited returns at most limit documents in insertion order
func (s *DocumentStore) QueryLimited(ctx context.Context, collection string, limit int) ([]domain.Document, error) {
	rows, err := s.db.Query(ctx, limitDocuments, collection, limit)
	if err != nil {
		return nil, unavailable("query "+collection, err)
	}
	return collectDocuments(rows, collection)
}

func collectDocuments(rows pgx.Rows, collection string) ([]domain.Document, error) {
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("scan "+collection, err)
		}
		fields, err := decodeFields(data)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
		}
		docs = append(docs, domain.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate "+collection, err)
	}
	return docs, nil
}

func encodeFields(fields map[string]any) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: encode fields: %w", domain.ErrInvalidInput, err)
	}
	return data, nil
}

// decodeFields keeps numbers as json.Number so amounts survive without
// float rounding
func decodeFields(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
