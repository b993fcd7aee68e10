package domain

import (
	"context"
	"io"
)

// Document is a record as held by a RecordStore: an opaque id plus a flat
// field map. A nil field value is an explicit null.
type Document struct {
	ID     string
	Fields map[string]any
}

// OrderBy names the field a List call sorts on.
type OrderBy struct {
	Field      string
	Descending bool
}

// RecordStore is the document database contract. Implementations wrap
// backend failures with ErrStoreUnavailable and report missing ids with
// ErrNotFound.
type RecordStore interface {
	List(ctx context.Context, collection string, orderBy OrderBy) ([]Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	QueryLimited(ctx context.Context, collection string, limit int) ([]Document, error)
}

// ObjectStore is the file storage contract used for receipts.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) error
	PublicURL(ctx context.Context, objectPath string) (string, error)
}

// ExpenseRepository is the persistence boundary the service layer depends on.
type ExpenseRepository interface {
	List(ctx context.Context) ([]*Expense, error)
	Create(ctx context.Context, input ExpenseInput, receipt *ReceiptFile) (*Expense, error)
	Update(ctx context.Context, id string, patch ExpensePatch, receipt *ReceiptFile) (*Expense, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, force bool) ([]*Expense, error)
}
