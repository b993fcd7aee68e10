package repository

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ReceiptPathPrefix is the object store prefix under which receipts live.
const ReceiptPathPrefix = "receipts"

// ExpenseRepository maps expenses onto a RecordStore and owns the
// upload-then-link sequencing for receipts.
type ExpenseRepository struct {
	records  domain.RecordStore
	receipts domain.ObjectStore
	samples  []domain.ExpenseInput
	now      func() time.Time
}

// Option configures an ExpenseRepository
type Option func(*ExpenseRepository)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *ExpenseRepository) { r.now = now }
}

// WithSamples overrides the sample set written by Seed.
func WithSamples(samples []domain.ExpenseInput) Option {
	return func(r *ExpenseRepository) { r.samples = samples }
}

// NewExpenseRepository creates a new ExpenseRepository. receipts may be nil,
// in which case any call carrying a receipt fails.
func NewExpenseRepository(records domain.RecordStore, receipts domain.ObjectStore, opts ...Option) *ExpenseRepository {
	r := &ExpenseRepository{
		records:  records,
		receipts: receipts,
		samples:  SampleExpenses(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ domain.ExpenseRepository = (*ExpenseRepository)(nil)

// ReceiptObjectPath returns receipts/{expenseID}/{fileName}. Only the base
// name of fileName is kept.
func ReceiptObjectPath(expenseID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "receipt"
	}
	return path.Join(ReceiptPathPrefix, expenseID, name)
}

// List returns every expense ordered by date, newest first.
func (r *ExpenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	docs, err := r.records.List(ctx, domain.ExpensesCollection, domain.OrderBy{Field: fieldDate, Descending: true})
	if err != nil {
		return nil, err
	}

	expenses := make([]*domain.Expense, 0, len(docs))
	for _, doc := range docs {
		expense, err := documentToExpense(doc)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// Create writes the record first and only then uploads the receipt, since
// the object path is keyed by the new id. If the upload or link fails the
// record stays with an empty receiptUrl; the returned error wraps
// domain.ErrReceiptNotLinked and the partially created expense is returned
// with it.
func (r *ExpenseRepository) Create(ctx context.Context, input domain.ExpenseInput, receipt *domain.ReceiptFile) (*domain.Expense, error) {
	if receipt != nil && r.receipts == nil {
		return nil, domain.ErrReceiptStorageNotConfigured
	}

	now := r.now().UTC()
	fields := inputToFields(input, now)

	id, err := r.records.Create(ctx, domain.ExpensesCollection, fields)
	if err != nil {
		return nil, err
	}

	expense, err := documentToExpense(domain.Document{ID: id, Fields: fields})
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		return expense, nil
	}

	url, err := r.uploadReceipt(ctx, id, receipt)
	if err == nil {
		err = r.records.Update(ctx, domain.ExpensesCollection, id, map[string]any{fieldReceiptURL: url})
	}
	if err != nil {
		log.Warn().Err(err).Str("expense_id", id).Msg("Expense created without receipt link")
		return expense, fmt.Errorf("%w: %w", domain.ErrReceiptNotLinked, err)
	}

	expense.ReceiptURL = url
	return expense, nil
}

// Update applies patch to the record and returns the re-read expense.
func (r *ExpenseRepository) Update(ctx context.Context, id string, patch domain.ExpensePatch, receipt *domain.ReceiptFile) (*domain.Expense, error) {
	if receipt != nil && r.receipts == nil {
		return nil, domain.ErrReceiptStorageNotConfigured
	}

	fields := patchToFields(patch, r.now().UTC())

	if receipt != nil {
		url, err := r.uploadReceipt(ctx, id, receipt)
		if err != nil {
			return nil, err
		}
		fields[fieldReceiptURL] = url
	}

	if err := r.records.Update(ctx, domain.ExpensesCollection, id, fields); err != nil {
		return nil, err
	}

	doc, err := r.records.Get(ctx, domain.ExpensesCollection, id)
	if err != nil {
		return nil, err
	}
	return documentToExpense(doc)
}

// Delete removes the record. The receipt object, if any, is left in place.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return r.records.Delete(ctx, domain.ExpensesCollection, id)
}

// Seed writes the sample set when the collection is empty, or always when
// force is set. It returns the created expenses, or an empty slice when
// nothing was written.
func (r *ExpenseRepository) Seed(ctx context.Context, force bool) ([]*domain.Expense, error) {
	existing, err := r.records.QueryLimited(ctx, domain.ExpensesCollection, 1)
	if err != nil {
		return nil, err
	}
	if !force && len(existing) > 0 {
		return []*domain.Expense{}, nil
	}

	created := make([]*domain.Expense, 0, len(r.samples))
	for _, sample := range r.samples {
		expense, err := r.Create(ctx, sample, nil)
		if err != nil {
			return created, err
		}
		created = append(created, expense)
	}
	return created, nil
}

func (r *ExpenseRepository) uploadReceipt(ctx context.Context, expenseID string, receipt *domain.ReceiptFile) (string, error) {
	objectPath := ReceiptObjectPath(expenseID, receipt.Name)
	contentType := receipt.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := r.receipts.Upload(ctx, objectPath, bytes.NewReader(receipt.Data), contentType, int64(len(receipt.Data))); err != nil {
		return "", err
	}
	url, err := r.receipts.PublicURL(ctx, objectPath)
	if err != nil {
		return "", err
	}

	log.Debug().Str("expense_id", expenseID).Str("object_path", objectPath).Msg("Receipt uploaded")
	return url, nil
}
