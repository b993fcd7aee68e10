package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Document field names
const (
	fieldAmount        = "amount"
	fieldCurrency      = "currency"
	fieldDescription   = "description"
	fieldDate          = "date"
	fieldType          = "type"
	fieldStatus        = "status"
	fieldOwnerID       = "ownerId"
	fieldPaymentMethod = "paymentMethod"
	fieldProjectID     = "projectId"
	fieldCategory      = "category"
	fieldReceiptURL    = "receiptUrl"
	fieldCreatedAt     = "createdAt"
	fieldUpdatedAt     = "updatedAt"
)

// inputToFields builds the document for a new expense. Optional fields are
// always present, as null when absent.
func inputToFields(input domain.ExpenseInput, now time.Time) map[string]any {
	return map[string]any{
		fieldAmount:        input.Amount.String(),
		fieldCurrency:      string(input.Currency),
		fieldDescription:   input.Description,
		fieldDate:          util.ISODay(input.Date),
		fieldType:          string(input.Type),
		fieldStatus:        string(input.Status),
		fieldOwnerID:       input.OwnerID,
		fieldPaymentMethod: string(input.PaymentMethod),
		fieldProjectID:     nullableString(input.ProjectID),
		fieldCategory:      nullableString(input.Category),
		fieldReceiptURL:    "",
		fieldCreatedAt:     now,
		fieldUpdatedAt:     now,
	}
}

// patchToFields keeps only the fields the patch touches. updatedAt is
// always refreshed.
func patchToFields(patch domain.ExpensePatch, now time.Time) map[string]any {
	fields := map[string]any{fieldUpdatedAt: now}
	if patch.Amount != nil {
		fields[fieldAmount] = patch.Amount.String()
	}
	if patch.Currency != nil {
		fields[fieldCurrency] = string(*patch.Currency)
	}
	if patch.Description != nil {
		fields[fieldDescription] = *patch.Description
	}
	if patch.Date != nil {
		fields[fieldDate] = util.ISODay(*patch.Date)
	}
	if patch.Type != nil {
		fields[fieldType] = string(*patch.Type)
	}
	if patch.Status != nil {
		fields[fieldStatus] = string(*patch.Status)
	}
	if patch.OwnerID != nil {
		fields[fieldOwnerID] = *patch.OwnerID
	}
	if patch.PaymentMethod != nil {
		fields[fieldPaymentMethod] = string(*patch.PaymentMethod)
	}
	if !patch.ProjectID.IsUnset() {
		fields[fieldProjectID] = nullableString(patch.ProjectID.Pointer())
	}
	if !patch.Category.IsUnset() {
		fields[fieldCategory] = nullableString(patch.Category.Pointer())
	}
	return fields
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// documentToExpense decodes a stored document, rejecting any value outside
// the closed enumerations.
func documentToExpense(doc domain.Document) (*domain.Expense, error) {
	d := decoder{doc: doc}

	e := &domain.Expense{
		ID:          doc.ID,
		Amount:      d.amount(),
		Description: d.str(fieldDescription),
		Date:        d.date(),
		OwnerID:     d.str(fieldOwnerID),
		ProjectID:   d.optionalStr(fieldProjectID),
		Category:    d.optionalStr(fieldCategory),
		ReceiptURL:  d.optionalStrValue(fieldReceiptURL),
		CreatedAt:   d.timestamp(fieldCreatedAt),
		UpdatedAt:   d.timestamp(fieldUpdatedAt),
	}

	var err error
	if e.Currency, err = domain.ParseCurrency(d.str(fieldCurrency)); err != nil {
		d.fail(fieldCurrency, err)
	}
	if e.Type, err = domain.ParseExpenseType(d.str(fieldType)); err != nil {
		d.fail(fieldType, err)
	}
	if e.Status, err = domain.ParseExpenseStatus(d.str(fieldStatus)); err != nil {
		d.fail(fieldStatus, err)
	}
	if e.PaymentMethod, err = domain.ParsePaymentMethod(d.str(fieldPaymentMethod)); err != nil {
		d.fail(fieldPaymentMethod, err)
	}

	if d.err != nil {
		return nil, d.err
	}
	return e, nil
}

// decoder records the first field error and keeps going so a single
// check at the end covers every field.
type decoder struct {
	doc domain.Document
	err error
}

func (d *decoder) fail(field string, cause error) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: document %s field %q: %v", domain.ErrInvalidDocument, d.doc.ID, field, cause)
	}
}

func (d *decoder) str(field string) string {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		d.fail(field, fmt.Errorf("missing"))
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, fmt.Errorf("expected string, got %T", v))
		return ""
	}
	return s
}

func (d *decoder) optionalStr(field string) *string {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.fail(field, fmt.Errorf("expected string, got %T", v))
		return nil
	}
	return &s
}

func (d *decoder) optionalStrValue(field string) string {
	if s := d.optionalStr(field); s != nil {
		return *s
	}
	return ""
}

func (d *decoder) amount() decimal.Decimal {
	v, ok := d.doc.Fields[fieldAmount]
	if !ok || v == nil {
		d.fail(fieldAmount, fmt.Errorf("missing"))
		return decimal.Zero
	}

	var amount decimal.Decimal
	var err error
	switch n := v.(type) {
	case string:
		amount, err = decimal.NewFromString(n)
	case json.Number:
		amount, err = decimal.NewFromString(n.String())
	case float64:
		amount = decimal.NewFromFloat(n)
	case int32:
		amount = decimal.NewFromInt32(n)
	case int64:
		amount = decimal.NewFromInt(n)
	case int:
		amount = decimal.NewFromInt(int64(n))
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		d.fail(fieldAmount, err)
		return decimal.Zero
	}
	if amount.IsNegative() {
		d.fail(fieldAmount, domain.ErrInvalidAmount)
	}
	return amount
}

func (d *decoder) date() time.Time {
	v, ok := d.doc.Fields[fieldDate]
	if !ok || v == nil {
		d.fail(fieldDate, fmt.Errorf("missing"))
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return util.CalendarDate(t)
	case string:
		if parsed, err := util.ParseISODate(t); err == nil {
			return parsed
		}
		// Older documents hold a full timestamp
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			d.fail(fieldDate, err)
			return time.Time{}
		}
		return util.CalendarDate(parsed.UTC())
	}
	d.fail(fieldDate, fmt.Errorf("unsupported type %T", v))
	return time.Time{}
}

func (d *decoder) timestamp(field string) time.Time {
	v, ok := d.doc.Fields[field]
	if !ok || v == nil {
		d.fail(field, fmt.Errorf("missing"))
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			d.fail(field, err)
			return time.Time{}
		}
		return parsed.UTC()
	}
	d.fail(field, fmt.Errorf("unsupported type %T", v))
	return time.Time{}
}
