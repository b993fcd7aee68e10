package domain

import "errors"

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidDocument  = errors.New("invalid stored document")
	ErrReceiptNotLinked = errors.New("expense saved but receipt could not be linked")

	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
)

// Validation errors. Each wraps ErrInvalidInput so callers can match the
// whole class with errors.Is.
var (
	ErrDescriptionRequired  = validationError("description is required")
	ErrDescriptionTooLong   = validationError("description exceeds maximum length")
	ErrOwnerRequired        = validationError("owner is required")
	ErrInvalidAmount        = validationError("amount must be zero or greater")
	ErrAmountPrecision      = validationError("amount must have at most 2 decimal places")
	ErrDateRequired         = validationError("date is required")
	ErrInvalidDate          = validationError("date must be in YYYY-MM-DD format")
	ErrInvalidCurrency      = validationError("invalid currency")
	ErrInvalidExpenseType   = validationError("invalid expense type")
	ErrInvalidExpenseStatus = validationError("invalid expense status")
	ErrInvalidPaymentMethod = validationError("invalid payment method")
)

// Validation constants
const (
	MaxDescriptionLength = 500
)

type wrappedValidation struct {
	msg string
}

func (e *wrappedValidation) Error() string { return e.msg }

func (e *wrappedValidation) Unwrap() error { return ErrInvalidInput }

func validationError(msg string) error {
	return &wrappedValidation{msg: msg}
}
