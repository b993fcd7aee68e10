package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ReceiptNotLinkedProblem is returned when the expense was stored but its
// receipt could not be attached
type ReceiptNotLinkedProblem struct {
	ProblemDetails
	ExpenseID string `json:"expenseId"`
}

// Error types
const (
	ErrorTypeValidation         = "https://giderler.app/errors/validation"
	ErrorTypeNotFound           = "https://giderler.app/errors/not-found"
	ErrorTypeTooManyRequests    = "https://giderler.app/errors/too-many-requests"
	ErrorTypeServiceUnavailable = "https://giderler.app/errors/service-unavailable"
	ErrorTypeReceiptNotLinked   = "https://giderler.app/errors/receipt-not-linked"
	ErrorTypeInternal           = "https://giderler.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewTooManyRequestsError creates a rate limit error response
func NewTooManyRequestsError(c echo.Context, detail string) error {
	return c.JSON(http.StatusTooManyRequests, ProblemDetails{
		Type:     ErrorTypeTooManyRequests,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewReceiptNotLinkedError reports a stored expense whose receipt is missing
func NewReceiptNotLinkedError(c echo.Context, expenseID string) error {
	return c.JSON(http.StatusServiceUnavailable, ReceiptNotLinkedProblem{
		ProblemDetails: ProblemDetails{
			Type:     ErrorTypeReceiptNotLinked,
			Title:    "Receipt Not Linked",
			Status:   http.StatusServiceUnavailable,
			Detail:   "Expense was saved but the receipt could not be stored",
			Instance: c.Request().URL.Path,
		},
		ExpenseID: expenseID,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// validationFields maps each validation error to the request field it concerns
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrDescriptionRequired, "description"},
	{domain.ErrDescriptionTooLong, "description"},
	{domain.ErrOwnerRequired, "ownerId"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrAmountPrecision, "amount"},
	{domain.ErrDateRequired, "date"},
	{domain.ErrInvalidDate, "date"},
	{domain.ErrInvalidCurrency, "currency"},
	{domain.ErrInvalidExpenseType, "type"},
	{domain.ErrInvalidExpenseStatus, "status"},
	{domain.ErrInvalidPaymentMethod, "paymentMethod"},
	{service.ErrReceiptEmpty, "receipt"},
	{service.ErrReceiptTooLarge, "receipt"},
	{service.ErrReceiptInvalidFormat, "receipt"},
	{service.ErrReceiptInvalidData, "receipt"},
	{service.ErrReceiptTooSmall, "receipt"},
}

// validationErrorFor builds the field list for a validation error
func validationErrorFor(err error) []ValidationError {
	for _, v := range validationFields {
		if errors.Is(err, v.err) {
			return []ValidationError{{Field: v.field, Message: v.err.Error()}}
		}
	}
	return nil
}
