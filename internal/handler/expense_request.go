package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/service"
	"github.com/dafibh/giderler/giderler-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// receiptFormField is the multipart field carrying the receipt image
const receiptFormField = "receipt"

// errMalformedBody marks a body that could not be decoded at all
var errMalformedBody = errors.New("malformed request body")

// CreateExpenseRequest represents the create expense request body.
// Amount accepts a JSON number or a numeric string.
type CreateExpenseRequest struct {
	Amount        json.Number `json:"amount" swaggertype:"string" example:"125.50"`
	Currency      string      `json:"currency" example:"TRY"`
	Description   string      `json:"description" example:"Taksi"`
	Date          string      `json:"date" example:"2024-03-01"`
	Type          string      `json:"type" example:"PERSONAL"`
	Status        string      `json:"status" example:"UNPAID"`
	OwnerID       string      `json:"ownerId" example:"ayse"`
	PaymentMethod string      `json:"paymentMethod" example:"CASH"`
	ProjectID     *string     `json:"projectId,omitempty"`
	Category      *string     `json:"category,omitempty"`
}

// UpdateExpenseRequest represents a partial update. Absent keys are left
// unchanged; projectId and category accept null or "" to clear.
type UpdateExpenseRequest struct {
	Amount        *json.Number          `json:"amount,omitempty" swaggertype:"string"`
	Currency      *string               `json:"currency,omitempty"`
	Description   *string               `json:"description,omitempty"`
	Date          *string               `json:"date,omitempty"`
	Type          *string               `json:"type,omitempty"`
	Status        *string               `json:"status,omitempty"`
	OwnerID       *string               `json:"ownerId,omitempty"`
	PaymentMethod *string               `json:"paymentMethod,omitempty"`
	ProjectID     domain.OptionalString `json:"projectId" swaggertype:"string"`
	Category      domain.OptionalString `json:"category" swaggertype:"string"`
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// bindCreateRequest reads a JSON or multipart create request and its
// optional receipt
func bindCreateRequest(c echo.Context) (CreateExpenseRequest, *domain.ReceiptFile, error) {
	var req CreateExpenseRequest
	if !isMultipart(c) {
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return req, nil, fmt.Errorf("%w: %w", errMalformedBody, err)
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	optional := func(key string) *string {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}

	req = CreateExpenseRequest{
		Amount:        json.Number(strings.TrimSpace(value("amount"))),
		Currency:      value("currency"),
		Description:   value("description"),
		Date:          value("date"),
		Type:          value("type"),
		Status:        value("status"),
		OwnerID:       value("ownerId"),
		PaymentMethod: value("paymentMethod"),
		ProjectID:     optional("projectId"),
		Category:      optional("category"),
	}

	receipt, err := readReceipt(form)
	return req, receipt, err
}

// bindUpdateRequest reads a JSON or multipart update request and its
// optional receipt
func bindUpdateRequest(c echo.Context) (UpdateExpenseRequest, *domain.ReceiptFile, error) {
	var req UpdateExpenseRequest
	if !isMultipart(c) {
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return req, nil, fmt.Errorf("%w: %w", errMalformedBody, err)
		}
		return req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	present := func(key string) *string {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			return &v[0]
		}
		return nil
	}

	if v := present("amount"); v != nil {
		n := json.Number(strings.TrimSpace(*v))
		req.Amount = &n
	}
	req.Currency = present("currency")
	req.Description = present("description")
	req.Date = present("date")
	req.Type = present("type")
	req.Status = present("status")
	req.OwnerID = present("ownerId")
	req.PaymentMethod = present("paymentMethod")
	if v := present("projectId"); v != nil {
		req.ProjectID = domain.SetString(*v)
	}
	if v := present("category"); v != nil {
		req.Category = domain.SetString(*v)
	}

	receipt, err := readReceipt(form)
	return req, receipt, err
}

// readReceipt returns nil when the form carries no receipt. Reading stops
// just past the size limit so oversized files are rejected by validation.
func readReceipt(form *multipart.Form) (*domain.ReceiptFile, error) {
	files := form.File[receiptFormField]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open receipt: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.ReceiptFile{Name: header.Filename, ContentType: contentType, Data: data}, nil
}

func parseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	return amount, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.ErrDateRequired
	}
	t, err := util.ParseISODate(s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return t, nil
}

// toExpenseInput converts a create request into a domain input. Enum
// strings are parsed here so unknown values never reach the service.
func (r CreateExpenseRequest) toExpenseInput() (domain.ExpenseInput, error) {
	var input domain.ExpenseInput
	var err error

	if input.Amount, err = parseAmount(r.Amount); err != nil {
		return input, err
	}
	if input.Currency, err = domain.ParseCurrency(r.Currency); err != nil {
		return input, err
	}
	if input.Date, err = parseDate(r.Date); err != nil {
		return input, err
	}
	if input.Type, err = domain.ParseExpenseType(r.Type); err != nil {
		return input, err
	}
	if input.Status, err = domain.ParseExpenseStatus(r.Status); err != nil {
		return input, err
	}
	if input.PaymentMethod, err = domain.ParsePaymentMethod(r.PaymentMethod); err != nil {
		return input, err
	}

	input.Description = r.Description
	input.OwnerID = r.OwnerID
	input.ProjectID = r.ProjectID
	input.Category = r.Category
	return input, nil
}

// toExpensePatch converts an update request into a domain patch
func (r UpdateExpenseRequest) toExpensePatch() (domain.ExpensePatch, error) {
	patch := domain.ExpensePatch{
		Description: r.Description,
		OwnerID:     r.OwnerID,
		ProjectID:   r.ProjectID,
		Category:    r.Category,
	}

	if r.Amount != nil {
		amount, err := parseAmount(*r.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if r.Currency != nil {
		v, err := domain.ParseCurrency(*r.Currency)
		if err != nil {
			return patch, err
		}
		patch.Currency = &v
	}
	if r.Date != nil {
		date, err := parseDate(*r.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if r.Type != nil {
		v, err := domain.ParseExpenseType(*r.Type)
		if err != nil {
			return patch, err
		}
		patch.Type = &v
	}
	if r.Status != nil {
		v, err := domain.ParseExpenseStatus(*r.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &v
	}
	if r.PaymentMethod != nil {
		v, err := domain.ParsePaymentMethod(*r.PaymentMethod)
		if err != nil {
			return patch, err
		}
		patch.PaymentMethod = &v
	}
	return patch, nil
}

// filterFromQuery reads startDate, endDate, type and status
func filterFromQuery(c echo.Context) domain.ExpenseFilter {
	filter := domain.NewExpenseFilter()
	filter.StartDate = strings.TrimSpace(c.QueryParam("startDate"))
	filter.EndDate = strings.TrimSpace(c.QueryParam("endDate"))
	if v := strings.TrimSpace(c.QueryParam("type")); v != "" {
		filter.Type = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(c.QueryParam("status")); v != "" {
		filter.Status = strings.ToUpper(v)
	}
	return filter
}
