package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/export"
	"github.com/dafibh/giderler/giderler-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseResponse represents an expense in API responses. Live-update
// events carry the same shape.
type ExpenseResponse = domain.ExpenseView

// TotalsResponse represents both running totals
type TotalsResponse struct {
	UnpaidLiability string `json:"unpaidLiability"`
	PaidThisMonth   string `json:"paidThisMonth"`
}

// ExpenseListResponse represents the filtered list with its totals
type ExpenseListResponse struct {
	Data   []ExpenseResponse `json:"data"`
	Totals TotalsResponse    `json:"totals"`
	Count  int               `json:"count"`
}

// SummaryResponse represents the totals panel
type SummaryResponse struct {
	Totals     TotalsResponse `json:"totals"`
	Count      int            `json:"count"`
	MonthStart string         `json:"monthStart"`
	MonthEnd   string         `json:"monthEnd"`
}

// SeedResponse represents the result of seeding sample expenses
type SeedResponse struct {
	Created int               `json:"created"`
	Data    []ExpenseResponse `json:"data"`
}

// ListExpenses godoc
// @Summary List expenses
// @Description Re-fetch all expenses and return the filtered list with both totals
// @Tags expenses
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param type query string false "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL" default(ALL)
// @Param status query string false "PAID, UNPAID or ALL" default(ALL)
// @Success 200 {object} ExpenseListResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	listing, err := h.expenseService.ListExpenses(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return h.handleError(c, err, "Failed to list expenses")
	}

	return c.JSON(http.StatusOK, ExpenseListResponse{
		Data:   toExpenseResponses(listing.Expenses),
		Totals: toTotalsResponse(listing.Totals),
		Count:  listing.Count,
	})
}

// GetSummary godoc
// @Summary Get expense totals
// @Description Get the unpaid liability for the filter and the amount paid this month
// @Tags expenses
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param type query string false "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL" default(ALL)
// @Param status query string false "PAID, UNPAID or ALL" default(ALL)
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/summary [get]
func (h *ExpenseHandler) GetSummary(c echo.Context) error {
	summary, err := h.expenseService.GetSummary(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return h.handleError(c, err, "Failed to compute totals")
	}

	return c.JSON(http.StatusOK, SummaryResponse{
		Totals:     toTotalsResponse(summary.Totals),
		Count:      summary.Count,
		MonthStart: summary.MonthStart,
		MonthEnd:   summary.MonthEnd,
	})
}

// ExportExpenses godoc
// @Summary Export expenses
// @Description Download the filtered list and totals as an XLSX workbook
// @Tags expenses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param type query string false "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL" default(ALL)
// @Param status query string false "PAID, UNPAID or ALL" default(ALL)
// @Success 200 {file} file
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.expenseService.ExportExpenses(c.Request().Context(), filterFromQuery(c), &buf); err != nil {
		return h.handleError(c, err, "Failed to export expenses")
	}

	filename := fmt.Sprintf("giderler-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Create an expense from JSON, or from multipart form fields with an optional receipt image
// @Tags expenses
// @Accept json,mpfd
// @Produce json
// @Param request body CreateExpenseRequest true "Expense creation request"
// @Param receipt formData file false "Receipt image (max 10MB)"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 503 {object} ReceiptNotLinkedProblem
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	req, receipt, err := bindCreateRequest(c)
	if err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toExpenseInput()
	if err != nil {
		return h.handleError(c, err, "Failed to create expense")
	}

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), input, receipt)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotLinked) && expense != nil {
			log.Warn().Err(err).Str("expense_id", expense.ID).Msg("Expense created without receipt")
			return NewReceiptNotLinkedError(c, expense.ID)
		}
		return h.handleError(c, err, "Failed to create expense")
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// UpdateExpense godoc
// @Summary Update an expense
// @Description Apply a partial update; absent fields are left unchanged
// @Tags expenses
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body UpdateExpenseRequest true "Expense update request"
// @Param receipt formData file false "Replacement receipt image (max 10MB)"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	id := c.Param("id")

	req, receipt, err := bindUpdateRequest(c)
	if err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch, err := req.toExpensePatch()
	if err != nil {
		return h.handleError(c, err, "Failed to update expense")
	}

	expense, err := h.expenseService.UpdateExpense(c.Request().Context(), id, patch, receipt)
	if err != nil {
		return h.handleError(c, err, "Failed to update expense")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Description Delete an expense; its receipt object is kept
// @Tags expenses
// @Param id path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	if err := h.expenseService.DeleteExpense(c.Request().Context(), c.Param("id")); err != nil {
		return h.handleError(c, err, "Failed to delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}

// SeedExpenses godoc
// @Summary Seed sample expenses
// @Description Write the sample expenses when none exist, or always with force=true
// @Tags expenses
// @Produce json
// @Param force query bool false "Seed even when expenses exist" default(false)
// @Success 200 {object} SeedResponse
// @Success 201 {object} SeedResponse
// @Failure 400 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /expenses/seed [post]
func (h *ExpenseHandler) SeedExpenses(c echo.Context) error {
	force := false
	if raw := c.QueryParam("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return NewValidationError(c, "Invalid force flag", []ValidationError{
				{Field: "force", Message: "Must be true or false"},
			})
		}
		force = parsed
	}

	created, err := h.expenseService.SeedSamples(c.Request().Context(), force)
	if err != nil {
		return h.handleError(c, err, "Failed to seed expenses")
	}

	status := http.StatusOK
	if len(created) > 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, SeedResponse{Created: len(created), Data: toExpenseResponses(created)})
}

// handleError maps service errors onto problem responses
func (h *ExpenseHandler) handleError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", validationErrorFor(err))
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrReceiptStorageNotConfigured):
		return NewServiceUnavailableError(c, "Receipt storage is not configured")
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(msg)
		return NewServiceUnavailableError(c, "Expense store is unavailable")
	}
	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(msg)
	return NewInternalError(c, msg)
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return e.View()
}

func toExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = toExpenseResponse(e)
	}
	return responses
}

func toTotalsResponse(t domain.ExpenseTotals) TotalsResponse {
	return TotalsResponse{
		UnpaidLiability: domain.FormatAmount(t.UnpaidLiability),
		PaidThisMonth:   domain.FormatAmount(t.PaidThisMonth),
	}
}
