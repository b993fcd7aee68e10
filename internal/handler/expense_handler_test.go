package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/export"
	"github.com/dafibh/giderler/giderler-backend/internal/middleware"
	"github.com/dafibh/giderler/giderler-backend/internal/repository"
	"github.com/dafibh/giderler/giderler-backend/internal/service"
	"github.com/dafibh/giderler/giderler-backend/internal/testutil"
	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type handlerFixture struct {
	e         *echo.Echo
	records   *testutil.MockRecordStore
	receipts  *testutil.MockObjectStore
	publisher *testutil.MockEventPublisher
	service   *service.ExpenseService
	handler   *ExpenseHandler
}

func newHandlerFixture(withReceipts bool) *handlerFixture {
	records := testutil.NewMockRecordStore()
	receipts := testutil.NewMockObjectStore()
	publisher := testutil.NewMockEventPublisher()

	var objects domain.ObjectStore
	if withReceipts {
		objects = receipts
	}
	repo := repository.NewExpenseRepository(records, objects)
	svc := service.NewExpenseService(repo)
	svc.SetEventPublisher(publisher)

	return &handlerFixture{
		e:         echo.New(),
		records:   records,
		receipts:  receipts,
		publisher: publisher,
		service:   svc,
		handler:   NewExpenseHandler(svc),
	}
}

func (f *handlerFixture) do(req *http.Request, h echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	if err := h(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// multipartRequest builds a form request; a nil file skips the receipt part
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="receipt"; filename=%q`, fileName))
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(64, 64, color.NRGBA{R: 240, G: 200, B: 40, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func expenseJSON(description, date, expenseType, status, amount string) string {
	return fmt.Sprintf(`{"amount": %s, "currency": "TRY", "description": %q, "date": %q, "type": %q, "status": %q, "ownerId": "ayse", "paymentMethod": "CASH"}`,
		amount, description, date, expenseType, status)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func (f *handlerFixture) create(t *testing.T, body string) ExpenseResponse {
	t.Helper()
	rec := f.do(jsonRequest(http.MethodPost, "/api/v1/expenses", body), f.handler.CreateExpense)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestCreateExpense_JSON(t *testing.T) {
	f := newHandlerFixture(true)

	body := `{"amount": 125.5, "currency": "TRY", "description": "  Taksi  ", "date": "2024-03-01", "type": "PERSONAL", "status": "UNPAID", "ownerId": "ayse", "paymentMethod": "CASH", "projectId": "P-7", "category": ""}`
	response := f.create(t, body)

	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "125.50", response.Amount)
	assert.Equal(t, "Taksi", response.Description)
	assert.Equal(t, "2024-03-01", response.Date)
	assert.Equal(t, "PERSONAL", response.Type)
	require.NotNil(t, response.ProjectID)
	assert.Equal(t, "P-7", *response.ProjectID)
	assert.Nil(t, response.Category)
	assert.Empty(t, response.ReceiptURL)
	assert.Equal(t, []string{"expense.created"}, f.publisher.Types())
}

func TestCreateExpense_AmountAsString(t *testing.T) {
	f := newHandlerFixture(true)

	response := f.create(t, expenseJSON("Yemek", "2024-03-02", "ADVANCE", "PAID", `"80"`))
	assert.Equal(t, "80.00", response.Amount)
}

func TestCreateExpense_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"blank description", expenseJSON("  ", "2024-03-01", "PERSONAL", "UNPAID", "10"), "description"},
		{"negative amount", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "-5"), "amount"},
		{"sub-cent amount", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "12.345"), "amount"},
		{"bad date", expenseJSON("Taksi", "01/03/2024", "PERSONAL", "UNPAID", "10"), "date"},
		{"missing date", expenseJSON("Taksi", "", "PERSONAL", "UNPAID", "10"), "date"},
		{"unknown type", expenseJSON("Taksi", "2024-03-01", "OTHER", "UNPAID", "10"), "type"},
		{"unknown status", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "PENDING", "10"), "status"},
		{"missing owner", `{"amount": 10, "currency": "TRY", "description": "Taksi", "date": "2024-03-01", "type": "PERSONAL", "status": "UNPAID", "paymentMethod": "CASH"}`, "ownerId"},
		{"unknown currency", `{"amount": 10, "currency": "USD", "description": "Taksi", "date": "2024-03-01", "type": "PERSONAL", "status": "UNPAID", "ownerId": "ayse", "paymentMethod": "CASH"}`, "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(true)

			rec := f.do(jsonRequest(http.MethodPost, "/api/v1/expenses", tt.body), f.handler.CreateExpense)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Equal(t, 0, f.records.CreateCalls)
			assert.Empty(t, f.publisher.Events)
		})
	}
}

func TestCreateExpense_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated", `{"amount":`},
		{"non numeric amount", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", `"abc"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(true)

			rec := f.do(jsonRequest(http.MethodPost, "/api/v1/expenses", tt.body), f.handler.CreateExpense)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid request body", decodeProblem(t, rec).Detail)
			assert.Equal(t, 0, f.records.CreateCalls)
		})
	}
}

func TestCreateExpense_MultipartNonNumericAmount(t *testing.T) {
	f := newHandlerFixture(true)
	fields := receiptFields()
	fields["amount"] = "on iki"

	rec := f.do(multipartRequest(t, http.MethodPost, "/api/v1/expenses", fields, "", nil), f.handler.CreateExpense)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "amount", problem.Errors[0].Field)
}

func receiptFields() map[string]string {
	return map[string]string{
		"amount":        "42.10",
		"currency":      "EUR",
		"description":   "Otel",
		"date":          "2024-03-05",
		"type":          "COMPANY_OFFICIAL",
		"status":        "PAID",
		"ownerId":       "mehmet",
		"paymentMethod": "CARD",
		"category":      "Konaklama",
	}
}

func TestCreateExpense_MultipartWithReceipt(t *testing.T) {
	f := newHandlerFixture(true)

	req := multipartRequest(t, http.MethodPost, "/api/v1/expenses", receiptFields(), "fis.png", pngBytes(t))
	rec := f.do(req, f.handler.CreateExpense)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	objectPath := repository.ReceiptObjectPath(response.ID, "fis.png")
	assert.Equal(t, f.receipts.BaseURL+"/"+objectPath, response.ReceiptURL)
	assert.True(t, f.receipts.Has(objectPath))
	assert.Equal(t, "42.10", response.Amount)
	require.NotNil(t, response.Category)
	assert.Equal(t, "Konaklama", *response.Category)
	assert.Nil(t, response.ProjectID)
}

func TestCreateExpense_InvalidReceipt(t *testing.T) {
	f := newHandlerFixture(true)

	req := multipartRequest(t, http.MethodPost, "/api/v1/expenses", receiptFields(), "fis.txt", []byte("not an image"))
	rec := f.do(req, f.handler.CreateExpense)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "receipt", problem.Errors[0].Field)
	assert.Equal(t, 0, f.records.CreateCalls)
}

func TestCreateExpense_ReceiptNotLinked(t *testing.T) {
	f := newHandlerFixture(true)
	f.receipts.UploadErr = fmt.Errorf("%w: bucket offline", domain.ErrStoreUnavailable)

	req := multipartRequest(t, http.MethodPost, "/api/v1/expenses", receiptFields(), "fis.png", pngBytes(t))
	rec := f.do(req, f.handler.CreateExpense)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var problem ReceiptNotLinkedProblem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeReceiptNotLinked, problem.Type)
	assert.NotEmpty(t, problem.ExpenseID)

	// The record exists without a receipt and nothing was announced
	assert.NotNil(t, f.records.Fields(domain.ExpensesCollection, problem.ExpenseID))
	assert.Empty(t, f.publisher.Events)
}

func TestCreateExpense_ReceiptStorageNotConfigured(t *testing.T) {
	f := newHandlerFixture(false)

	req := multipartRequest(t, http.MethodPost, "/api/v1/expenses", receiptFields(), "fis.png", pngBytes(t))
	rec := f.do(req, f.handler.CreateExpense)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, ErrorTypeServiceUnavailable, decodeProblem(t, rec).Type)
	assert.Equal(t, 0, f.records.CreateCalls)
}

func TestCreateExpense_StoreUnavailable(t *testing.T) {
	f := newHandlerFixture(true)
	f.records.CreateErr = fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)

	rec := f.do(jsonRequest(http.MethodPost, "/api/v1/expenses", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10")), f.handler.CreateExpense)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateExpense_UnexpectedError(t *testing.T) {
	f := newHandlerFixture(true)
	f.records.CreateErr = errors.New("boom")

	rec := f.do(jsonRequest(http.MethodPost, "/api/v1/expenses", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10")), f.handler.CreateExpense)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrorTypeInternal, decodeProblem(t, rec).Type)
}

func TestListExpenses_Filters(t *testing.T) {
	f := newHandlerFixture(true)
	f.create(t, expenseJSON("Taksi", "2024-01-10", "PERSONAL", "UNPAID", "100"))
	f.create(t, expenseJSON("Avans", "2024-02-10", "ADVANCE", "UNPAID", "50.25"))
	f.create(t, expenseJSON("Kira", "2024-02-15", "COMPANY_OFFICIAL", "UNPAID", "900"))

	tests := []struct {
		name      string
		query     string
		count     int
		liability string
	}{
		{"no filter", "", 3, "150.25"},
		{"type", "?type=PERSONAL", 1, "100.00"},
		{"lowercase type", "?type=advance", 1, "50.25"},
		{"date range", "?startDate=2024-02-01&endDate=2024-02-29", 2, "50.25"},
		{"status all", "?status=ALL", 3, "150.25"},
		{"paid only", "?status=PAID", 0, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses"+tt.query, nil), f.handler.ListExpenses)
			require.Equal(t, http.StatusOK, rec.Code)

			var response ExpenseListResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.count, response.Count)
			assert.Len(t, response.Data, tt.count)
			assert.Equal(t, tt.liability, response.Totals.UnpaidLiability)
		})
	}
}

func TestListExpenses_NewestFirst(t *testing.T) {
	f := newHandlerFixture(true)
	f.create(t, expenseJSON("Eski", "2024-01-10", "PERSONAL", "UNPAID", "1"))
	f.create(t, expenseJSON("Yeni", "2024-03-10", "PERSONAL", "UNPAID", "1"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil), f.handler.ListExpenses)
	require.Equal(t, http.StatusOK, rec.Code)

	var response ExpenseListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
	assert.Equal(t, "Yeni", response.Data[0].Description)
	assert.Equal(t, "Eski", response.Data[1].Description)
}

func TestListExpenses_InvalidFilter(t *testing.T) {
	f := newHandlerFixture(true)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses?startDate=March", nil), f.handler.ListExpenses)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "date", problem.Errors[0].Field)
}

func TestListExpenses_StoreUnavailable(t *testing.T) {
	f := newHandlerFixture(true)
	f.records.ListErr = fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil), f.handler.ListExpenses)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSummary(t *testing.T) {
	f := newHandlerFixture(true)
	today := time.Now().Format(domain.ISODateLayout)
	f.create(t, expenseJSON("Odendi", today, "COMPANY_OFFICIAL", "PAID", "30"))
	f.create(t, expenseJSON("Borc", today, "PERSONAL", "UNPAID", "20"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses/summary?type=PERSONAL", nil), f.handler.GetSummary)
	require.Equal(t, http.StatusOK, rec.Code)

	var response SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "20.00", response.Totals.UnpaidLiability)
	// The paid total ignores the type filter
	assert.Equal(t, "30.00", response.Totals.PaidThisMonth)
	assert.Equal(t, 1, response.Count)
	assert.True(t, strings.HasSuffix(response.MonthStart, "-01"))
	assert.Equal(t, today[:7], response.MonthEnd[:7])
}

func TestUpdateExpense_JSON(t *testing.T) {
	f := newHandlerFixture(true)
	created := f.create(t, `{"amount": 10, "currency": "TRY", "description": "Taksi", "date": "2024-03-01", "type": "PERSONAL", "status": "UNPAID", "ownerId": "ayse", "paymentMethod": "CASH", "projectId": "P-1", "category": "Ulasim"}`)

	body := `{"status": "PAID", "amount": "12.5", "projectId": null}`
	rec := f.do(jsonRequest(http.MethodPut, "/api/v1/expenses/"+created.ID, body), f.handler.UpdateExpense, "id", created.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "PAID", response.Status)
	assert.Equal(t, "12.50", response.Amount)
	assert.Nil(t, response.ProjectID)
	require.NotNil(t, response.Category)
	assert.Equal(t, "Ulasim", *response.Category)
	assert.Equal(t, "Taksi", response.Description)
	assert.Equal(t, []string{"expense.created", "expense.updated"}, f.publisher.Types())
}

func TestUpdateExpense_MultipartClearsAndReplacesReceipt(t *testing.T) {
	f := newHandlerFixture(true)
	created := f.create(t, `{"amount": 10, "currency": "TRY", "description": "Taksi", "date": "2024-03-01", "type": "PERSONAL", "status": "UNPAID", "ownerId": "ayse", "paymentMethod": "CASH", "category": "Ulasim"}`)

	req := multipartRequest(t, http.MethodPut, "/api/v1/expenses/"+created.ID, map[string]string{"category": ""}, "yeni.png", pngBytes(t))
	rec := f.do(req, f.handler.UpdateExpense, "id", created.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Nil(t, response.Category)
	assert.Equal(t, f.receipts.BaseURL+"/"+repository.ReceiptObjectPath(created.ID, "yeni.png"), response.ReceiptURL)
	assert.Equal(t, "10.00", response.Amount)
}

func TestUpdateExpense_NotFound(t *testing.T) {
	f := newHandlerFixture(true)

	rec := f.do(jsonRequest(http.MethodPut, "/api/v1/expenses/missing", `{"status": "PAID"}`), f.handler.UpdateExpense, "id", "missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorTypeNotFound, decodeProblem(t, rec).Type)
}

func TestUpdateExpense_ValidationError(t *testing.T) {
	f := newHandlerFixture(true)
	created := f.create(t, expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10"))

	rec := f.do(jsonRequest(http.MethodPut, "/api/v1/expenses/"+created.ID, `{"paymentMethod": "CHEQUE"}`), f.handler.UpdateExpense, "id", created.ID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "paymentMethod", problem.Errors[0].Field)
}

func TestDeleteExpense(t *testing.T) {
	f := newHandlerFixture(true)
	created := f.create(t, expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10"))

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/expenses/"+created.ID, nil), f.handler.DeleteExpense, "id", created.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.records.Count(domain.ExpensesCollection))

	last := f.publisher.Events[len(f.publisher.Events)-1]
	assert.Equal(t, "expense.deleted", last.Type)
	assert.Equal(t, "ayse", last.OwnerID)

	// Deleting again reports the missing record
	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/v1/expenses/"+created.ID, nil), f.handler.DeleteExpense, "id", created.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeedExpenses(t *testing.T) {
	f := newHandlerFixture(true)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/expenses/seed", nil), f.handler.SeedExpenses)
	require.Equal(t, http.StatusCreated, rec.Code)
	var first SeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Positive(t, first.Created)
	assert.Len(t, first.Data, first.Created)

	// Already seeded: nothing written
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/expenses/seed", nil), f.handler.SeedExpenses)
	require.Equal(t, http.StatusOK, rec.Code)
	var second SeedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, 0, second.Created)
	assert.Empty(t, second.Data)

	// Forced: the samples are written again
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/v1/expenses/seed?force=true", nil), f.handler.SeedExpenses)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2*first.Created, f.records.Count(domain.ExpensesCollection))
}

func TestSeedExpenses_InvalidForce(t *testing.T) {
	f := newHandlerFixture(true)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/expenses/seed?force=maybe", nil), f.handler.SeedExpenses)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.records.CreateCalls)
}

func TestExportExpenses(t *testing.T) {
	f := newHandlerFixture(true)
	f.create(t, expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10"))
	f.create(t, expenseJSON("Kira", "2024-03-02", "COMPANY_OFFICIAL", "UNPAID", "900"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/expenses/export?type=PERSONAL", nil), f.handler.ExportExpenses)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(export.SheetName)
	require.NoError(t, err)
	// header, one expense, blank line, two total rows
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Contains(t, rows[1], "Taksi")
	for _, row := range rows {
		assert.NotContains(t, row, "Kira")
	}
}

func TestRegisterRoutes_RateLimitsMutations(t *testing.T) {
	f := newHandlerFixture(true)
	rl := middleware.NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()
	RegisterRoutes(f.e, rl, f.handler, NewWebSocketHandler(websocket.NewHub(), nil))

	post := func() int {
		req := jsonRequest(http.MethodPost, "/api/v1/expenses", expenseJSON("Taksi", "2024-03-01", "PERSONAL", "UNPAID", "10"))
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.4")
		rec := httptest.NewRecorder()
		f.e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	// Reads are not limited
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.4")
		rec := httptest.NewRecorder()
		f.e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRegisterRoutes_UpdateByPath(t *testing.T) {
	f := newHandlerFixture(true)
	rl := middleware.NewRateLimiter()
	defer rl.Stop()
	RegisterRoutes(f.e, rl, f.handler, NewWebSocketHandler(websocket.NewHub(), nil))

	created, err := f.service.CreateExpense(context.Background(), domain.ExpenseInput{
		Currency:      domain.CurrencyTRY,
		Description:   "Taksi",
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Type:          domain.ExpenseTypeAdvance,
		Status:        domain.ExpenseStatusUnpaid,
		OwnerID:       "ayse",
		PaymentMethod: domain.PaymentMethodTransfer,
	}, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, jsonRequest(http.MethodPut, "/api/v1/expenses/"+created.ID, `{"description": "Havale"}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Havale", response.Description)
	assert.Equal(t, "0.00", response.Amount)
}
