package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// FormatAmount renders d with exactly AmountScale decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountScale)
}

// ExpenseView is the serialized form of an Expense. HTTP responses,
// live-update events and broker messages all carry this shape.
type ExpenseView struct {
	ID            string  `json:"id"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	OwnerID       string  `json:"ownerId"`
	PaymentMethod string  `json:"paymentMethod"`
	ProjectID     *string `json:"projectId"`
	Category      *string `json:"category"`
	ReceiptURL    string  `json:"receiptUrl"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// View returns the serialized form of e.
func (e *Expense) View() ExpenseView {
	return ExpenseView{
		ID:            e.ID,
		Amount:        FormatAmount(e.Amount),
		Currency:      string(e.Currency),
		Description:   e.Description,
		Date:          e.DateString(),
		Type:          string(e.Type),
		Status:        string(e.Status),
		OwnerID:       e.OwnerID,
		PaymentMethod: string(e.PaymentMethod),
		ProjectID:     e.ProjectID,
		Category:      e.Category,
		ReceiptURL:    e.ReceiptURL,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
}

// MarshalJSON encodes the expense as its ExpenseView.
func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.View())
}
