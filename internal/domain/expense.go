package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ISODateLayout is the calendar-date layout used for stored dates and filters.
const ISODateLayout = "2006-01-02"

// ExpensesCollection is the record store collection holding expenses.
const ExpensesCollection = "expenses"

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency returns the Currency for s or ErrInvalidCurrency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.TrimSpace(s))
	if !c.IsValid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyTRY, CurrencyEUR:
		return true
	}
	return false
}

type ExpenseType string

const (
	ExpenseTypeCompanyOfficial ExpenseType = "COMPANY_OFFICIAL"
	ExpenseTypePersonal        ExpenseType = "PERSONAL"
	ExpenseTypeAdvance         ExpenseType = "ADVANCE"
)

// ParseExpenseType returns the ExpenseType for s or ErrInvalidExpenseType.
func ParseExpenseType(s string) (ExpenseType, error) {
	t := ExpenseType(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", ErrInvalidExpenseType
	}
	return t, nil
}

func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseTypeCompanyOfficial, ExpenseTypePersonal, ExpenseTypeAdvance:
		return true
	}
	return false
}

// OwedToIndividual reports whether an unpaid expense of this type is money
// the company owes to the person who paid it.
func (t ExpenseType) OwedToIndividual() bool {
	switch t {
	case ExpenseTypePersonal, ExpenseTypeAdvance:
		return true
	case ExpenseTypeCompanyOfficial:
		return false
	}
	return false
}

type ExpenseStatus string

const (
	ExpenseStatusPaid   ExpenseStatus = "PAID"
	ExpenseStatusUnpaid ExpenseStatus = "UNPAID"
)

// ParseExpenseStatus returns the ExpenseStatus for s or ErrInvalidExpenseStatus.
func ParseExpenseStatus(s string) (ExpenseStatus, error) {
	st := ExpenseStatus(strings.TrimSpace(s))
	if !st.IsValid() {
		return "", ErrInvalidExpenseStatus
	}
	return st, nil
}

func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPaid, ExpenseStatusUnpaid:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// ParsePaymentMethod returns the PaymentMethod for s or ErrInvalidPaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.TrimSpace(s))
	if !m.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// Expense is a single recorded expense. Date carries no time-of-day; it is
// always UTC midnight of the calendar day. It serializes as its ExpenseView.
type Expense struct {
	ID            string
	Amount        decimal.Decimal
	Currency      Currency
	Description   string
	Date          time.Time
	Type          ExpenseType
	Status        ExpenseStatus
	OwnerID       string
	PaymentMethod PaymentMethod
	ProjectID     *string
	Category      *string
	ReceiptURL    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DateString returns the expense date as YYYY-MM-DD.
func (e *Expense) DateString() string {
	return e.Date.Format(ISODateLayout)
}

// ExpenseInput holds every caller-supplied field of a new expense.
type ExpenseInput struct {
	Amount        decimal.Decimal
	Currency      Currency
	Description   string
	Date          time.Time
	Type          ExpenseType
	Status        ExpenseStatus
	OwnerID       string
	PaymentMethod PaymentMethod
	ProjectID     *string
	Category      *string
}

// ExpensePatch is a partial update. Nil pointers leave the stored value
// unchanged; optional text fields carry their own three-valued state.
type ExpensePatch struct {
	Amount        *decimal.Decimal
	Currency      *Currency
	Description   *string
	Date          *time.Time
	Type          *ExpenseType
	Status        *ExpenseStatus
	OwnerID       *string
	PaymentMethod *PaymentMethod
	ProjectID     OptionalString
	Category      OptionalString
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Amount == nil && p.Currency == nil && p.Description == nil && p.Date == nil &&
		p.Type == nil && p.Status == nil && p.OwnerID == nil && p.PaymentMethod == nil &&
		p.ProjectID.IsUnset() && p.Category.IsUnset()
}

// ReceiptFile is an uploaded receipt ready to be stored.
type ReceiptFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FilterAll is the wildcard for the type and status filters.
const FilterAll = "ALL"

// ExpenseFilter selects a subset of expenses. StartDate and EndDate are
// inclusive YYYY-MM-DD bounds; empty means unbounded.
type ExpenseFilter struct {
	StartDate string
	EndDate   string
	Type      string
	Status    string
}

// NewExpenseFilter returns a filter matching everything.
func NewExpenseFilter() ExpenseFilter {
	return ExpenseFilter{Type: FilterAll, Status: FilterAll}
}

// Validate checks date layouts and that type/status are ALL or a known value.
func (f ExpenseFilter) Validate() error {
	if f.StartDate != "" {
		if _, err := time.Parse(ISODateLayout, f.StartDate); err != nil {
			return ErrInvalidDate
		}
	}
	if f.EndDate != "" {
		if _, err := time.Parse(ISODateLayout, f.EndDate); err != nil {
			return ErrInvalidDate
		}
	}
	if f.Type != "" && f.Type != FilterAll && !ExpenseType(f.Type).IsValid() {
		return ErrInvalidExpenseType
	}
	if f.Status != "" && f.Status != FilterAll && !ExpenseStatus(f.Status).IsValid() {
		return ErrInvalidExpenseStatus
	}
	return nil
}

// ExpenseTotals holds the two running totals shown next to the list.
type ExpenseTotals struct {
	UnpaidLiability decimal.Decimal `json:"unpaidLiability"`
	PaidThisMonth   decimal.Decimal `json:"paidThisMonth"`
}
