package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    Currency
		wantErr bool
	}{
		{"TRY", CurrencyTRY, false},
		{"EUR", CurrencyEUR, false},
		{" EUR ", CurrencyEUR, false},
		{"USD", "", true},
		{"try", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCurrency(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCurrency) {
				t.Errorf("ParseCurrency(%q) error = %v, want ErrInvalidCurrency", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCurrency(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseExpenseType(t *testing.T) {
	for _, v := range []string{"COMPANY_OFFICIAL", "PERSONAL", "ADVANCE"} {
		got, err := ParseExpenseType(v)
		require.NoError(t, err)
		assert.Equal(t, ExpenseType(v), got)
	}

	_, err := ParseExpenseType("BUSINESS")
	assert.ErrorIs(t, err, ErrInvalidExpenseType)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseExpenseStatus(t *testing.T) {
	for _, v := range []string{"PAID", "UNPAID"} {
		got, err := ParseExpenseStatus(v)
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatus(v), got)
	}

	_, err := ParseExpenseStatus("PENDING")
	assert.ErrorIs(t, err, ErrInvalidExpenseStatus)
}

func TestParsePaymentMethod(t *testing.T) {
	for _, v := range []string{"CASH", "CARD", "TRANSFER"} {
		got, err := ParsePaymentMethod(v)
		require.NoError(t, err)
		assert.Equal(t, PaymentMethod(v), got)
	}

	_, err := ParsePaymentMethod("CHEQUE")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestExpenseType_OwedToIndividual(t *testing.T) {
	assert.True(t, ExpenseTypePersonal.OwedToIndividual())
	assert.True(t, ExpenseTypeAdvance.OwedToIndividual())
	assert.False(t, ExpenseTypeCompanyOfficial.OwedToIndividual())
}

func TestExpenseFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  ExpenseFilter
		wantErr error
	}{
		{"match all", NewExpenseFilter(), nil},
		{"zero value", ExpenseFilter{}, nil},
		{"date range", ExpenseFilter{StartDate: "2024-01-01", EndDate: "2024-01-31", Type: FilterAll, Status: FilterAll}, nil},
		{"bad start", ExpenseFilter{StartDate: "01/01/2024"}, ErrInvalidDate},
		{"bad end", ExpenseFilter{EndDate: "2024-13-01"}, ErrInvalidDate},
		{"bad type", ExpenseFilter{Type: "OTHER"}, ErrInvalidExpenseType},
		{"bad status", ExpenseFilter{Status: "LATE"}, ErrInvalidExpenseStatus},
		{"concrete type and status", ExpenseFilter{Type: "ADVANCE", Status: "UNPAID"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpensePatch_IsEmpty(t *testing.T) {
	assert.True(t, ExpensePatch{}.IsEmpty())

	desc := "Taksi"
	assert.False(t, ExpensePatch{Description: &desc}.IsEmpty())
	assert.False(t, ExpensePatch{Category: ClearString()}.IsEmpty())
}

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	type payload struct {
		ProjectID OptionalString `json:"projectId"`
	}

	tests := []struct {
		name      string
		body      string
		wantState OptionalState
		wantValue string
	}{
		{"absent key stays unset", `{}`, OptionalUnset, ""},
		{"null clears", `{"projectId": null}`, OptionalClear, ""},
		{"empty string clears", `{"projectId": ""}`, OptionalClear, ""},
		{"value sets", `{"projectId": "PRJ-7"}`, OptionalSet, "PRJ-7"},
		{"value is trimmed", `{"projectId": "  PRJ-7 "}`, OptionalSet, "PRJ-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantState, p.ProjectID.State)
			assert.Equal(t, tt.wantValue, p.ProjectID.Value)
		})
	}
}

func TestOptionalString_UnmarshalJSONRejectsNonString(t *testing.T) {
	var o OptionalString
	err := json.Unmarshal([]byte(`42`), &o)
	assert.Error(t, err)
}

func TestOptionalString_Pointer(t *testing.T) {
	assert.Nil(t, ClearString().Pointer())

	p := SetString("Yol").Pointer()
	require.NotNil(t, p)
	assert.Equal(t, "Yol", *p)
}

func TestNormalizeOptional(t *testing.T) {
	assert.Nil(t, NormalizeOptional(nil))

	blank := "   "
	assert.Nil(t, NormalizeOptional(&blank))

	v := " Ofis "
	got := NormalizeOptional(&v)
	require.NotNil(t, got)
	assert.Equal(t, "Ofis", *got)
}
