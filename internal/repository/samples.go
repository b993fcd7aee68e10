package repository

import (
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// SampleExpenses returns the fixed demo data set written by Seed.
func SampleExpenses() []domain.ExpenseInput {
	strPtr := func(s string) *string { return &s }
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	return []domain.ExpenseInput{
		{
			Amount:        decimal.RequireFromString("1250.00"),
			Currency:      domain.CurrencyTRY,
			Description:   "Müşteri ziyareti otel konaklaması",
			Date:          day(2024, time.March, 12),
			Type:          domain.ExpenseTypePersonal,
			Status:        domain.ExpenseStatusUnpaid,
			OwnerID:       "ahmet.yilmaz",
			PaymentMethod: domain.PaymentMethodCard,
			ProjectID:     strPtr("PRJ-101"),
			Category:      strPtr("Konaklama"),
		},
		{
			Amount:        decimal.RequireFromString("340.50"),
			Currency:      domain.CurrencyTRY,
			Description:   "Şantiye için taksi",
			Date:          day(2024, time.March, 9),
			Type:          domain.ExpenseTypeAdvance,
			Status:        domain.ExpenseStatusUnpaid,
			OwnerID:       "elif.demir",
			PaymentMethod: domain.PaymentMethodCash,
			ProjectID:     strPtr("PRJ-102"),
			Category:      strPtr("Ulaşım"),
		},
		{
			Amount:        decimal.RequireFromString("4800.00"),
			Currency:      domain.CurrencyTRY,
			Description:   "Ofis kırtasiye alımı",
			Date:          day(2024, time.March, 5),
			Type:          domain.ExpenseTypeCompanyOfficial,
			Status:        domain.ExpenseStatusPaid,
			OwnerID:       "muhasebe",
			PaymentMethod: domain.PaymentMethodTransfer,
			Category:      strPtr("Ofis"),
		},
		{
			Amount:        decimal.RequireFromString("85.00"),
			Currency:      domain.CurrencyEUR,
			Description:   "Fuar giriş bileti",
			Date:          day(2024, time.February, 27),
			Type:          domain.ExpenseTypePersonal,
			Status:        domain.ExpenseStatusPaid,
			OwnerID:       "ahmet.yilmaz",
			PaymentMethod: domain.PaymentMethodCard,
			ProjectID:     strPtr("PRJ-090"),
		},
		{
			Amount:        decimal.RequireFromString("2000.00"),
			Currency:      domain.CurrencyTRY,
			Description:   "Saha ekibi iş avansı",
			Date:          day(2024, time.February, 20),
			Type:          domain.ExpenseTypeAdvance,
			Status:        domain.ExpenseStatusPaid,
			OwnerID:       "can.kaya",
			PaymentMethod: domain.PaymentMethodTransfer,
		},
	}
}
