package export

import (
	"fmt"
	"io"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the name of the single sheet in an export.
	SheetName = "Giderler"

	// ContentType is the MIME type of the workbook written by WriteExpensesXLSX.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"Tarih", "Açıklama", "Tutar", "Para Birimi", "Tür", "Durum",
	"Kişi", "Ödeme Yöntemi", "Proje", "Kategori", "Fiş",
}

// WriteExpensesXLSX writes one row per expense followed by the two totals.
func WriteExpensesXLSX(w io.Writer, expenses []*domain.Expense, totals domain.ExpenseTotals) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.DateString(),
			e.Description,
			e.Amount.InexactFloat64(),
			string(e.Currency),
			string(e.Type),
			string(e.Status),
			e.OwnerID,
			string(e.PaymentMethod),
			optionalCell(e.ProjectID),
			optionalCell(e.Category),
			e.ReceiptURL,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	totalsRow := len(expenses) + 3
	summary := [][]interface{}{
		{"Ödenmemiş Borç", totals.UnpaidLiability.InexactFloat64()},
		{"Bu Ay Ödenen", totals.PaidThisMonth.InexactFloat64()},
	}
	for i, values := range summary {
		cell, err := excelize.CoordinatesToCellName(2, totalsRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 30)
	f.SetColWidth(SheetName, "C", "C", 12)
	f.SetColWidth(SheetName, "K", "K", 40)

	return f.Write(w)
}

func optionalCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
