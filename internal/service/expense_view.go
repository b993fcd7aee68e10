package service

import (
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/util"
	"github.com/shopspring/decimal"
)

// FilterExpenses returns the expenses matching every predicate of filter.
// Dates compare as YYYY-MM-DD strings; empty bounds are unbounded and an
// empty or ALL type/status matches anything.
func FilterExpenses(expenses []*domain.Expense, filter domain.ExpenseFilter) []*domain.Expense {
	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if matchesFilter(e, filter) {
			result = append(result, e)
		}
	}
	return result
}

func matchesFilter(e *domain.Expense, filter domain.ExpenseFilter) bool {
	day := util.ISODay(e.Date)
	if filter.StartDate != "" && day < filter.StartDate {
		return false
	}
	if filter.EndDate != "" && day > filter.EndDate {
		return false
	}
	if !isWildcard(filter.Type) && string(e.Type) != filter.Type {
		return false
	}
	if !isWildcard(filter.Status) && string(e.Status) != filter.Status {
		return false
	}
	return true
}

func isWildcard(v string) bool {
	return v == "" || v == domain.FilterAll
}

// UnpaidLiabilityTotal sums what the company still owes individuals:
// unpaid PERSONAL and ADVANCE expenses. Pass the filtered list.
func UnpaidLiabilityTotal(expenses []*domain.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if isUnpaidLiability(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func isUnpaidLiability(e *domain.Expense) bool {
	switch e.Status {
	case domain.ExpenseStatusUnpaid:
		return e.Type.OwedToIndividual()
	case domain.ExpenseStatusPaid:
		return false
	}
	return false
}

// PaidThisMonthTotal sums PAID expenses dated in now's month and year.
// Pass the unfiltered list: this total ignores the active filter.
func PaidThisMonthTotal(expenses []*domain.Expense, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		switch e.Status {
		case domain.ExpenseStatusPaid:
			if util.InSameMonth(e.Date, now) {
				total = total.Add(e.Amount)
			}
		case domain.ExpenseStatusUnpaid:
		}
	}
	return total
}

// ComputeTotals derives both totals: the liability from filtered, the
// monthly paid amount from all.
func ComputeTotals(all, filtered []*domain.Expense, now time.Time) domain.ExpenseTotals {
	return domain.ExpenseTotals{
		UnpaidLiability: UnpaidLiabilityTotal(filtered),
		PaidThisMonth:   PaidThisMonthTotal(all, now),
	}
}

// MergeCreated returns a new list with created at the front.
func MergeCreated(expenses []*domain.Expense, created *domain.Expense) []*domain.Expense {
	result := make([]*domain.Expense, 0, len(expenses)+1)
	result = append(result, created)
	return append(result, expenses...)
}

// MergeUpdated returns a new list with the element whose id matches
// updated replaced in place.
func MergeUpdated(expenses []*domain.Expense, updated *domain.Expense) []*domain.Expense {
	result := make([]*domain.Expense, len(expenses))
	for i, e := range expenses {
		if e.ID == updated.ID {
			result[i] = updated
		} else {
			result[i] = e
		}
	}
	return result
}

// MergeDeleted returns a new list without the element with id.
func MergeDeleted(expenses []*domain.Expense, id string) []*domain.Expense {
	result := make([]*domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.ID != id {
			result = append(result, e)
		}
	}
	return result
}
