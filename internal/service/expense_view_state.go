package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
)

// ExpenseSnapshot is the filtered view plus its totals at a point in time.
type ExpenseSnapshot struct {
	Expenses []*domain.Expense
	Totals   domain.ExpenseTotals
}

// ExpenseViewState holds the last fetched expense list. Mutations are
// merged in only after the corresponding store call succeeded.
type ExpenseViewState struct {
	mu       sync.RWMutex
	expenses []*domain.Expense
	loaded   bool
}

// NewExpenseViewState creates an empty, unloaded ExpenseViewState
func NewExpenseViewState() *ExpenseViewState {
	return &ExpenseViewState{}
}

// Reload replaces the list with a fresh fetch. On error the previous list
// is kept.
func (v *ExpenseViewState) Reload(ctx context.Context, repo domain.ExpenseRepository) ([]*domain.Expense, error) {
	expenses, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	v.Replace(expenses)
	return expenses, nil
}

// Replace sets the list.
func (v *ExpenseViewState) Replace(expenses []*domain.Expense) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expenses = expenses
	v.loaded = true
}

// IsLoaded reports whether the list was fetched at least once.
func (v *ExpenseViewState) IsLoaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// ApplyCreated prepends created expenses, keeping their relative order.
func (v *ExpenseViewState) ApplyCreated(created ...*domain.Expense) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := len(created) - 1; i >= 0; i-- {
		v.expenses = MergeCreated(v.expenses, created[i])
	}
}

// ApplyUpdated replaces the matching expense in place.
func (v *ExpenseViewState) ApplyUpdated(updated *domain.Expense) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expenses = MergeUpdated(v.expenses, updated)
}

// ApplyDeleted removes the expense with id.
func (v *ExpenseViewState) ApplyDeleted(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expenses = MergeDeleted(v.expenses, id)
}

// Find returns the held expense with id, if any.
func (v *ExpenseViewState) Find(id string) (*domain.Expense, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, e := range v.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Snapshot filters the held list and computes both totals as of now.
func (v *ExpenseViewState) Snapshot(filter domain.ExpenseFilter, now time.Time) ExpenseSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	filtered := FilterExpenses(v.expenses, filter)
	return ExpenseSnapshot{
		Expenses: filtered,
		Totals:   ComputeTotals(v.expenses, filtered, now),
	}
}
