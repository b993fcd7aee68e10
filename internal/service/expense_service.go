package service

import (
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/giderler/giderler-backend/internal/domain"
	"github.com/dafibh/giderler/giderler-backend/internal/export"
	"github.com/dafibh/giderler/giderler-backend/internal/util"
	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseListing is the filtered list returned to the page together with
// both totals.
type ExpenseListing struct {
	Expenses []*domain.Expense    `json:"data"`
	Totals   domain.ExpenseTotals `json:"totals"`
	Count    int                  `json:"count"`
}

// ExpenseSummary is the totals panel: both totals plus the bounds of the
// month the paid total covers.
type ExpenseSummary struct {
	Totals     domain.ExpenseTotals `json:"totals"`
	Count      int                  `json:"count"`
	MonthStart string               `json:"monthStart"`
	MonthEnd   string               `json:"monthEnd"`
}

// ExpenseService handles expense operations and keeps the view state in
// step with successful mutations
type ExpenseService struct {
	repo           domain.ExpenseRepository
	view           *ExpenseViewState
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(repo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{
		repo: repo,
		view: NewExpenseViewState(),
		now:  time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes an event if a publisher is configured
func (s *ExpenseService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// ListExpenses re-fetches every expense, stores the result as the current
// view and returns the filtered list with its totals.
func (s *ExpenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*ExpenseListing, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.view.Reload(ctx, s.repo); err != nil {
		return nil, err
	}

	snapshot := s.view.Snapshot(filter, s.now())
	return &ExpenseListing{
		Expenses: snapshot.Expenses,
		Totals:   snapshot.Totals,
		Count:    len(snapshot.Expenses),
	}, nil
}

// GetSummary computes both totals from the current view, loading it first
// if it was never fetched.
func (s *ExpenseService) GetSummary(ctx context.Context, filter domain.ExpenseFilter) (*ExpenseSummary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !s.view.IsLoaded() {
		if _, err := s.view.Reload(ctx, s.repo); err != nil {
			return nil, err
		}
	}

	now := s.now()
	snapshot := s.view.Snapshot(filter, now)
	monthStart, monthEnd := util.MonthBounds(now)
	return &ExpenseSummary{
		Totals:     snapshot.Totals,
		Count:      len(snapshot.Expenses),
		MonthStart: monthStart,
		MonthEnd:   monthEnd,
	}, nil
}

// CreateExpense validates and stores a new expense. When the record was
// written but the receipt could not be linked, the partial expense is
// returned together with an error wrapping domain.ErrReceiptNotLinked; the
// view is not updated in that case.
func (s *ExpenseService) CreateExpense(ctx context.Context, input domain.ExpenseInput, receipt *domain.ReceiptFile) (*domain.Expense, error) {
	if err := ValidateExpenseInput(&input); err != nil {
		return nil, err
	}
	if receipt != nil {
		if err := ValidateReceipt(receipt); err != nil {
			return nil, err
		}
	}

	expense, err := s.repo.Create(ctx, input, receipt)
	if err != nil {
		return expense, err
	}

	s.view.ApplyCreated(expense)
	s.publishEvent(websocket.ExpenseCreated(expense.OwnerID, expense.View()))

	log.Info().
		Str("expense_id", expense.ID).
		Str("owner_id", expense.OwnerID).
		Bool("has_receipt", expense.ReceiptURL != "").
		Msg("Expense created")

	return expense, nil
}

// UpdateExpense applies a partial update and replaces the expense in the view
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, patch domain.ExpensePatch, receipt *domain.ReceiptFile) (*domain.Expense, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	if err := ValidateExpensePatch(&patch); err != nil {
		return nil, err
	}
	if receipt != nil {
		if err := ValidateReceipt(receipt); err != nil {
			return nil, err
		}
	}

	expense, err := s.repo.Update(ctx, id, patch, receipt)
	if err != nil {
		return nil, err
	}

	s.view.ApplyUpdated(expense)
	s.publishEvent(websocket.ExpenseUpdated(expense.OwnerID, expense.View()))

	log.Info().
		Str("expense_id", expense.ID).
		Str("owner_id", expense.OwnerID).
		Msg("Expense updated")

	return expense, nil
}

// DeleteExpense removes an expense. The receipt object is left in storage.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrNotFound
	}

	// The owner is only known if the record is in the current view
	var ownerID string
	if existing, ok := s.view.Find(id); ok {
		ownerID = existing.OwnerID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.view.ApplyDeleted(id)
	s.publishEvent(websocket.ExpenseDeleted(ownerID, id))

	log.Info().
		Str("expense_id", id).
		Msg("Expense deleted")

	return nil
}

// SeedSamples writes the sample set if the store is empty (or always when
// force is set) and prepends what was created to the view. On error the
// samples written before the failure are returned with it and the view is
// left alone.
func (s *ExpenseService) SeedSamples(ctx context.Context, force bool) ([]*domain.Expense, error) {
	created, err := s.repo.Seed(ctx, force)
	if err != nil {
		log.Warn().Err(err).Int("written", len(created)).Msg("Seeding stopped early")
		return created, err
	}
	if len(created) == 0 {
		log.Info().Bool("force", force).Msg("Seed skipped, expenses already present")
		return created, nil
	}

	s.view.ApplyCreated(created...)
	s.publishEvent(websocket.ExpensesSeeded(len(created)))

	log.Info().
		Int("count", len(created)).
		Bool("force", force).
		Msg("Sample expenses seeded")

	return created, nil
}

// ExportExpenses re-fetches, filters and writes the result as an XLSX
// workbook to w.
func (s *ExpenseService) ExportExpenses(ctx context.Context, filter domain.ExpenseFilter, w io.Writer) error {
	listing, err := s.ListExpenses(ctx, filter)
	if err != nil {
		return err
	}
	return export.WriteExpensesXLSX(w, listing.Expenses, listing.Totals)
}

// ValidateExpenseInput checks and normalizes a new expense in place
func ValidateExpenseInput(input *domain.ExpenseInput) error {
	input.Description = strings.TrimSpace(input.Description)
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.ProjectID = domain.NormalizeOptional(input.ProjectID)
	input.Category = domain.NormalizeOptional(input.Category)

	if err := validateDescription(input.Description); err != nil {
		return err
	}
	if err := validateAmount(input.Amount); err != nil {
		return err
	}
	if !input.Currency.IsValid() {
		return domain.ErrInvalidCurrency
	}
	if input.Date.IsZero() {
		return domain.ErrDateRequired
	}
	input.Date = util.CalendarDate(input.Date)
	if !input.Type.IsValid() {
		return domain.ErrInvalidExpenseType
	}
	if !input.Status.IsValid() {
		return domain.ErrInvalidExpenseStatus
	}
	if input.OwnerID == "" {
		return domain.ErrOwnerRequired
	}
	if !input.PaymentMethod.IsValid() {
		return domain.ErrInvalidPaymentMethod
	}
	return nil
}

// ValidateExpensePatch checks and normalizes the fields present in a patch
func ValidateExpensePatch(patch *domain.ExpensePatch) error {
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if err := validateDescription(description); err != nil {
			return err
		}
		patch.Description = &description
	}
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return err
		}
	}
	if patch.Currency != nil && !patch.Currency.IsValid() {
		return domain.ErrInvalidCurrency
	}
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return domain.ErrDateRequired
		}
		date := util.CalendarDate(*patch.Date)
		patch.Date = &date
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return domain.ErrInvalidExpenseType
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return domain.ErrInvalidExpenseStatus
	}
	if patch.OwnerID != nil {
		owner := strings.TrimSpace(*patch.OwnerID)
		if owner == "" {
			return domain.ErrOwnerRequired
		}
		patch.OwnerID = &owner
	}
	if patch.PaymentMethod != nil && !patch.PaymentMethod.IsValid() {
		return domain.ErrInvalidPaymentMethod
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return domain.ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if !amount.Round(domain.AmountScale).Equal(amount) {
		return domain.ErrAmountPrecision
	}
	return nil
}
