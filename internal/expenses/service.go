package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// StorePort abstracts repository usage for service.
type StorePort interface {
	Create(ctx context.Context, e Expense) (int64, error)
	Get(ctx context.Context, id int64) (Expense, error)
	ListRange(ctx context.Context, from, to time.Time, expenseType Type) ([]Expense, error)
	TotalsByType(ctx context.Context, from, to time.Time) (map[Type]decimal.Decimal, error)
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records operating expenses. They sit outside the stock ledger
// but feed the dashboard and the sales report's net figures.
type Service struct {
	store StorePort
	audit AuditPort
}

// NewService builds Service.
func NewService(store StorePort, audit AuditPort) *Service {
	return &Service{store: store, audit: audit}
}

// Create records an expense.
func (s *Service) Create(ctx context.Context, input CreateExpenseInput) (Expense, error) {
	if !input.Type.Valid() {
		return Expense{}, ErrInvalidType
	}
	if !input.Amount.IsPositive() {
		return Expense{}, ErrInvalidAmount
	}
	spentAt := input.SpentAt
	if spentAt.IsZero() {
		spentAt = time.Now()
	}
	e := Expense{
		Type:        input.Type,
		Amount:      input.Amount.Round(2),
		Description: input.Description,
		SpentAt:     spentAt,
	}
	id, err := s.store.Create(ctx, e)
	if err != nil {
		return Expense{}, fmt.Errorf("expenses: create: %w", err)
	}
	e.ID = id
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorFromContext(ctx),
			Action:   "EXPENSE_CREATE",
			Entity:   "expense",
			EntityID: fmt.Sprintf("%d", id),
			Meta:     map[string]any{"type": string(e.Type), "amount": e.Amount.String()},
		})
	}
	return e, nil
}

// Get fetches a single expense.
func (s *Service) Get(ctx context.Context, id int64) (Expense, error) {
	return s.store.Get(ctx, id)
}

// ListRange returns expenses in the closed date range.
func (s *Service) ListRange(ctx context.Context, from, to time.Time, expenseType Type) ([]Expense, error) {
	if expenseType != "" && !expenseType.Valid() {
		return nil, ErrInvalidType
	}
	return s.store.ListRange(ctx, from, to, expenseType)
}

// Summarize totals the range overall and per type.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	byType, err := s.store.TotalsByType(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	total := decimal.Zero
	for _, sum := range byType {
		total = total.Add(sum)
	}
	return Summary{From: from, To: to, Total: total, ByType: byType}, nil
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorFromContext(ctx),
			Action:   "EXPENSE_DELETE",
			Entity:   "expense",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}
