package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	GetItem(ctx context.Context, id int64) (StockItem, error)
	ListItems(ctx context.Context, filter ListFilter) ([]StockItem, error)
	CreateItem(ctx context.Context, item StockItem) (int64, error)
	UpdateSellingPrice(ctx context.Context, id int64, input UpdatePricingInput) error
	CreateCategory(ctx context.Context, name string) (int64, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates stock item master data. Quantity and cost are never
// mutated here; those move only through purchase receiving and sale
// verification.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateItem registers a new stock item with opening quantity and cost.
func (s *Service) CreateItem(ctx context.Context, input CreateItemInput) (StockItem, error) {
	if input.Name == "" || input.CategoryID == 0 {
		return StockItem{}, errors.New("inventory: name and category required")
	}
	if input.Quantity < 0 {
		return StockItem{}, ErrInvalidQuantity
	}
	if input.CostPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return StockItem{}, ErrInvalidUnitCost
	}
	item := StockItem{
		Name:         input.Name,
		CategoryID:   input.CategoryID,
		Quantity:     input.Quantity,
		CostPrice:    input.CostPrice.Round(costScale),
		SellingPrice: input.SellingPrice.Round(costScale),
	}
	id, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return StockItem{}, fmt.Errorf("inventory: create item: %w", err)
	}
	item.ID = id
	s.recordAudit(ctx, "ITEM_CREATE", id, map[string]any{"name": item.Name})
	return item, nil
}

// GetItem fetches a single item.
func (s *Service) GetItem(ctx context.Context, id int64) (StockItem, error) {
	return s.repo.GetItem(ctx, id)
}

// ListItems returns items matching the filter.
func (s *Service) ListItems(ctx context.Context, filter ListFilter) ([]StockItem, error) {
	return s.repo.ListItems(ctx, filter)
}

// UpdatePricing overwrites the list price of an item.
func (s *Service) UpdatePricing(ctx context.Context, id int64, input UpdatePricingInput) error {
	if input.SellingPrice.IsNegative() {
		return ErrInvalidUnitCost
	}
	input.SellingPrice = input.SellingPrice.Round(costScale)
	if err := s.repo.UpdateSellingPrice(ctx, id, input); err != nil {
		return err
	}
	s.recordAudit(ctx, "ITEM_REPRICE", id, map[string]any{"selling_price": input.SellingPrice.String()})
	return nil
}

// CreateCategory registers a category.
func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	if name == "" {
		return Category{}, errors.New("inventory: category name required")
	}
	id, err := s.repo.CreateCategory(ctx, name)
	if err != nil {
		return Category{}, fmt.Errorf("inventory: create category: %w", err)
	}
	return Category{ID: id, Name: name}, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "stock_item",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}
