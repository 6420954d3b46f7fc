package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups stock items.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// StockItem is the single source of truth for on-hand quantity and cost.
// Quantity and cost are mutated only through the ledger transitions in this
// package; purchases and sales apply them inside their own transactions.
type StockItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CategoryID   int64           `json:"category_id"`
	Quantity     int64           `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateItemInput describes a new stock item.
type CreateItemInput struct {
	Name         string          `json:"name" validate:"required,max=200"`
	CategoryID   int64           `json:"category_id" validate:"required,gt=0"`
	Quantity     int64           `json:"quantity" validate:"gte=0"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// UpdatePricingInput adjusts the list price of an item. Cost and quantity
// have no direct update path.
type UpdatePricingInput struct {
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// ListFilter narrows item listings.
type ListFilter struct {
	CategoryID int64
	LowStock   bool
	Limit      int
	Offset     int
}

// LowStockThreshold marks items needing replenishment.
const LowStockThreshold = 10

// ErrInsufficientStock triggered when a deduction would drive quantity negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrInvalidQuantity indicates a non-positive quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")

// ErrInvalidUnitCost indicates a negative cost value.
var ErrInvalidUnitCost = errors.New("inventory: unit cost must be >= 0")

// ErrItemNotFound indicates a missing stock item row.
var ErrItemNotFound = errors.New("inventory: stock item not found")
