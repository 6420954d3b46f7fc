package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the sale record lifecycle state.
type Status string

const (
	// StatusDraft means the sale is recorded but not confirmed. Stock is
	// untouched and the record does not count towards daily totals.
	StatusDraft Status = "draft"
	// StatusVerified means stock was deducted and the record feeds the
	// daily payment rollup. The transition happens at most once.
	StatusVerified Status = "verified"
)

// VerifyOutcome reports what a verification attempt did.
type VerifyOutcome string

const (
	OutcomeVerified          VerifyOutcome = "verified"
	OutcomeAlreadyVerified   VerifyOutcome = "already_verified"
	OutcomeInsufficientStock VerifyOutcome = "insufficient_stock"
)

// SaleRecord is one sale of one stock item. PricePerUnit is snapshotted
// when the draft is created; CostPerUnit when the sale is verified, so a
// later purchase cannot rewrite realized profit.
type SaleRecord struct {
	ID           int64           `json:"id"`
	StockItemID  int64           `json:"stock_item_id"`
	Customer     string          `json:"customer"`
	QuantitySold int64           `json:"quantity_sold"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Profit       decimal.Decimal `json:"profit"`
	Status       Status          `json:"status"`
	SaleDate     time.Time       `json:"sale_date"`
	VerifiedAt   *time.Time      `json:"verified_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateSaleInput describes a new draft sale. PricePerUnit overrides the
// item's current list price when set.
type CreateSaleInput struct {
	StockItemID  int64            `json:"stock_item_id" validate:"required,gt=0"`
	Customer     string           `json:"customer" validate:"max=200"`
	QuantitySold int64            `json:"quantity_sold" validate:"required,gt=0"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	SaleDate     time.Time        `json:"sale_date"`
}

// UpdateSaleInput edits quantity, price or date. Editing a verified sale
// re-runs the stock deduction against the new quantity.
type UpdateSaleInput struct {
	QuantitySold int64            `json:"quantity_sold" validate:"required,gt=0"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	SaleDate     *time.Time       `json:"sale_date,omitempty"`
}

// VerifyResult pairs a sale with its verification outcome in batch mode.
type VerifyResult struct {
	SaleID  int64         `json:"sale_id"`
	Outcome VerifyOutcome `json:"outcome,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	Status Status
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// ErrSaleNotFound indicates a missing sale record.
var ErrSaleNotFound = errors.New("sales: record not found")

// financials computes derived amounts at the stated scale.
func financials(qty int64, price, cost decimal.Decimal) (total, profit decimal.Decimal) {
	q := decimal.NewFromInt(qty)
	total = price.Mul(q).Round(2)
	profit = price.Sub(cost).Mul(q).Round(2)
	return total, profit
}
