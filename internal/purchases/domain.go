package purchases

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	// StatusPending means the order is placed but goods have not arrived.
	// Stock is untouched.
	StatusPending Status = "pending"
	// StatusReceived means goods arrived and the stock ledger absorbed
	// the lot. The transition happens at most once.
	StatusReceived Status = "received"
)

// ReturnStatus is the purchase return lifecycle state.
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnProcessed ReturnStatus = "processed"
)

// ReceiveOutcome distinguishes a real transition from an idempotent no-op.
type ReceiveOutcome string

const (
	OutcomeReceived        ReceiveOutcome = "received"
	OutcomeAlreadyReceived ReceiveOutcome = "already_received"
)

// ProcessOutcome reports whether processing a return deducted stock or the
// return was already processed.
type ProcessOutcome string

const (
	OutcomeProcessed        ProcessOutcome = "processed"
	OutcomeAlreadyProcessed ProcessOutcome = "already_processed"
)

// PurchaseOrder records a supplier order for a single stock item. Receiving
// it folds the lot into the item's weighted-average cost.
type PurchaseOrder struct {
	ID                int64            `json:"id"`
	StockItemID       int64            `json:"stock_item_id"`
	Supplier          string           `json:"supplier"`
	QuantityPurchased int64            `json:"quantity_purchased"`
	CostPricePerUnit  decimal.Decimal  `json:"cost_price_per_unit"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	TotalCost         decimal.Decimal  `json:"total_cost"`
	Status            Status           `json:"status"`
	PurchaseDate      time.Time        `json:"purchase_date"`
	ReceivedAt        *time.Time       `json:"received_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// PurchaseReturn sends previously received goods back to the supplier.
// Processing it deducts the returned quantity from stock.
type PurchaseReturn struct {
	ID              int64        `json:"id"`
	PurchaseOrderID int64        `json:"purchase_order_id"`
	StockItemID     int64        `json:"stock_item_id"`
	Quantity        int64        `json:"quantity"`
	Reason          string       `json:"reason"`
	Status          ReturnStatus `json:"status"`
	ProcessedAt     *time.Time   `json:"processed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// CreateOrderInput describes a new pending purchase order.
type CreateOrderInput struct {
	StockItemID       int64            `json:"stock_item_id" validate:"required,gt=0"`
	Supplier          string           `json:"supplier" validate:"max=200"`
	QuantityPurchased int64            `json:"quantity_purchased" validate:"required,gt=0"`
	CostPricePerUnit  decimal.Decimal  `json:"cost_price_per_unit"`
	SellingPrice      *decimal.Decimal `json:"selling_price,omitempty"`
	PurchaseDate      time.Time        `json:"purchase_date"`
}

// CreateReturnInput describes a new pending purchase return.
type CreateReturnInput struct {
	PurchaseOrderID int64  `json:"purchase_order_id" validate:"required,gt=0"`
	Quantity        int64  `json:"quantity" validate:"required,gt=0"`
	Reason          string `json:"reason" validate:"max=500"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

// ErrOrderNotFound indicates a missing purchase order.
var ErrOrderNotFound = errors.New("purchases: order not found")

// ErrReturnNotFound indicates a missing purchase return.
var ErrReturnNotFound = errors.New("purchases: return not found")

// ErrReturnNotReceived indicates a return raised against an order whose
// goods never arrived.
var ErrReturnNotReceived = errors.New("purchases: order not received, nothing to return")

// ErrReturnTooLarge indicates a return exceeding the received quantity.
var ErrReturnTooLarge = errors.New("purchases: return quantity exceeds received quantity")
