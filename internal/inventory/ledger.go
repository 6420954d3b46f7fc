package inventory

import (
	"github.com/shopspring/decimal"
)

// costScale is the precision of unit costs and prices.
const costScale = 2

// ApplyPurchaseReceipt folds a received lot into the item: the unit cost
// becomes the quantity-weighted average of the existing stock and the lot,
// rounded to cost precision per lot (not recomputed from full history), and
// the quantity grows by qty. A non-nil sellingPrice overwrites the list
// price. The item is modified in place only on success.
func ApplyPurchaseReceipt(item *StockItem, qty int64, unitCost decimal.Decimal, sellingPrice *decimal.Decimal) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return ErrInvalidUnitCost
	}

	oldQty := decimal.NewFromInt(item.Quantity)
	newQty := decimal.NewFromInt(item.Quantity + qty)
	// Combined quantity of zero would divide by zero; leave cost unchanged.
	if !newQty.IsZero() {
		totalCost := oldQty.Mul(item.CostPrice).Add(decimal.NewFromInt(qty).Mul(unitCost))
		item.CostPrice = totalCost.DivRound(newQty, costScale)
	}
	item.Quantity += qty
	if sellingPrice != nil {
		item.SellingPrice = sellingPrice.Round(costScale)
	}
	return nil
}

// ApplySaleDeduction removes qty units. Quantity may never go negative: the
// deduction is rejected outright, never clamped, and the item is untouched
// on failure.
func ApplySaleDeduction(item *StockItem, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if item.Quantity < qty {
		return ErrInsufficientStock
	}
	item.Quantity -= qty
	return nil
}

// ReverseSaleDeduction returns qty units to stock, used when a verified sale
// is deleted or its quantity edited downward.
func ReverseSaleDeduction(item *StockItem, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	item.Quantity += qty
	return nil
}
