package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyPurchaseReceiptWeightedAverage(t *testing.T) {
	item := StockItem{Quantity: 10, CostPrice: dec("100"), SellingPrice: dec("180")}

	err := ApplyPurchaseReceipt(&item, 10, dec("200"), nil)
	require.NoError(t, err)
	require.EqualValues(t, 20, item.Quantity)
	require.True(t, item.CostPrice.Equal(dec("150")), "got %s", item.CostPrice)
	require.True(t, item.SellingPrice.Equal(dec("180")))
}

func TestApplyPurchaseReceiptRoundsPerLot(t *testing.T) {
	item := StockItem{Quantity: 0, CostPrice: decimal.Zero}

	require.NoError(t, ApplyPurchaseReceipt(&item, 3, dec("10"), nil))
	require.NoError(t, ApplyPurchaseReceipt(&item, 3, dec("10.05"), nil))
	// (3*10 + 3*10.05) / 6 = 10.025, rounded to 10.03 at this step.
	require.True(t, item.CostPrice.Equal(dec("10.03")), "got %s", item.CostPrice)

	// The next lot averages against the rounded 10.03, not the raw history.
	require.NoError(t, ApplyPurchaseReceipt(&item, 6, dec("12"), nil))
	want := dec("10.03").Mul(dec("6")).Add(dec("12").Mul(dec("6"))).DivRound(dec("12"), 2)
	require.True(t, item.CostPrice.Equal(want), "got %s want %s", item.CostPrice, want)
}

func TestApplyPurchaseReceiptOverwritesSellingPrice(t *testing.T) {
	item := StockItem{Quantity: 5, CostPrice: dec("50"), SellingPrice: dec("90")}
	newPrice := dec("95.555")

	require.NoError(t, ApplyPurchaseReceipt(&item, 5, dec("60"), &newPrice))
	require.True(t, item.SellingPrice.Equal(dec("95.56")), "got %s", item.SellingPrice)
}

func TestApplyPurchaseReceiptRejectsBadInput(t *testing.T) {
	item := StockItem{Quantity: 5, CostPrice: dec("50")}
	require.ErrorIs(t, ApplyPurchaseReceipt(&item, 0, dec("10"), nil), ErrInvalidQuantity)
	require.ErrorIs(t, ApplyPurchaseReceipt(&item, 1, dec("-1"), nil), ErrInvalidUnitCost)
	require.EqualValues(t, 5, item.Quantity)
}

func TestApplySaleDeduction(t *testing.T) {
	item := StockItem{Quantity: 3}

	require.ErrorIs(t, ApplySaleDeduction(&item, 5), ErrInsufficientStock)
	require.EqualValues(t, 3, item.Quantity, "failed deduction must not touch the item")

	require.NoError(t, ApplySaleDeduction(&item, 3))
	require.EqualValues(t, 0, item.Quantity)

	require.ErrorIs(t, ApplySaleDeduction(&item, 1), ErrInsufficientStock)
}

func TestReverseSaleDeduction(t *testing.T) {
	item := StockItem{Quantity: 2}
	require.NoError(t, ReverseSaleDeduction(&item, 4))
	require.EqualValues(t, 6, item.Quantity)
	require.ErrorIs(t, ReverseSaleDeduction(&item, 0), ErrInvalidQuantity)
}
