package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukaan-erp/dukaan-erp/internal/expenses"
	"github.com/dukaan-erp/dukaan-erp/internal/sales"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeSales struct {
	records []sales.SaleRecord
}

func (f fakeSales) SalesBetween(context.Context, time.Time, time.Time) ([]sales.SaleRecord, error) {
	return f.records, nil
}

type fakeExpenses struct {
	total decimal.Decimal
}

func (f fakeExpenses) Summarize(_ context.Context, from, to time.Time) (expenses.Summary, error) {
	return expenses.Summary{From: from, To: to, Total: f.total}, nil
}

type fakeNamer struct {
	names map[int64]string
}

func (f fakeNamer) ItemName(_ context.Context, id int64) (string, error) {
	return f.names[id], nil
}

func TestBuildSumsVerifiedSalesAndSubtractsExpenses(t *testing.T) {
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(fakeSales{records: []sales.SaleRecord{
		{StockItemID: 1, QuantitySold: 2, PricePerUnit: dec("100"), TotalAmount: dec("200"), Profit: dec("80"), SaleDate: day},
		{StockItemID: 2, QuantitySold: 1, PricePerUnit: dec("50"), TotalAmount: dec("50"), Profit: dec("10"), SaleDate: day.AddDate(0, 0, 1)},
	}}, fakeExpenses{total: dec("30")}, fakeNamer{names: map[int64]string{1: "Rice", 2: "Soap"}}, nil)

	rep, err := svc.Build(context.Background(), day, day.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)
	require.True(t, rep.TotalRevenue.Equal(dec("250")))
	require.True(t, rep.TotalProfit.Equal(dec("90")))
	require.True(t, rep.TotalExpense.Equal(dec("30")))
	require.True(t, rep.NetProfit.Equal(dec("60")))
	require.Equal(t, "Rice", rep.Rows[0].Item)
}

func TestRenderHTML(t *testing.T) {
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(fakeSales{records: []sales.SaleRecord{
		{StockItemID: 1, QuantitySold: 3, PricePerUnit: dec("19.99"), TotalAmount: dec("59.97"), Profit: dec("15"), SaleDate: day},
	}}, fakeExpenses{}, fakeNamer{names: map[int64]string{1: "Detergent 1kg"}}, nil)

	html, err := svc.RenderHTML(context.Background(), day, day)
	require.NoError(t, err)
	require.True(t, strings.Contains(html, "Detergent 1kg"))
	require.True(t, strings.Contains(html, "59.97"))
	require.True(t, strings.Contains(html, "Sales Report 2026-07-01 to 2026-07-01"))
}

func TestRenderHTMLEscapesItemNames(t *testing.T) {
	day := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(fakeSales{records: []sales.SaleRecord{
		{StockItemID: 1, QuantitySold: 1, PricePerUnit: dec("5"), TotalAmount: dec("5"), Profit: dec("1"), SaleDate: day},
	}}, fakeExpenses{}, fakeNamer{names: map[int64]string{1: `<script>alert(1)</script>`}}, nil)

	html, err := svc.RenderHTML(context.Background(), day, day)
	require.NoError(t, err)
	require.False(t, strings.Contains(html, "<script>"))
}
