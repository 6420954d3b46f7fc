package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the storefront overview snapshot.
type Stats struct {
	StockValue       decimal.Decimal `json:"stock_value"`
	ItemCount        int64           `json:"item_count"`
	LowStockCount    int64           `json:"low_stock_count"`
	OutOfStockCount  int64           `json:"out_of_stock_count"`
	PendingPurchases int64           `json:"pending_purchases"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	TodayProfit      decimal.Decimal `json:"today_profit"`
	WeekRevenue      decimal.Decimal `json:"week_revenue"`
	WeekProfit       decimal.Decimal `json:"week_profit"`
	MonthRevenue     decimal.Decimal `json:"month_revenue"`
	MonthProfit      decimal.Decimal `json:"month_profit"`
	TopSellers       []TopSeller     `json:"top_sellers"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// TopSeller is one entry of the 30-day best seller list.
type TopSeller struct {
	StockItemID  int64           `json:"stock_item_id"`
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// StockSummary aggregates the item counts pulled in one query.
type StockSummary struct {
	StockValue      decimal.Decimal
	ItemCount       int64
	LowStockCount   int64
	OutOfStockCount int64
}

// RevenueWindow is revenue and profit of verified sales since a cutoff.
type RevenueWindow struct {
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}
