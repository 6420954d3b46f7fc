package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StockSummary aggregates value and counts over all items in one query.
func (r *Repository) StockSummary(ctx context.Context) (StockSummary, error) {
	var s StockSummary
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(quantity * cost_price), 0),
COUNT(*),
COUNT(*) FILTER (WHERE quantity > 0 AND quantity < $1),
COUNT(*) FILTER (WHERE quantity = 0)
FROM stock_items`, inventory.LowStockThreshold).
		Scan(&s.StockValue, &s.ItemCount, &s.LowStockCount, &s.OutOfStockCount)
	return s, err
}

// RevenueSince sums verified sales on or after the cutoff.
func (r *Repository) RevenueSince(ctx context.Context, cutoff time.Time) (RevenueWindow, error) {
	var w RevenueWindow
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0)
FROM sale_records WHERE status = 'verified' AND sale_date >= $1`, cutoff).
		Scan(&w.Revenue, &w.Profit)
	return w, err
}

// PendingPurchaseCount counts orders waiting to be received.
func (r *Repository) PendingPurchaseCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE status = 'pending'`).Scan(&n)
	return n, err
}

// TopSellers returns the best selling items since the cutoff, by quantity.
func (r *Repository) TopSellers(ctx context.Context, cutoff time.Time, limit int) ([]TopSeller, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `SELECT s.stock_item_id, i.name, SUM(s.quantity_sold), SUM(s.total_amount)
FROM sale_records s JOIN stock_items i ON i.id = s.stock_item_id
WHERE s.status = 'verified' AND s.sale_date >= $1
GROUP BY s.stock_item_id, i.name
ORDER BY SUM(s.quantity_sold) DESC LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sellers := []TopSeller{}
	for rows.Next() {
		var t TopSeller
		if err := rows.Scan(&t.StockItemID, &t.Name, &t.QuantitySold, &t.Revenue); err != nil {
			return nil, err
		}
		sellers = append(sellers, t)
	}
	return sellers, rows.Err()
}
