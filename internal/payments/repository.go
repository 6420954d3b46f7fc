package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukaan-erp/dukaan-erp/internal/platform/db"
)

// Repository reads and rebuilds the daily rollup in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRange returns rollup rows for the closed date range, oldest first.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time) ([]DailyPayment, error) {
	rows, err := r.pool.Query(ctx, `SELECT payment_date, total_amount, total_profit, updated_at
FROM daily_payments WHERE payment_date >= $1::date AND payment_date <= $2::date
ORDER BY payment_date ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	payments := []DailyPayment{}
	for rows.Next() {
		var p DailyPayment
		if err := rows.Scan(&p.PaymentDate, &p.TotalAmount, &p.TotalProfit, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// RebuildAll drops every rollup row and regenerates the table from verified
// sales in one transaction. Used by the nightly reconciliation job and the
// manual rebuild endpoint; it also clears rows for days that no longer have
// any verified sale.
func (r *Repository) RebuildAll(ctx context.Context) (int64, error) {
	var rebuilt int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM daily_payments`); err != nil {
			return fmt.Errorf("payments: clear rollup: %w", err)
		}
		tag, err := tx.Exec(ctx, `INSERT INTO daily_payments (payment_date, total_amount, total_profit, updated_at)
SELECT sale_date::date, COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0), NOW()
FROM sale_records WHERE status = 'verified'
GROUP BY sale_date::date`)
		if err != nil {
			return fmt.Errorf("payments: rebuild rollup: %w", err)
		}
		rebuilt = tag.RowsAffected()
		return nil
	})
	return rebuilt, err
}
