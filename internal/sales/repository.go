package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/platform/db"
)

// Repository persists sale records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `id, stock_item_id, customer, quantity_sold, price_per_unit, cost_per_unit, total_amount, profit, status, sale_date, verified_at, created_at, updated_at`

func scanSale(row pgx.Row) (SaleRecord, error) {
	var s SaleRecord
	err := row.Scan(&s.ID, &s.StockItemID, &s.Customer, &s.QuantitySold, &s.PricePerUnit, &s.CostPerUnit, &s.TotalAmount, &s.Profit, &s.Status, &s.SaleDate, &s.VerifiedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleRecord{}, ErrSaleNotFound
		}
		return SaleRecord{}, err
	}
	return s, nil
}

// CreateSale inserts a draft sale and returns its id.
func (r *Repository) CreateSale(ctx context.Context, sale SaleRecord) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO sale_records
(stock_item_id, customer, quantity_sold, price_per_unit, cost_per_unit, total_amount, profit, status, sale_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW()) RETURNING id`,
		sale.StockItemID, sale.Customer, sale.QuantitySold, sale.PricePerUnit, sale.CostPerUnit, sale.TotalAmount, sale.Profit, sale.Status, sale.SaleDate).Scan(&id)
	return id, err
}

// GetSale fetches a sale record without locking.
func (r *Repository) GetSale(ctx context.Context, id int64) (SaleRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sale_records WHERE id=$1`, id)
	return scanSale(row)
}

// ListSales returns records matching the filter, newest first.
func (r *Repository) ListSales(ctx context.Context, filter ListFilter) ([]SaleRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	var from, to any
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		to = filter.To
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sale_records
WHERE ($1 = '' OR status = $1)
AND ($2::timestamptz IS NULL OR sale_date >= $2)
AND ($3::timestamptz IS NULL OR sale_date <= $3)
ORDER BY sale_date DESC, id DESC LIMIT $4 OFFSET $5`,
		string(filter.Status), from, to, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sales := []SaleRecord{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// TxStore exposes the row-locked operations available inside a verify,
// edit or delete transaction.
type TxStore interface {
	GetSaleForUpdate(ctx context.Context, id int64) (SaleRecord, error)
	UpdateSale(ctx context.Context, sale SaleRecord) error
	DeleteSale(ctx context.Context, id int64) error
	GetItemForUpdate(ctx context.Context, id int64) (inventory.StockItem, error)
	SaveItem(ctx context.Context, item inventory.StockItem) error
	RecomputeDailyTotal(ctx context.Context, day time.Time) error
}

// WithTx runs fn in a RepeatableRead transaction against this repository.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, txStore{tx: tx})
	})
}

type txStore struct {
	tx pgx.Tx
}

func (s txStore) GetSaleForUpdate(ctx context.Context, id int64) (SaleRecord, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sale_records WHERE id=$1 FOR UPDATE`, id)
	return scanSale(row)
}

func (s txStore) UpdateSale(ctx context.Context, sale SaleRecord) error {
	tag, err := s.tx.Exec(ctx, `UPDATE sale_records
SET quantity_sold=$2, price_per_unit=$3, cost_per_unit=$4, total_amount=$5, profit=$6, status=$7, sale_date=$8, verified_at=$9, updated_at=NOW()
WHERE id=$1`,
		sale.ID, sale.QuantitySold, sale.PricePerUnit, sale.CostPerUnit, sale.TotalAmount, sale.Profit, sale.Status, sale.SaleDate, sale.VerifiedAt)
	if err != nil {
		return fmt.Errorf("sales: update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (s txStore) DeleteSale(ctx context.Context, id int64) error {
	tag, err := s.tx.Exec(ctx, `DELETE FROM sale_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (s txStore) GetItemForUpdate(ctx context.Context, id int64) (inventory.StockItem, error) {
	return inventory.GetItemForUpdateTx(ctx, s.tx, id)
}

func (s txStore) SaveItem(ctx context.Context, item inventory.StockItem) error {
	return inventory.SaveItemTx(ctx, s.tx, item)
}

// RecomputeDailyTotal rebuilds the rollup row for one calendar day from the
// verified sales that remain, inside the caller's transaction. Days whose
// verified sales were all removed collapse to zero rather than disappearing.
func (s txStore) RecomputeDailyTotal(ctx context.Context, day time.Time) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO daily_payments (payment_date, total_amount, total_profit, updated_at)
SELECT $1::date, COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0), NOW()
FROM sale_records WHERE status = 'verified' AND sale_date::date = $1::date
ON CONFLICT (payment_date) DO UPDATE
SET total_amount = EXCLUDED.total_amount, total_profit = EXCLUDED.total_profit, updated_at = NOW()`, day)
	if err != nil {
		return fmt.Errorf("sales: recompute daily total: %w", err)
	}
	return nil
}
