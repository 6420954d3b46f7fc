package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/platform/db"
)

// Repository persists purchase orders and returns in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, stock_item_id, supplier, quantity_purchased, cost_price_per_unit, selling_price, total_cost, status, purchase_date, received_at, created_at, updated_at`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(&o.ID, &o.StockItemID, &o.Supplier, &o.QuantityPurchased, &o.CostPricePerUnit, &o.SellingPrice, &o.TotalCost, &o.Status, &o.PurchaseDate, &o.ReceivedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrOrderNotFound
		}
		return PurchaseOrder{}, err
	}
	return o, nil
}

const returnColumns = `id, purchase_order_id, stock_item_id, quantity, reason, status, processed_at, created_at`

func scanReturn(row pgx.Row) (PurchaseReturn, error) {
	var ret PurchaseReturn
	err := row.Scan(&ret.ID, &ret.PurchaseOrderID, &ret.StockItemID, &ret.Quantity, &ret.Reason, &ret.Status, &ret.ProcessedAt, &ret.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseReturn{}, ErrReturnNotFound
		}
		return PurchaseReturn{}, err
	}
	return ret, nil
}

// CreateOrder inserts a pending order and returns its id.
func (r *Repository) CreateOrder(ctx context.Context, order PurchaseOrder) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO purchase_orders
(stock_item_id, supplier, quantity_purchased, cost_price_per_unit, selling_price, total_cost, status, purchase_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING id`,
		order.StockItemID, order.Supplier, order.QuantityPurchased, order.CostPricePerUnit, order.SellingPrice, order.TotalCost, order.Status, order.PurchaseDate).Scan(&id)
	return id, err
}

// GetOrder fetches a purchase order without locking.
func (r *Repository) GetOrder(ctx context.Context, id int64) (PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1`, id)
	return scanOrder(row)
}

// ListOrders returns orders matching the filter, newest first.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM purchase_orders
WHERE ($1 = '' OR status = $1) ORDER BY purchase_date DESC, id DESC LIMIT $2 OFFSET $3`,
		string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []PurchaseOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateReturn inserts a pending purchase return and returns its id.
func (r *Repository) CreateReturn(ctx context.Context, ret PurchaseReturn) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO purchase_returns
(purchase_order_id, stock_item_id, quantity, reason, status, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`,
		ret.PurchaseOrderID, ret.StockItemID, ret.Quantity, ret.Reason, ret.Status).Scan(&id)
	return id, err
}

// GetReturn fetches a purchase return without locking.
func (r *Repository) GetReturn(ctx context.Context, id int64) (PurchaseReturn, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+returnColumns+` FROM purchase_returns WHERE id=$1`, id)
	return scanReturn(row)
}

// TxStore exposes the row-locked operations available inside a receive or
// return transaction.
type TxStore interface {
	GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error)
	UpdateOrder(ctx context.Context, order PurchaseOrder) error
	GetReturnForUpdate(ctx context.Context, id int64) (PurchaseReturn, error)
	UpdateReturn(ctx context.Context, ret PurchaseReturn) error
	GetItemForUpdate(ctx context.Context, id int64) (inventory.StockItem, error)
	SaveItem(ctx context.Context, item inventory.StockItem) error
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

func (s txStore) GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1 FOR UPDATE`, id)
	return scanOrder(row)
}

func (s txStore) UpdateOrder(ctx context.Context, order PurchaseOrder) error {
	tag, err := s.tx.Exec(ctx, `UPDATE purchase_orders SET status=$2, received_at=$3, updated_at=NOW() WHERE id=$1`,
		order.ID, order.Status, order.ReceivedAt)
	if err != nil {
		return fmt.Errorf("purchases: update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s txStore) GetReturnForUpdate(ctx context.Context, id int64) (PurchaseReturn, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+returnColumns+` FROM purchase_returns WHERE id=$1 FOR UPDATE`, id)
	return scanReturn(row)
}

func (s txStore) UpdateReturn(ctx context.Context, ret PurchaseReturn) error {
	tag, err := s.tx.Exec(ctx, `UPDATE purchase_returns SET status=$2, processed_at=$3 WHERE id=$1`,
		ret.ID, ret.Status, ret.ProcessedAt)
	if err != nil {
		return fmt.Errorf("purchases: update return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReturnNotFound
	}
	return nil
}

func (s txStore) GetItemForUpdate(ctx context.Context, id int64) (inventory.StockItem, error) {
	return inventory.GetItemForUpdateTx(ctx, s.tx, id)
}

func (s txStore) SaveItem(ctx context.Context, item inventory.StockItem) error {
	return inventory.SaveItemTx(ctx, s.tx, item)
}
