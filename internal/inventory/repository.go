package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, name, category_id, quantity, cost_price, selling_price, created_at, updated_at`

func scanItem(row pgx.Row) (StockItem, error) {
	var item StockItem
	err := row.Scan(&item.ID, &item.Name, &item.CategoryID, &item.Quantity, &item.CostPrice, &item.SellingPrice, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockItem{}, ErrItemNotFound
		}
		return StockItem{}, err
	}
	return item, nil
}

// GetItem fetches a stock item without locking.
func (r *Repository) GetItem(ctx context.Context, id int64) (StockItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1`, id)
	return scanItem(row)
}

// ListItems returns items matching the filter.
func (r *Repository) ListItems(ctx context.Context, filter ListFilter) ([]StockItem, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT ` + itemColumns + ` FROM stock_items WHERE ($1 = 0 OR category_id = $1)`
	if filter.LowStock {
		query += fmt.Sprintf(" AND quantity < %d", LowStockThreshold)
	}
	query += ` ORDER BY name ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filter.CategoryID, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem inserts a stock item and returns its id.
func (r *Repository) CreateItem(ctx context.Context, item StockItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO stock_items (name, category_id, quantity, cost_price, selling_price, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING id`, item.Name, item.CategoryID, item.Quantity, item.CostPrice, item.SellingPrice).Scan(&id)
	return id, err
}

// UpdateSellingPrice overwrites the list price.
func (r *Repository) UpdateSellingPrice(ctx context.Context, id int64, input UpdatePricingInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE stock_items SET selling_price=$2, updated_at=NOW() WHERE id=$1`, id, input.SellingPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// CreateCategory inserts a category and returns its id.
func (r *Repository) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, created_at) VALUES ($1, NOW()) RETURNING id`, name).Scan(&id)
	return id, err
}

// ListCategories returns all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetItemForUpdateTx re-reads a stock item inside the caller's transaction
// with a row lock. State transitions in purchases and sales must use this
// rather than trusting a value read before the transaction began.
func GetItemForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (StockItem, error) {
	row := tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1 FOR UPDATE`, id)
	return scanItem(row)
}

// SaveItemTx writes ledger-mutated quantity, cost and price back inside the
// caller's transaction.
func SaveItemTx(ctx context.Context, tx pgx.Tx, item StockItem) error {
	tag, err := tx.Exec(ctx, `UPDATE stock_items SET quantity=$2, cost_price=$3, selling_price=$4, updated_at=NOW() WHERE id=$1`,
		item.ID, item.Quantity, item.CostPrice, item.SellingPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
