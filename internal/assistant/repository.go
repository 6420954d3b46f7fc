package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository builds the plain-text store snapshot fed into the prompt.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Snapshot renders current stock, recent sales and recent purchases as
// text. Kept deliberately small; the point is context, not a data dump.
func (r *Repository) Snapshot(ctx context.Context) (string, error) {
	var b strings.Builder

	b.WriteString("STOCK ITEMS (name, quantity, cost, price):\n")
	rows, err := r.pool.Query(ctx, `SELECT name, quantity, cost_price, selling_price FROM stock_items ORDER BY name LIMIT 100`)
	if err != nil {
		return "", fmt.Errorf("assistant: snapshot items: %w", err)
	}
	for rows.Next() {
		var name string
		var qty int64
		var cost, price decimal.Decimal
		if err := rows.Scan(&name, &qty, &cost, &price); err != nil {
			rows.Close()
			return "", err
		}
		fmt.Fprintf(&b, "- %s | qty %d | cost %s | price %s\n", name, qty, cost, price)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	b.WriteString("\nRECENT VERIFIED SALES (item, qty, total, profit, date):\n")
	rows, err = r.pool.Query(ctx, `SELECT i.name, s.quantity_sold, s.total_amount, s.profit, s.sale_date::date
FROM sale_records s JOIN stock_items i ON i.id = s.stock_item_id
WHERE s.status = 'verified' ORDER BY s.sale_date DESC LIMIT 10`)
	if err != nil {
		return "", fmt.Errorf("assistant: snapshot sales: %w", err)
	}
	for rows.Next() {
		var name, date string
		var qty int64
		var total, profit decimal.Decimal
		if err := rows.Scan(&name, &qty, &total, &profit, &date); err != nil {
			rows.Close()
			return "", err
		}
		fmt.Fprintf(&b, "- %s | qty %d | total %s | profit %s | %s\n", name, qty, total, profit, date)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	b.WriteString("\nRECENT PURCHASES (item, qty, unit cost, status):\n")
	rows, err = r.pool.Query(ctx, `SELECT i.name, p.quantity_purchased, p.cost_price_per_unit, p.status
FROM purchase_orders p JOIN stock_items i ON i.id = p.stock_item_id
ORDER BY p.purchase_date DESC LIMIT 10`)
	if err != nil {
		return "", fmt.Errorf("assistant: snapshot purchases: %w", err)
	}
	for rows.Next() {
		var name, status string
		var qty int64
		var cost decimal.Decimal
		if err := rows.Scan(&name, &qty, &cost, &status); err != nil {
			rows.Close()
			return "", err
		}
		fmt.Fprintf(&b, "- %s | qty %d | unit cost %s | %s\n", name, qty, cost, status)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}
