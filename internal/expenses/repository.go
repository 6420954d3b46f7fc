package expenses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists expenses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an expense and returns its id.
func (r *Repository) Create(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (type, amount, description, spent_at, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id`, e.Type, e.Amount, e.Description, e.SpentAt).Scan(&id)
	return id, err
}

// Get fetches a single expense.
func (r *Repository) Get(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := r.pool.QueryRow(ctx, `SELECT id, type, amount, description, spent_at, created_at FROM expenses WHERE id=$1`, id).
		Scan(&e.ID, &e.Type, &e.Amount, &e.Description, &e.SpentAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		return Expense{}, err
	}
	return e, nil
}

// ListRange returns expenses in the closed date range, newest first.
// expenseType narrows to one type when non-empty.
func (r *Repository) ListRange(ctx context.Context, from, to time.Time, expenseType Type) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type, amount, description, spent_at, created_at FROM expenses
WHERE spent_at >= $1 AND spent_at <= $2 AND ($3 = '' OR type = $3)
ORDER BY spent_at DESC, id DESC`, from, to, string(expenseType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	expenses := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &e.Description, &e.SpentAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// TotalsByType sums amounts per type for the closed date range.
func (r *Repository) TotalsByType(ctx context.Context, from, to time.Time) (map[Type]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT type, COALESCE(SUM(amount), 0) FROM expenses
WHERE spent_at >= $1 AND spent_at <= $2 GROUP BY type`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := map[Type]decimal.Decimal{}
	for rows.Next() {
		var t Type
		var sum decimal.Decimal
		if err := rows.Scan(&t, &sum); err != nil {
			return nil, err
		}
		totals[t] = sum
	}
	return totals, rows.Err()
}

// Delete removes an expense.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
