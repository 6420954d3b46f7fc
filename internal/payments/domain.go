package payments

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DailyPayment is the per-day rollup of verified sales. Rows are derived
// data: the sales module rewrites the affected day inside every verifying,
// editing or deleting transaction, so a row is never the source of truth.
type DailyPayment struct {
	PaymentDate time.Time       `json:"payment_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ErrInvalidRange indicates from after to.
var ErrInvalidRange = errors.New("payments: from must not be after to")
