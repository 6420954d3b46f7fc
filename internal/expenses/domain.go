package expenses

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the expense category. The set is fixed; free-form categories go
// under Miscellaneous.
type Type string

const (
	TypeCarriage      Type = "carriage"
	TypeDrawings      Type = "drawings"
	TypeWages         Type = "wages"
	TypeRenumeration  Type = "renumeration"
	TypeElectricBill  Type = "electric_bill"
	TypeRent          Type = "rent"
	TypeMiscellaneous Type = "miscellaneous"
)

// Types lists every known expense type.
func Types() []Type {
	return []Type{TypeCarriage, TypeDrawings, TypeWages, TypeRenumeration, TypeElectricBill, TypeRent, TypeMiscellaneous}
}

// Valid reports whether t is a known expense type.
func (t Type) Valid() bool {
	switch t {
	case TypeCarriage, TypeDrawings, TypeWages, TypeRenumeration, TypeElectricBill, TypeRent, TypeMiscellaneous:
		return true
	}
	return false
}

// Expense is a single outgoing payment that is not a stock purchase.
type Expense struct {
	ID          int64           `json:"id"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	SpentAt     time.Time       `json:"spent_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateExpenseInput describes a new expense.
type CreateExpenseInput struct {
	Type        Type            `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=500"`
	SpentAt     time.Time       `json:"spent_at"`
}

// Summary totals a date range, overall and per type.
type Summary struct {
	From   time.Time                `json:"from"`
	To     time.Time                `json:"to"`
	Total  decimal.Decimal          `json:"total"`
	ByType map[Type]decimal.Decimal `json:"by_type"`
}

// ErrExpenseNotFound indicates a missing expense row.
var ErrExpenseNotFound = errors.New("expenses: expense not found")

// ErrInvalidType indicates an unknown expense type.
var ErrInvalidType = errors.New("expenses: unknown expense type")

// ErrInvalidAmount indicates a non-positive amount.
var ErrInvalidAmount = errors.New("expenses: amount must be positive")
