package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeStore struct {
	expenses map[int64]Expense
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{expenses: map[int64]Expense{}, nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, e Expense) (int64, error) {
	id := f.nextID
	f.nextID++
	e.ID = id
	f.expenses[id] = e
	return id, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (Expense, error) {
	e, ok := f.expenses[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (f *fakeStore) ListRange(_ context.Context, from, to time.Time, expenseType Type) ([]Expense, error) {
	var out []Expense
	for _, e := range f.expenses {
		if e.SpentAt.Before(from) || e.SpentAt.After(to) {
			continue
		}
		if expenseType != "" && e.Type != expenseType {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) TotalsByType(ctx context.Context, from, to time.Time) (map[Type]decimal.Decimal, error) {
	totals := map[Type]decimal.Decimal{}
	all, _ := f.ListRange(ctx, from, to, "")
	for _, e := range all {
		totals[e.Type] = totals[e.Type].Add(e.Amount)
	}
	return totals, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(f.expenses, id)
	return nil
}

func TestCreateValidatesTypeAndAmount(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	_, err := svc.Create(context.Background(), CreateExpenseInput{Type: "fuel", Amount: dec("10")})
	require.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Create(context.Background(), CreateExpenseInput{Type: TypeRent, Amount: dec("0")})
	require.ErrorIs(t, err, ErrInvalidAmount)

	e, err := svc.Create(context.Background(), CreateExpenseInput{Type: TypeRent, Amount: dec("1500.005")})
	require.NoError(t, err)
	require.True(t, e.Amount.Equal(dec("1500.01")), "got %s", e.Amount)
	require.False(t, e.SpentAt.IsZero())
}

func TestSummarize(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	for _, in := range []CreateExpenseInput{
		{Type: TypeWages, Amount: dec("500"), SpentAt: day},
		{Type: TypeWages, Amount: dec("250"), SpentAt: day.AddDate(0, 0, 1)},
		{Type: TypeRent, Amount: dec("1500"), SpentAt: day},
		{Type: TypeCarriage, Amount: dec("75"), SpentAt: day.AddDate(0, 0, 10)},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	summary, err := svc.Summarize(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.True(t, summary.Total.Equal(dec("2250")), "got %s", summary.Total)
	require.True(t, summary.ByType[TypeWages].Equal(dec("750")))
	require.True(t, summary.ByType[TypeRent].Equal(dec("1500")))
	require.NotContains(t, summary.ByType, TypeCarriage, "outside the range")
}

func TestListRangeTypeFilter(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, CreateExpenseInput{Type: TypeWages, Amount: dec("500"), SpentAt: day})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateExpenseInput{Type: TypeRent, Amount: dec("1500"), SpentAt: day})
	require.NoError(t, err)

	_, err = svc.ListRange(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), "fuel")
	require.ErrorIs(t, err, ErrInvalidType)

	got, err := svc.ListRange(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), TypeRent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, TypeRent, got[0].Type)
}
