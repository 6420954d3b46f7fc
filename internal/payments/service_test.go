package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

type fakeStore struct {
	rows     []DailyPayment
	rebuilds int
}

func (f *fakeStore) ListRange(_ context.Context, from, to time.Time) ([]DailyPayment, error) {
	var out []DailyPayment
	for _, p := range f.rows {
		if p.PaymentDate.Before(from) || p.PaymentDate.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) RebuildAll(_ context.Context) (int64, error) {
	f.rebuilds++
	return int64(len(f.rows)), nil
}

type allowAll struct{}

func (allowAll) Allowed(context.Context, int64, string) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Allowed(context.Context, int64, string) (bool, error) { return false, nil }

func TestListRangeRejectsReversedRange(t *testing.T) {
	svc := NewService(&fakeStore{}, allowAll{}, nil)
	from := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListRange(context.Background(), from, from.AddDate(0, 0, -1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestListRangeFilters(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }
	store := &fakeStore{rows: []DailyPayment{
		{PaymentDate: day(1)},
		{PaymentDate: day(5)},
		{PaymentDate: day(9)},
	}}
	svc := NewService(store, allowAll{}, nil)

	got, err := svc.ListRange(context.Background(), day(2), day(8))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].PaymentDate.Equal(day(5)))
}

func TestRebuildAllRequiresPermission(t *testing.T) {
	store := &fakeStore{rows: make([]DailyPayment, 3)}

	_, err := NewService(store, denyAll{}, nil).RebuildAll(context.Background())
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Zero(t, store.rebuilds)

	days, err := NewService(store, allowAll{}, nil).RebuildAll(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, days)
	require.Equal(t, 1, store.rebuilds)
}
