package dashboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
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
	calls int64
}

func (f *fakeStore) StockSummary(context.Context) (StockSummary, error) {
	atomic.AddInt64(&f.calls, 1)
	return StockSummary{StockValue: dec("12500"), ItemCount: 42, LowStockCount: 3, OutOfStockCount: 1}, nil
}

func (f *fakeStore) RevenueSince(_ context.Context, cutoff time.Time) (RevenueWindow, error) {
	atomic.AddInt64(&f.calls, 1)
	// Wider windows report more revenue, so the test can tell them apart.
	days := int64(time.Since(cutoff).Hours()/24) + 1
	return RevenueWindow{Revenue: decimal.NewFromInt(days * 100), Profit: decimal.NewFromInt(days * 40)}, nil
}

func (f *fakeStore) PendingPurchaseCount(context.Context) (int64, error) {
	atomic.AddInt64(&f.calls, 1)
	return 7, nil
}

func (f *fakeStore) TopSellers(context.Context, time.Time, int) ([]TopSeller, error) {
	atomic.AddInt64(&f.calls, 1)
	return []TopSeller{{StockItemID: 1, Name: "Basmati Rice 5kg", QuantitySold: 30, Revenue: dec("4500")}}, nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestStatsComputesSnapshot(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, testLogger(), time.Minute)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.True(t, stats.StockValue.Equal(dec("12500")))
	require.EqualValues(t, 42, stats.ItemCount)
	require.EqualValues(t, 3, stats.LowStockCount)
	require.EqualValues(t, 7, stats.PendingPurchases)
	require.Len(t, stats.TopSellers, 1)
	require.True(t, stats.WeekRevenue.GreaterThan(stats.TodayRevenue))
	require.True(t, stats.MonthRevenue.GreaterThan(stats.WeekRevenue))
	require.EqualValues(t, 6, store.calls)
}

func TestStatsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeStore{}
	svc := NewService(store, cache, testLogger(), time.Minute)

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	queriesAfterFirst := atomic.LoadInt64(&store.calls)

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, queriesAfterFirst, atomic.LoadInt64(&store.calls), "second read must hit the cache")
	require.True(t, second.StockValue.Equal(first.StockValue))

	// Expiry forces a recompute.
	mr.FastForward(2 * time.Minute)
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Greater(t, atomic.LoadInt64(&store.calls), queriesAfterFirst)
}

func TestInvalidateDropsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := &fakeStore{}
	svc := NewService(store, cache, testLogger(), time.Minute)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	before := atomic.LoadInt64(&store.calls)

	require.NoError(t, svc.Invalidate(context.Background()))
	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.Greater(t, atomic.LoadInt64(&store.calls), before)
}
