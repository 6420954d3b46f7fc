package sales

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dukaan-erp/dukaan-erp/internal/inventory"
	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var day1 = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

// fakeStore keeps everything in memory, including the daily rollup, so the
// tests can assert that stock, status and totals move together.
type fakeStore struct {
	sales  map[int64]SaleRecord
	items  map[int64]inventory.StockItem
	daily  map[string]decimal.Decimal
	profit map[string]decimal.Decimal
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sales:  map[int64]SaleRecord{},
		items:  map[int64]inventory.StockItem{},
		daily:  map[string]decimal.Decimal{},
		profit: map[string]decimal.Decimal{},
		nextID: 1,
	}
}

func (f *fakeStore) CreateSale(_ context.Context, sale SaleRecord) (int64, error) {
	id := f.nextID
	f.nextID++
	sale.ID = id
	f.sales[id] = sale
	return id, nil
}

func (f *fakeStore) GetSale(_ context.Context, id int64) (SaleRecord, error) {
	sale, ok := f.sales[id]
	if !ok {
		return SaleRecord{}, ErrSaleNotFound
	}
	return sale, nil
}

func (f *fakeStore) ListSales(_ context.Context, filter ListFilter) ([]SaleRecord, error) {
	var out []SaleRecord
	for _, s := range f.sales {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && s.SaleDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && s.SaleDate.After(filter.To) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error {
	salesSnap := map[int64]SaleRecord{}
	itemsSnap := map[int64]inventory.StockItem{}
	dailySnap := map[string]decimal.Decimal{}
	for k, v := range f.sales {
		salesSnap[k] = v
	}
	for k, v := range f.items {
		itemsSnap[k] = v
	}
	for k, v := range f.daily {
		dailySnap[k] = v
	}
	if err := fn(ctx, fakeTx{store: f}); err != nil {
		f.sales = salesSnap
		f.items = itemsSnap
		f.daily = dailySnap
		return err
	}
	return nil
}

func (f *fakeStore) GetItem(_ context.Context, id int64) (inventory.StockItem, error) {
	item, ok := f.items[id]
	if !ok {
		return inventory.StockItem{}, inventory.ErrItemNotFound
	}
	return item, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t fakeTx) GetSaleForUpdate(ctx context.Context, id int64) (SaleRecord, error) {
	return t.store.GetSale(ctx, id)
}

func (t fakeTx) UpdateSale(_ context.Context, sale SaleRecord) error {
	if _, ok := t.store.sales[sale.ID]; !ok {
		return ErrSaleNotFound
	}
	t.store.sales[sale.ID] = sale
	return nil
}

func (t fakeTx) DeleteSale(_ context.Context, id int64) error {
	if _, ok := t.store.sales[id]; !ok {
		return ErrSaleNotFound
	}
	delete(t.store.sales, id)
	return nil
}

func (t fakeTx) GetItemForUpdate(ctx context.Context, id int64) (inventory.StockItem, error) {
	return t.store.GetItem(ctx, id)
}

func (t fakeTx) SaveItem(_ context.Context, item inventory.StockItem) error {
	t.store.items[item.ID] = item
	return nil
}

func (t fakeTx) RecomputeDailyTotal(_ context.Context, day time.Time) error {
	key := day.Format("2006-01-02")
	total := decimal.Zero
	profit := decimal.Zero
	for _, s := range t.store.sales {
		if s.Status == StatusVerified && s.SaleDate.Format("2006-01-02") == key {
			total = total.Add(s.TotalAmount)
			profit = profit.Add(s.Profit)
		}
	}
	t.store.daily[key] = total
	t.store.profit[key] = profit
	return nil
}

type allowAll struct{}

func (allowAll) Allowed(context.Context, int64, string) (bool, error) { return true, nil }

type denyAll struct{}

func (denyAll) Allowed(context.Context, int64, string) (bool, error) { return false, nil }

func newTestService(store *fakeStore) *Service {
	return NewService(store, store, allowAll{}, nil, nil)
}

func seedItem(store *fakeStore, qty int64, cost, price string) {
	store.items[1] = inventory.StockItem{ID: 1, Quantity: qty, CostPrice: dec(cost), SellingPrice: dec(price)}
}

func TestCreateDraftSnapshotsPrice(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 2, SaleDate: day1})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, sale.Status)
	require.True(t, sale.PricePerUnit.Equal(dec("100")))
	require.True(t, sale.CostPerUnit.Equal(dec("60")))
	require.True(t, sale.TotalAmount.Equal(dec("200")))
	require.True(t, sale.Profit.Equal(dec("80")), "draft carries provisional profit from the current cost")
	require.EqualValues(t, 10, store.items[1].Quantity, "draft must not touch stock")

	// Repricing after the draft exists does not rewrite the record.
	item := store.items[1]
	item.SellingPrice = dec("140")
	store.items[1] = item
	got, err := svc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.True(t, got.PricePerUnit.Equal(dec("100")))
}

func TestUpdateDraftRecomputesProvisionalFinancials(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 2, SaleDate: day1})
	require.NoError(t, err)
	require.True(t, sale.Profit.Equal(dec("80")))

	// Cost moves between draft and edit; the edit picks up the new cost.
	item := store.items[1]
	item.CostPrice = dec("70")
	store.items[1] = item

	updated, err := svc.Update(context.Background(), sale.ID, UpdateSaleInput{QuantitySold: 3})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, updated.Status)
	require.True(t, updated.TotalAmount.Equal(dec("300")))
	require.True(t, updated.CostPerUnit.Equal(dec("70")))
	require.True(t, updated.Profit.Equal(dec("90")))
	require.EqualValues(t, 10, store.items[1].Quantity, "draft edit must not touch stock")
	require.True(t, store.daily["2026-03-14"].IsZero(), "draft edit must not touch the rollup")
}

func TestVerifyDeductsStockAndRollsUp(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 4, SaleDate: day1})
	require.NoError(t, err)

	outcome, err := svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeVerified, outcome)

	require.EqualValues(t, 6, store.items[1].Quantity)
	got := store.sales[sale.ID]
	require.Equal(t, StatusVerified, got.Status)
	require.True(t, got.CostPerUnit.Equal(dec("60")))
	require.True(t, got.TotalAmount.Equal(dec("400")))
	require.True(t, got.Profit.Equal(dec("160")))
	require.True(t, store.daily["2026-03-14"].Equal(dec("400")))
	require.True(t, store.profit["2026-03-14"].Equal(dec("160")))
}

func TestVerifyInsufficientStockLeavesDraft(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 3, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 5, SaleDate: day1})
	require.NoError(t, err)

	outcome, err := svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeInsufficientStock, outcome)

	require.EqualValues(t, 3, store.items[1].Quantity)
	require.Equal(t, StatusDraft, store.sales[sale.ID].Status)
	require.True(t, store.daily["2026-03-14"].IsZero() || store.daily["2026-03-14"].Equal(decimal.Zero))
}

func TestVerifyTwiceIsNoOp(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 4, SaleDate: day1})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)
	outcome, err := svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyVerified, outcome)

	require.EqualValues(t, 6, store.items[1].Quantity, "second verify must not deduct again")
	require.True(t, store.daily["2026-03-14"].Equal(dec("400")), "rollup must not double count")
}

func TestVerifyDeniedLeavesEverythingUntouched(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)
	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 4, SaleDate: day1})
	require.NoError(t, err)

	denied := NewService(store, store, denyAll{}, nil, nil)
	_, err = denied.Verify(context.Background(), sale.ID, "")
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
	require.Equal(t, StatusDraft, store.sales[sale.ID].Status)
	require.EqualValues(t, 10, store.items[1].Quantity)
}

func TestVerifyBatchCollectsOutcomes(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 5, "60", "100")
	svc := newTestService(store)

	a, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 3, SaleDate: day1})
	require.NoError(t, err)
	b, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 4, SaleDate: day1})
	require.NoError(t, err)

	results, err := svc.VerifyBatch(context.Background(), []int64{a.ID, b.ID, 999})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, OutcomeVerified, results[0].Outcome)
	require.Equal(t, OutcomeInsufficientStock, results[1].Outcome, "only 2 left after the first sale")
	require.NotEmpty(t, results[2].Error)

	require.EqualValues(t, 2, store.items[1].Quantity)
	require.Equal(t, StatusDraft, store.sales[b.ID].Status)
}

func TestDeleteVerifiedReversesStockAndRollup(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 20, "60", "100")
	svc := newTestService(store)

	a, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 1, SaleDate: day1})
	require.NoError(t, err)
	b, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 3, SaleDate: day1})
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), a.ID, "")
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), b.ID, "")
	require.NoError(t, err)

	// 1*100 + 3*100 verified on the day.
	require.True(t, store.daily["2026-03-14"].Equal(dec("400")))
	require.EqualValues(t, 16, store.items[1].Quantity)

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	require.EqualValues(t, 17, store.items[1].Quantity, "deleting a verified sale returns stock")
	require.True(t, store.daily["2026-03-14"].Equal(dec("300")), "rollup recomputed from remaining sales")

	require.NoError(t, svc.Delete(context.Background(), b.ID))
	require.True(t, store.daily["2026-03-14"].Equal(decimal.Zero), "empty day collapses to zero, not a stale total")
}

func TestUpdateVerifiedReappliesDeduction(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 4, SaleDate: day1})
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)
	require.EqualValues(t, 6, store.items[1].Quantity)

	updated, err := svc.Update(context.Background(), sale.ID, UpdateSaleInput{QuantitySold: 2})
	require.NoError(t, err)
	require.EqualValues(t, 8, store.items[1].Quantity, "old deduction reversed, new one applied")
	require.True(t, updated.TotalAmount.Equal(dec("200")))
	require.True(t, store.daily["2026-03-14"].Equal(dec("200")))

	// Growing past available stock fails atomically.
	_, err = svc.Update(context.Background(), sale.ID, UpdateSaleInput{QuantitySold: 50})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.EqualValues(t, 8, store.items[1].Quantity)
	require.True(t, store.daily["2026-03-14"].Equal(dec("200")))
}

func TestUpdateVerifiedMovesDayTotals(t *testing.T) {
	store := newFakeStore()
	seedItem(store, 10, "60", "100")
	svc := newTestService(store)

	sale, err := svc.CreateDraft(context.Background(), CreateSaleInput{StockItemID: 1, QuantitySold: 2, SaleDate: day1})
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), sale.ID, "")
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	_, err = svc.Update(context.Background(), sale.ID, UpdateSaleInput{QuantitySold: 2, SaleDate: &day2})
	require.NoError(t, err)
	require.True(t, store.daily["2026-03-14"].Equal(decimal.Zero))
	require.True(t, store.daily["2026-03-15"].Equal(dec("200")))
}
