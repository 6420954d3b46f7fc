package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukaan-erp/dukaan-erp/internal/shared"
)

type fakeRepo struct {
	items      map[int64]StockItem
	categories map[int64]Category
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[int64]StockItem{}, categories: map[int64]Category{}, nextID: 1}
}

func (f *fakeRepo) GetItem(_ context.Context, id int64) (StockItem, error) {
	item, ok := f.items[id]
	if !ok {
		return StockItem{}, ErrItemNotFound
	}
	return item, nil
}

func (f *fakeRepo) ListItems(_ context.Context, filter ListFilter) ([]StockItem, error) {
	var out []StockItem
	for _, item := range f.items {
		if filter.CategoryID != 0 && item.CategoryID != filter.CategoryID {
			continue
		}
		if filter.LowStock && item.Quantity > LowStockThreshold {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeRepo) CreateItem(_ context.Context, item StockItem) (int64, error) {
	id := f.nextID
	f.nextID++
	item.ID = id
	f.items[id] = item
	return id, nil
}

func (f *fakeRepo) UpdateSellingPrice(_ context.Context, id int64, input UpdatePricingInput) error {
	item, ok := f.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.SellingPrice = input.SellingPrice
	f.items[id] = item
	return nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, name string) (int64, error) {
	id := f.nextID
	f.nextID++
	f.categories[id] = Category{ID: id, Name: name}
	return id, nil
}

func (f *fakeRepo) ListCategories(_ context.Context) ([]Category, error) {
	var out []Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func TestCreateItemRoundsAndAudits(t *testing.T) {
	repo := newFakeRepo()
	audit := &fakeAudit{}
	svc := NewService(repo, audit)
	ctx := shared.ContextWithActor(context.Background(), 7)

	item, err := svc.CreateItem(ctx, CreateItemInput{
		Name:         "Basmati Rice 5kg",
		CategoryID:   1,
		Quantity:     12,
		CostPrice:    dec("99.999"),
		SellingPrice: dec("149.995"),
	})
	require.NoError(t, err)
	require.True(t, item.CostPrice.Equal(dec("100")), "got %s", item.CostPrice)
	require.True(t, item.SellingPrice.Equal(dec("150")), "got %s", item.SellingPrice)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "ITEM_CREATE", audit.logs[0].Action)
	require.EqualValues(t, 7, audit.logs[0].ActorID)
}

func TestCreateItemRejectsNegativeValues(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "x", CategoryID: 1, Quantity: -1})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateItem(context.Background(), CreateItemInput{Name: "x", CategoryID: 1, CostPrice: dec("-1")})
	require.ErrorIs(t, err, ErrInvalidUnitCost)
}

func TestUpdatePricing(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAudit{})
	item, err := svc.CreateItem(context.Background(), CreateItemInput{Name: "Soap", CategoryID: 2, SellingPrice: dec("40")})
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdatePricing(context.Background(), item.ID, UpdatePricingInput{SellingPrice: dec("-5")}), ErrInvalidUnitCost)

	require.NoError(t, svc.UpdatePricing(context.Background(), item.ID, UpdatePricingInput{SellingPrice: dec("45.125")}))
	got, err := svc.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, got.SellingPrice.Equal(dec("45.13")), "got %s", got.SellingPrice)
}

func TestListItemsLowStockFilter(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, CreateItemInput{Name: "Plenty", CategoryID: 1, Quantity: 50})
	require.NoError(t, err)
	low, err := svc.CreateItem(ctx, CreateItemInput{Name: "Scarce", CategoryID: 1, Quantity: 3})
	require.NoError(t, err)

	items, err := svc.ListItems(ctx, ListFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, low.ID, items[0].ID)
}
