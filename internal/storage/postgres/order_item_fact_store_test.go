package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

func createTestOrderItemFact(orderItemID string, orderDate time.Time) *domain.OrderItemFact {
	return &domain.OrderItemFact{
		OrderItemID:        orderItemID,
		OrderID:            "ORD_1",
		ProductID:          "PROD_1",
		CustomerID:         "CUST_1",
		OrderDate:          orderDate,
		Quantity:           1,
		UnitPrice:          450.00,
		EffectiveUnitPrice: 450.00,
		IsDiscounted:       false,
		LineTotal:          450.00,
		CostPerUnit:        270.00,
		LineCost:           270.00,
		LineProfit:         180.00,
		LineMarginPercent:  ptr(40.0),
		LoadedAt:           time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestOrderItemFactStore_MergeRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOrderItemFactStore(pool)

	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	stats, err := store.Merge(ctx, []*domain.OrderItemFact{
		createTestOrderItemFact("ITEM_1", d1),
		createTestOrderItemFact("ITEM_2", d1),
	}, d1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Inserted)

	got, err := store.GetByOrderItemID(ctx, "ITEM_1")
	require.NoError(t, err)
	assert.Equal(t, "ORD_1", got.OrderID)
	assert.Equal(t, "PROD_1", got.ProductID)
	assert.Equal(t, "CUST_1", got.CustomerID)
	assert.True(t, got.OrderDate.Equal(d1))
	assert.Equal(t, int64(1), got.Quantity)
	assert.InDelta(t, 450.00, got.LineTotal, 0.0001)
	assert.InDelta(t, 180.00, got.LineProfit, 0.0001)
	require.NotNil(t, got.LineMarginPercent)
	assert.InDelta(t, 40.0, *got.LineMarginPercent, 0.0001)
	assert.False(t, got.IsDiscounted)

	mark, err := store.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, mark.Equal(d1))
}

func TestOrderItemFactStore_MergeUpdatesNewerSkipsStale(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOrderItemFactStore(pool)

	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	_, err := store.Merge(ctx, []*domain.OrderItemFact{
		createTestOrderItemFact("ITEM_1", d1),
		createTestOrderItemFact("ITEM_2", d1),
	}, d1)
	require.NoError(t, err)

	updated := createTestOrderItemFact("ITEM_1", d2)
	updated.Quantity = 2
	updated.LineTotal = 900.00

	stats, err := store.Merge(ctx, []*domain.OrderItemFact{
		updated,
		createTestOrderItemFact("ITEM_2", d1),
		createTestOrderItemFact("ITEM_3", d2),
	}, d2)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.Inserted)
	assert.Equal(t, int64(1), stats.Updated)
	assert.Equal(t, int64(1), stats.Skipped)

	got, err := store.GetByOrderItemID(ctx, "ITEM_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Quantity)
	assert.InDelta(t, 900.00, got.LineTotal, 0.0001)
}

func TestOrderItemFactStore_WatermarkIsolatedFromOrderFacts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	itemStore := NewOrderItemFactStore(pool)
	orderStore := NewOrderFactStore(pool)

	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := itemStore.Merge(ctx, []*domain.OrderItemFact{createTestOrderItemFact("ITEM_1", d1)}, d1)
	require.NoError(t, err)

	// The item merge committed only the item fact's watermark
	_, err = orderStore.Watermark(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mark, err := itemStore.Watermark(ctx)
	require.NoError(t, err)
	assert.True(t, mark.Equal(d1))
}

func TestOrderItemFactStore_GetAllOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOrderItemFactStore(pool)

	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := store.Merge(ctx, []*domain.OrderItemFact{
		createTestOrderItemFact("ITEM_2", d1),
		createTestOrderItemFact("ITEM_1", d1),
	}, d1)
	require.NoError(t, err)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ITEM_1", all[0].OrderItemID)
	assert.Equal(t, "ITEM_2", all[1].OrderItemID)
}

func TestOrderItemFactStore_Reset(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOrderItemFactStore(pool)

	d1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := store.Merge(ctx, []*domain.OrderItemFact{createTestOrderItemFact("ITEM_1", d1)}, d1)
	require.NoError(t, err)

	err = store.Reset(ctx)
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = store.Watermark(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByOrderItemID(ctx, "ITEM_1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
