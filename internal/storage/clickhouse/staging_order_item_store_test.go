package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

func createTestStagingOrderItem(orderItemID string) *domain.StagingOrderItem {
	return &domain.StagingOrderItem{
		OrderItemID:        orderItemID,
		OrderID:            "ORD_1",
		ProductID:          "PROD_1",
		Quantity:           2,
		UnitPrice:          450.00,
		LineTotal:          810.00,
		EffectiveUnitPrice: 405.00,
		IsDiscounted:       true,
		CostPerUnit:        270.00,
		LineCost:           540.00,
		LineProfit:         270.00,
		LineMarginPercent:  ptr(33.33),
		LoadedAt:           time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestStagingOrderItemStore_ReplaceRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingOrderItemStore(conn)
	ctx := context.Background()

	want := createTestStagingOrderItem("ITEM_1")
	err := store.Replace(ctx, []*domain.StagingOrderItem{want})
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, want.OrderItemID, r.OrderItemID)
	assert.Equal(t, want.OrderID, r.OrderID)
	assert.Equal(t, want.ProductID, r.ProductID)
	assert.Equal(t, want.Quantity, r.Quantity)
	assert.InDelta(t, want.UnitPrice, r.UnitPrice, 0.0001)
	assert.InDelta(t, want.LineTotal, r.LineTotal, 0.0001)
	assert.InDelta(t, want.EffectiveUnitPrice, r.EffectiveUnitPrice, 0.0001)
	assert.Equal(t, want.IsDiscounted, r.IsDiscounted)
	assert.InDelta(t, want.LineCost, r.LineCost, 0.0001)
	assert.InDelta(t, want.LineProfit, r.LineProfit, 0.0001)
	require.NotNil(t, r.LineMarginPercent)
	assert.InDelta(t, *want.LineMarginPercent, *r.LineMarginPercent, 0.0001)
	assert.True(t, r.LoadedAt.Equal(want.LoadedAt))
}

func TestStagingOrderItemStore_ReplaceSwapsContents(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingOrderItemStore(conn)
	ctx := context.Background()

	err := store.Replace(ctx, []*domain.StagingOrderItem{
		createTestStagingOrderItem("ITEM_1"),
		createTestStagingOrderItem("ITEM_2"),
	})
	require.NoError(t, err)

	err = store.Replace(ctx, []*domain.StagingOrderItem{createTestStagingOrderItem("ITEM_3")})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStagingOrderItemStore_ReplaceIntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingOrderItemStore(conn)
	ctx := context.Background()

	err := store.Replace(ctx, []*domain.StagingOrderItem{
		createTestStagingOrderItem("ITEM_1"),
		createTestStagingOrderItem("ITEM_1"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestStagingOrderItemStore_NullableMargin(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingOrderItemStore(conn)
	ctx := context.Background()

	r := createTestStagingOrderItem("ITEM_NULL")
	r.LineMarginPercent = nil

	err := store.Replace(ctx, []*domain.StagingOrderItem{r})
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].LineMarginPercent)
}
