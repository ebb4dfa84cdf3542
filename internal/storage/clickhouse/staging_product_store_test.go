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

func createTestStagingProduct(productID string) *domain.StagingProduct {
	return &domain.StagingProduct{
		ProductID:      productID,
		SKU:            "SKU-001",
		ProductName:    "Walnut Desk",
		Brand:          "Oakline",
		CategoryL1:     "Furniture",
		CategoryL2:     "Desks",
		CategoryPath:   "Furniture > Desks",
		RetailPrice:    450.00,
		Cost:           270.00,
		Profit:         180.00,
		MarginPercent:  ptr(40.0),
		PriceTier:      "premium",
		WeightKg:       ptr(32.5),
		LengthCm:       ptr(140.0),
		WidthCm:        ptr(70.0),
		HeightCm:       ptr(75.0),
		VolumeCm3:      ptr(735000.0),
		Color:          ptr("walnut"),
		Size:           ptr("140x70"),
		StockQuantity:  18,
		ReorderPoint:   5,
		NeedsReorder:   false,
		Supplier:       "Oakline Mills",
		LifecycleStage: "mature",
		IsActive:       true,
		IsFeatured:     false,
		CreatedAt:      time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
		AvgRating:      4.5,
		TotalReviews:   120,
		TotalSales:     340,
		LoadedAt:       time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestStagingProductStore_ReplaceRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingProductStore(conn)
	ctx := context.Background()

	want := createTestStagingProduct("PROD_1")
	err := store.Replace(ctx, []*domain.StagingProduct{want})
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, want.ProductID, r.ProductID)
	assert.Equal(t, want.SKU, r.SKU)
	assert.Equal(t, want.ProductName, r.ProductName)
	assert.Equal(t, want.CategoryPath, r.CategoryPath)
	assert.InDelta(t, want.RetailPrice, r.RetailPrice, 0.0001)
	assert.InDelta(t, want.Cost, r.Cost, 0.0001)
	assert.InDelta(t, want.Profit, r.Profit, 0.0001)
	require.NotNil(t, r.MarginPercent)
	assert.InDelta(t, *want.MarginPercent, *r.MarginPercent, 0.0001)
	assert.Equal(t, want.PriceTier, r.PriceTier)
	require.NotNil(t, r.VolumeCm3)
	assert.InDelta(t, *want.VolumeCm3, *r.VolumeCm3, 0.0001)
	require.NotNil(t, r.Color)
	assert.Equal(t, *want.Color, *r.Color)
	assert.Equal(t, want.StockQuantity, r.StockQuantity)
	assert.Equal(t, want.ReorderPoint, r.ReorderPoint)
	assert.Equal(t, want.NeedsReorder, r.NeedsReorder)
	assert.Equal(t, want.LifecycleStage, r.LifecycleStage)
	assert.True(t, r.CreatedAt.Equal(want.CreatedAt))
	assert.InDelta(t, want.AvgRating, r.AvgRating, 0.0001)
	assert.Equal(t, want.TotalReviews, r.TotalReviews)
	assert.Equal(t, want.TotalSales, r.TotalSales)
	assert.True(t, r.LoadedAt.Equal(want.LoadedAt))
}

func TestStagingProductStore_ReplaceSwapsContents(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingProductStore(conn)
	ctx := context.Background()

	err := store.Replace(ctx, []*domain.StagingProduct{
		createTestStagingProduct("PROD_1"),
		createTestStagingProduct("PROD_2"),
	})
	require.NoError(t, err)

	err = store.Replace(ctx, []*domain.StagingProduct{createTestStagingProduct("PROD_3")})
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PROD_3", got[0].ProductID)
}

func TestStagingProductStore_ReplaceIntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingProductStore(conn)
	ctx := context.Background()

	err := store.Replace(ctx, []*domain.StagingProduct{
		createTestStagingProduct("PROD_1"),
		createTestStagingProduct("PROD_1"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestStagingProductStore_NullableFields(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStagingProductStore(conn)
	ctx := context.Background()

	r := createTestStagingProduct("PROD_NULL")
	r.MarginPercent = nil
	r.WeightKg = nil
	r.LengthCm = nil
	r.WidthCm = nil
	r.HeightCm = nil
	r.VolumeCm3 = nil
	r.Color = nil
	r.Size = nil

	err := store.Replace(ctx, []*domain.StagingProduct{r})
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].MarginPercent)
	assert.Nil(t, got[0].WeightKg)
	assert.Nil(t, got[0].VolumeCm3)
	assert.Nil(t, got[0].Color)
	assert.Nil(t, got[0].Size)
}
