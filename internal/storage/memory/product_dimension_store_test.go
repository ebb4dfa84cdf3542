package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

func productVersion(id, hash string, validFrom time.Time) *domain.ProductVersion {
	return &domain.ProductVersion{
		ProductID:   id,
		SKU:         "SKU-1",
		ProductName: "Test Product",
		RetailPrice: 99.99,
		AttrHash:    hash,
		ValidFrom:   validFrom,
	}
}

func TestProductDimensionStore_InsertSupersedeRoundTrip(t *testing.T) {
	store := NewProductDimensionStore()
	ctx := context.Background()

	k1, err := store.Insert(ctx, productVersion("PROD_1", "h1", day1))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := store.Insert(ctx, productVersion("PROD_1", "h2", day2)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	k2, err := store.Supersede(ctx, productVersion("PROD_1", "h2", day2))
	if err != nil {
		t.Fatalf("Supersede failed: %v", err)
	}
	if k2 <= k1 {
		t.Errorf("Surrogate keys not monotonic: %d then %d", k1, k2)
	}

	history, _ := store.GetHistory(ctx, "PROD_1")
	if len(history) != 2 {
		t.Fatalf("Expected 2 versions, got %d", len(history))
	}
	if history[0].IsCurrent || history[0].ValidTo == nil {
		t.Error("Old version not closed by supersede")
	}
	if !history[1].IsCurrent || history[1].ValidTo != nil {
		t.Error("New version not open")
	}

	current, _ := store.GetCurrent(ctx, "PROD_1")
	if current.AttrHash != "h2" {
		t.Errorf("Current hash = %q, want h2", current.AttrHash)
	}
}

func TestProductDimensionStore_SupersedeWithoutOpenVersion(t *testing.T) {
	store := NewProductDimensionStore()

	_, err := store.Supersede(context.Background(), productVersion("PROD_1", "h1", day1))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestProductDimensionStore_GetAllCurrentOrdering(t *testing.T) {
	store := NewProductDimensionStore()
	ctx := context.Background()

	for _, id := range []string{"PROD_3", "PROD_1", "PROD_2"} {
		if _, err := store.Insert(ctx, productVersion(id, "h1", day1)); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}

	current, err := store.GetAllCurrent(ctx)
	if err != nil {
		t.Fatalf("GetAllCurrent failed: %v", err)
	}
	if len(current) != 3 {
		t.Fatalf("Expected 3 versions, got %d", len(current))
	}
	if current[0].ProductID != "PROD_1" || current[2].ProductID != "PROD_3" {
		t.Error("GetAllCurrent not ordered by product_id")
	}
}
