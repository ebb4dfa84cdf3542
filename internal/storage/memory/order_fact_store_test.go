package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

func orderFact(id string, orderDate time.Time, total float64) *domain.OrderFact {
	return &domain.OrderFact{
		OrderID:     id,
		CustomerID:  "CUST_1",
		OrderDate:   orderDate,
		OrderStatus: "delivered",
		TotalAmount: total,
	}
}

var (
	jan5  = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan15 = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func TestOrderFactStore_WatermarkBeforeFirstMerge(t *testing.T) {
	store := NewOrderFactStore()

	_, err := store.Watermark(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestOrderFactStore_MergeInsertsAndAdvancesWatermark(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	stats, err := store.Merge(ctx, []*domain.OrderFact{
		orderFact("ORD_1", jan5, 100),
		orderFact("ORD_2", jan10, 200),
	}, jan10)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if stats.Inserted != 2 || stats.Updated != 0 || stats.Skipped != 0 {
		t.Errorf("Stats = %+v, want 2 inserted", stats)
	}

	mark, err := store.Watermark(ctx)
	if err != nil {
		t.Fatalf("Watermark failed: %v", err)
	}
	if !mark.Equal(jan10) {
		t.Errorf("Watermark = %v, want %v", mark, jan10)
	}

	n, _ := store.Count(ctx)
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestOrderFactStore_MergeUpdatesOnlyStrictlyNewer(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	if _, err := store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_1", jan10, 100)}, jan10); err != nil {
		t.Fatalf("Seed merge failed: %v", err)
	}

	stats, err := store.Merge(ctx, []*domain.OrderFact{
		orderFact("ORD_1", jan15, 150), // newer: applied
		orderFact("ORD_2", jan15, 200), // new key: inserted
	}, jan15)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if stats.Inserted != 1 || stats.Updated != 1 || stats.Skipped != 0 {
		t.Errorf("Stats = %+v, want 1 inserted 1 updated", stats)
	}

	got, _ := store.GetByOrderID(ctx, "ORD_1")
	if got.TotalAmount != 150 || !got.OrderDate.Equal(jan15) {
		t.Errorf("Updated row = %+v", got)
	}

	// Same watermark again: row is at the stored watermark, not beyond it
	stats, err = store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_1", jan15, 999)}, jan15)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if stats.Skipped != 1 || stats.Updated != 0 {
		t.Errorf("Stats = %+v, want 1 skipped", stats)
	}

	got, _ = store.GetByOrderID(ctx, "ORD_1")
	if got.TotalAmount != 150 {
		t.Errorf("Equal-watermark row overwrote data: total = %v", got.TotalAmount)
	}

	// Older watermark: also skipped
	stats, _ = store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_1", jan5, 1)}, jan15)
	if stats.Skipped != 1 {
		t.Errorf("Stats = %+v, want 1 skipped for older row", stats)
	}
}

func TestOrderFactStore_WatermarkNeverRegresses(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	if _, err := store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_1", jan15, 100)}, jan15); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if _, err := store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_2", jan5, 50)}, jan5); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	mark, _ := store.Watermark(ctx)
	if !mark.Equal(jan15) {
		t.Errorf("Watermark regressed to %v", mark)
	}
}

func TestOrderFactStore_MergeAllOrNothing(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	// Intra-batch duplicate key
	_, err := store.Merge(ctx, []*domain.OrderFact{
		orderFact("ORD_1", jan5, 100),
		orderFact("ORD_1", jan10, 200),
	}, jan10)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Invalid row in the batch
	_, err = store.Merge(ctx, []*domain.OrderFact{
		orderFact("ORD_2", jan5, 100),
		nil,
	}, jan5)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	// Neither failed batch may leave rows or a watermark behind
	n, _ := store.Count(ctx)
	if n != 0 {
		t.Errorf("Count = %d after failed merges, want 0", n)
	}
	if _, err := store.Watermark(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Watermark set by failed merge: %v", err)
	}
}

func TestOrderFactStore_EmptyMergeIsNoOp(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	stats, err := store.Merge(ctx, nil, time.Time{})
	if err != nil {
		t.Fatalf("Empty merge failed: %v", err)
	}
	if stats != (storage.MergeStats{}) {
		t.Errorf("Stats = %+v, want zero", stats)
	}
	if _, err := store.Watermark(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Error("Empty merge advanced the watermark")
	}
}

func TestOrderFactStore_Reset(t *testing.T) {
	store := NewOrderFactStore()
	ctx := context.Background()

	if _, err := store.Merge(ctx, []*domain.OrderFact{orderFact("ORD_1", jan10, 100)}, jan10); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	n, _ := store.Count(ctx)
	if n != 0 {
		t.Errorf("Count = %d after reset, want 0", n)
	}
	if _, err := store.Watermark(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Watermark survived reset: %v", err)
	}
}

func TestOrderFactStore_NotFound(t *testing.T) {
	store := NewOrderFactStore()

	_, err := store.GetByOrderID(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
