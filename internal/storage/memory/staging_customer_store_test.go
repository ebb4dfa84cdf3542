package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/storage"
)

func stgCustomer(id string) *domain.StagingCustomer {
	return &domain.StagingCustomer{
		CustomerID: id,
		FullName:   "Test Customer",
		Email:      "test@example.com",
		LoadedAt:   time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestStagingCustomerStore_ReplaceAndGetAll(t *testing.T) {
	store := NewStagingCustomerStore()
	ctx := context.Background()

	rows := []*domain.StagingCustomer{
		stgCustomer("CUST_3"),
		stgCustomer("CUST_1"),
		stgCustomer("CUST_2"),
	}

	if err := store.Replace(ctx, rows); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(all))
	}
	if all[0].CustomerID != "CUST_1" || all[2].CustomerID != "CUST_3" {
		t.Errorf("Rows not ordered by customer_id: %s, %s, %s",
			all[0].CustomerID, all[1].CustomerID, all[2].CustomerID)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}

func TestStagingCustomerStore_ReplaceDiscardsPrevious(t *testing.T) {
	store := NewStagingCustomerStore()
	ctx := context.Background()

	if err := store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_1"), stgCustomer("CUST_2")}); err != nil {
		t.Fatalf("First replace failed: %v", err)
	}
	if err := store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_9")}); err != nil {
		t.Fatalf("Second replace failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 1 || all[0].CustomerID != "CUST_9" {
		t.Errorf("Expected only CUST_9 after replace, got %d rows", len(all))
	}
}

func TestStagingCustomerStore_ReplaceAllOrNothing(t *testing.T) {
	store := NewStagingCustomerStore()
	ctx := context.Background()

	if err := store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_1")}); err != nil {
		t.Fatalf("Seed replace failed: %v", err)
	}

	// Duplicate natural key inside the batch
	err := store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_2"), stgCustomer("CUST_2")})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Invalid row inside the batch
	err = store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_3"), nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	// Previous contents must have survived both failures
	all, _ := store.GetAll(ctx)
	if len(all) != 1 || all[0].CustomerID != "CUST_1" {
		t.Errorf("Failed replace mutated the table: %d rows", len(all))
	}
}

func TestStagingCustomerStore_ReplaceEmptyTruncates(t *testing.T) {
	store := NewStagingCustomerStore()
	ctx := context.Background()

	if err := store.Replace(ctx, []*domain.StagingCustomer{stgCustomer("CUST_1")}); err != nil {
		t.Fatalf("Seed replace failed: %v", err)
	}
	if err := store.Replace(ctx, nil); err != nil {
		t.Fatalf("Empty replace failed: %v", err)
	}

	n, _ := store.Count(ctx)
	if n != 0 {
		t.Errorf("Count = %d after empty replace, want 0", n)
	}
}

func TestStagingCustomerStore_CopySemantics(t *testing.T) {
	store := NewStagingCustomerStore()
	ctx := context.Background()

	original := stgCustomer("CUST_1")
	if err := store.Replace(ctx, []*domain.StagingCustomer{original}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// Mutating the inserted row or a fetched row must not reach the store
	original.Email = "mutated@example.com"
	fetched, _ := store.GetAll(ctx)
	fetched[0].FullName = "Mutated"

	again, _ := store.GetAll(ctx)
	if again[0].Email != "test@example.com" || again[0].FullName != "Test Customer" {
		t.Error("Store contents shared memory with caller rows")
	}
}
