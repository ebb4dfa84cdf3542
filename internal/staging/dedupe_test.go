package staging

import (
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
)

func stgCust(id string, updatedAt time.Time, email string) *domain.StagingCustomer {
	return &domain.StagingCustomer{CustomerID: id, UpdatedAt: updatedAt, Email: email}
}

func TestDedupeCustomers_HighestRevisionWins(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	// Newer revision arrives first: position must not override revision
	rows := []*domain.StagingCustomer{
		stgCust("CUST_1", newer, "new@example.com"),
		stgCust("CUST_1", older, "old@example.com"),
		stgCust("CUST_2", older, "other@example.com"),
	}

	kept, duplicates := dedupeCustomers(rows)
	if duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", duplicates)
	}
	if len(kept) != 2 {
		t.Fatalf("kept = %d rows, want 2", len(kept))
	}
	if kept[0].Email != "new@example.com" {
		t.Errorf("kept email = %q, want the newer revision", kept[0].Email)
	}
}

func TestDedupeCustomers_EqualRevisionLaterPositionWins(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []*domain.StagingCustomer{
		stgCust("CUST_1", at, "first@example.com"),
		stgCust("CUST_1", at, "second@example.com"),
	}

	kept, duplicates := dedupeCustomers(rows)
	if duplicates != 1 || len(kept) != 1 {
		t.Fatalf("kept/duplicates = %d/%d, want 1/1", len(kept), duplicates)
	}
	if kept[0].Email != "second@example.com" {
		t.Errorf("kept email = %q, want the later extract position", kept[0].Email)
	}
}

func TestDedupeOrderItems_PositionDecides(t *testing.T) {
	// Order items carry no revision column
	rows := []*domain.StagingOrderItem{
		{OrderItemID: "ITEM_1", Quantity: 1},
		{OrderItemID: "ITEM_1", Quantity: 5},
	}

	kept, duplicates := dedupeOrderItems(rows)
	if duplicates != 1 || len(kept) != 1 {
		t.Fatalf("kept/duplicates = %d/%d, want 1/1", len(kept), duplicates)
	}
	if kept[0].Quantity != 5 {
		t.Errorf("kept quantity = %d, want the later row", kept[0].Quantity)
	}
}

func TestDedupeCustomers_NoDuplicatesPassThrough(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []*domain.StagingCustomer{
		stgCust("CUST_1", at, "a@example.com"),
		stgCust("CUST_2", at, "b@example.com"),
	}

	kept, duplicates := dedupeCustomers(rows)
	if duplicates != 0 || len(kept) != 2 {
		t.Errorf("kept/duplicates = %d/%d, want 2/0", len(kept), duplicates)
	}
	if kept[0].CustomerID != "CUST_1" || kept[1].CustomerID != "CUST_2" {
		t.Error("input order not preserved")
	}
}
