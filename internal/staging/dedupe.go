package staging

import "ecom-warehouse/internal/domain"

// A raw extract may carry the same natural key more than once (re-extracted
// updates landing in one batch). Staging collapses such rows before the
// table replace: the row with the highest source revision timestamp wins,
// and on equal revisions the later extract position wins. Order items have
// no revision column, so position alone decides.

func dedupeCustomers(rows []*domain.StagingCustomer) ([]*domain.StagingCustomer, int) {
	kept := make([]*domain.StagingCustomer, 0, len(rows))
	index := make(map[string]int, len(rows))
	duplicates := 0

	for _, r := range rows {
		i, seen := index[r.CustomerID]
		if !seen {
			index[r.CustomerID] = len(kept)
			kept = append(kept, r)
			continue
		}
		duplicates++
		if !r.UpdatedAt.Before(kept[i].UpdatedAt) {
			kept[i] = r
		}
	}

	return kept, duplicates
}

func dedupeProducts(rows []*domain.StagingProduct) ([]*domain.StagingProduct, int) {
	kept := make([]*domain.StagingProduct, 0, len(rows))
	index := make(map[string]int, len(rows))
	duplicates := 0

	for _, r := range rows {
		i, seen := index[r.ProductID]
		if !seen {
			index[r.ProductID] = len(kept)
			kept = append(kept, r)
			continue
		}
		duplicates++
		if !r.CreatedAt.Before(kept[i].CreatedAt) {
			kept[i] = r
		}
	}

	return kept, duplicates
}

func dedupeOrders(rows []*domain.StagingOrder) ([]*domain.StagingOrder, int) {
	kept := make([]*domain.StagingOrder, 0, len(rows))
	index := make(map[string]int, len(rows))
	duplicates := 0

	for _, r := range rows {
		i, seen := index[r.OrderID]
		if !seen {
			index[r.OrderID] = len(kept)
			kept = append(kept, r)
			continue
		}
		duplicates++
		if !r.UpdatedAt.Before(kept[i].UpdatedAt) {
			kept[i] = r
		}
	}

	return kept, duplicates
}

func dedupeOrderItems(rows []*domain.StagingOrderItem) ([]*domain.StagingOrderItem, int) {
	kept := make([]*domain.StagingOrderItem, 0, len(rows))
	index := make(map[string]int, len(rows))
	duplicates := 0

	for _, r := range rows {
		i, seen := index[r.OrderItemID]
		if !seen {
			index[r.OrderItemID] = len(kept)
			kept = append(kept, r)
			continue
		}
		duplicates++
		kept[i] = r
	}

	return kept, duplicates
}
