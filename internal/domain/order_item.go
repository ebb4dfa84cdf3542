package domain

import "time"

// StagingOrderItem is a normalized order line with derived fields.
// Corresponds to stg_order_items table in ClickHouse.
type StagingOrderItem struct {
	OrderItemID        string    // PRIMARY KEY, natural key
	OrderID            string    // parent order natural key
	ProductID          string    // reference to the product natural key
	Quantity           int64     // > 0
	UnitPrice          float64   // > 0, catalog price at order time
	LineTotal          float64   // charged amount for the line
	EffectiveUnitPrice float64   // LineTotal / Quantity, 2dp
	IsDiscounted       bool      // unit price differs from effective unit price
	CostPerUnit        float64   //
	LineCost           float64   //
	LineProfit         float64   // LineTotal - LineCost
	LineMarginPercent  *float64  // LineProfit / LineTotal * 100, 2dp, NULL if line total is zero
	LoadedAt           time.Time // staging build time
}

// OrderItemFact is one fact row at order-item grain.
// Corresponds to fact_order_items table in PostgreSQL. OrderDate and
// CustomerID are taken from the parent order during fact assembly.
type OrderItemFact struct {
	OrderItemID        string    // PRIMARY KEY, natural key
	OrderID            string    // FK to fact_orders
	ProductID          string    // FK to dim_products natural key
	CustomerID         string    // FK to dim_customers natural key
	OrderDate          time.Time // watermark column, inherited from the parent order
	Quantity           int64     //
	UnitPrice          float64   //
	EffectiveUnitPrice float64   //
	IsDiscounted       bool      //
	LineTotal          float64   //
	CostPerUnit        float64   //
	LineCost           float64   //
	LineProfit         float64   //
	LineMarginPercent  *float64  //
	LoadedAt           time.Time // merge bookkeeping, not the watermark
}
