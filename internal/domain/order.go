package domain

import "time"

// StagingOrder is a normalized order extract row with derived fields.
// Corresponds to stg_orders table in ClickHouse.
type StagingOrder struct {
	OrderID               string    // PRIMARY KEY, natural key
	CustomerID            string    // reference to the customer natural key
	OrderDate             time.Time // required, watermark source for fact merges
	OrderStatus           string    // canonical: pending|processing|shipped|delivered|cancelled|returned|unknown
	PaymentMethod         string    // canonical: credit_card|debit_card|paypal|apple_pay|google_pay|bank_transfer|other
	TotalItems            int64     // > 0
	Subtotal              float64   // > 0
	DiscountAmount        float64   // >= 0
	TaxAmount             float64   //
	ShippingCost          float64   //
	TotalAmount           float64   // > 0
	Currency              string    // uppercased ISO code
	AcquisitionChannel    string    // lowercased
	DeviceType            string    // canonical: desktop|mobile|tablet|unknown
	IsFirstOrder          bool      //
	HasDiscount           bool      // DiscountAmount > 0
	NetRevenue            float64   // Subtotal - DiscountAmount
	AverageItemValue      float64   // TotalAmount / TotalItems, 2dp
	IsCompleted           bool      // status = delivered
	IsReturnedOrCancelled bool      // status in (cancelled, returned)
	CreatedAt             time.Time //
	UpdatedAt             time.Time // source revision timestamp
	LoadedAt              time.Time // staging build time
}

// OrderFact is one fact row at order grain.
// Corresponds to fact_orders table in PostgreSQL. Measures are immutable at
// time of load; a row is updated in place only when a re-loaded source row
// carries a strictly newer watermark value.
type OrderFact struct {
	OrderID        string    // PRIMARY KEY, natural key
	CustomerID     string    // FK to dim_customers natural key
	OrderDate      time.Time // watermark column
	OrderStatus    string    //
	PaymentMethod  string    //
	DeviceType     string    //
	Currency       string    //
	IsFirstOrder   bool      //
	TotalItems     int64     //
	Subtotal       float64   //
	DiscountAmount float64   //
	TaxAmount      float64   //
	ShippingCost   float64   //
	TotalAmount    float64   //
	NetRevenue     float64   //
	LoadedAt       time.Time // merge bookkeeping, not the watermark
}
