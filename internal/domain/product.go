package domain

import "time"

// StagingProduct is a normalized product extract row with derived fields.
// Corresponds to stg_products table in ClickHouse.
type StagingProduct struct {
	ProductID      string     // PRIMARY KEY, natural key
	SKU            string     // uppercased
	ProductName    string     //
	Brand          string     //
	CategoryL1     string     //
	CategoryL2     string     //
	CategoryPath   string     // "L1 > L2"
	RetailPrice    float64    // > 0, enforced at normalization
	Cost           float64    // >= 0
	Profit         float64    // RetailPrice - Cost
	MarginPercent  *float64   // Profit / RetailPrice * 100, 2dp, NULL if price is zero
	PriceTier      string     // budget|standard|premium|luxury
	WeightKg       *float64   // NULL if not provided
	LengthCm       *float64   // parsed from "LxWxH", NULL if unparseable
	WidthCm        *float64   //
	HeightCm       *float64   //
	VolumeCm3      *float64   // L*W*H, NULL unless all three parsed
	Color          *string    //
	Size           *string    //
	StockQuantity  int64      //
	ReorderPoint   int64      //
	NeedsReorder   bool       // StockQuantity <= ReorderPoint
	Supplier       string     //
	LifecycleStage string     // canonical: new|growth|mature|decline|unknown
	IsActive       bool       //
	IsFeatured     bool       //
	CreatedAt      time.Time  // required
	AvgRating      float64    //
	TotalReviews   int64      //
	TotalSales     int64      //
	LoadedAt       time.Time  // staging build time
}

// ProductVersion is one SCD2 version of a product dimension row.
// Corresponds to dim_products table in PostgreSQL. Inventory and engagement
// measures (stock, ratings, sales) stay in staging: they churn on every
// extract and must not version the dimension.
type ProductVersion struct {
	SurrogateKey   int64      // PRIMARY KEY, store-assigned, monotonic
	ProductID      string     // natural key
	SKU            string     //
	ProductName    string     //
	Brand          string     //
	CategoryL1     string     //
	CategoryL2     string     //
	CategoryPath   string     //
	RetailPrice    float64    //
	Cost           float64    //
	MarginPercent  *float64   //
	PriceTier      string     //
	WeightKg       *float64   //
	Color          *string    //
	Size           *string    //
	Supplier       string     //
	LifecycleStage string     //
	IsActive       bool       //
	IsFeatured     bool       //
	AttrHash       string     // digest of the tracked attribute subset
	ValidFrom      time.Time  //
	ValidTo        *time.Time // NULL while the version is open
	IsCurrent      bool       // exactly one true per natural key
}
