// Package source reads the raw e-commerce extracts. Each entity has a
// documented column contract; readers validate headers against it and
// surface the observed column set so downstream merges can detect schema
// drift. All raw fields stay strings until staging coerces them.
package source

// Contracted column sets per extract. Readers require every listed column
// to be present (any order, extra columns tolerated).
var (
	CustomerColumns = []string{
		"customer_id", "first_name", "last_name", "email", "phone",
		"birth_date", "gender", "address_line1", "city", "state",
		"postal_code", "country", "customer_segment", "acquisition_channel",
		"lifetime_value", "created_at", "updated_at", "last_order_date",
		"is_active", "email_subscribed", "preferred_contact",
		"credit_score_range",
	}

	ProductColumns = []string{
		"product_id", "sku", "product_name", "brand", "category_l1",
		"category_l2", "retail_price", "cost", "margin_percent", "weight_kg",
		"dimensions_cm", "color", "size", "stock_quantity", "reorder_point",
		"supplier", "lifecycle_stage", "is_active", "is_featured",
		"created_at", "avg_rating", "total_reviews", "total_sales",
	}

	OrderColumns = []string{
		"order_id", "customer_id", "order_date", "order_status",
		"payment_method", "total_items", "subtotal", "discount_amount",
		"tax_amount", "shipping_cost", "total_amount", "currency",
		"acquisition_channel", "device_type", "is_first_order",
		"created_at", "updated_at",
	}

	OrderItemColumns = []string{
		"order_item_id", "order_id", "product_id", "quantity", "unit_price",
		"line_total", "cost_per_unit", "line_cost",
	}
)

// Customer is one raw customers.csv row.
type Customer struct {
	CustomerID         string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	BirthDate          string
	Gender             string
	AddressLine1       string
	City               string
	State              string
	PostalCode         string
	Country            string
	CustomerSegment    string
	AcquisitionChannel string
	LifetimeValue      string
	CreatedAt          string
	UpdatedAt          string
	LastOrderDate      string
	IsActive           string
	EmailSubscribed    string
	PreferredContact   string
	CreditScoreRange   string
}

// Product is one raw products.csv row.
type Product struct {
	ProductID      string
	SKU            string
	ProductName    string
	Brand          string
	CategoryL1     string
	CategoryL2     string
	RetailPrice    string
	Cost           string
	MarginPercent  string
	WeightKg       string
	DimensionsCm   string
	Color          string
	Size           string
	StockQuantity  string
	ReorderPoint   string
	Supplier       string
	LifecycleStage string
	IsActive       string
	IsFeatured     string
	CreatedAt      string
	AvgRating      string
	TotalReviews   string
	TotalSales     string
}

// Order is one raw orders.csv row.
type Order struct {
	OrderID            string
	CustomerID         string
	OrderDate          string
	OrderStatus        string
	PaymentMethod      string
	TotalItems         string
	Subtotal           string
	DiscountAmount     string
	TaxAmount          string
	ShippingCost       string
	TotalAmount        string
	Currency           string
	AcquisitionChannel string
	DeviceType         string
	IsFirstOrder       string
	CreatedAt          string
	UpdatedAt          string
}

// OrderItem is one raw order_items.csv row.
type OrderItem struct {
	OrderItemID string
	OrderID     string
	ProductID   string
	Quantity    string
	UnitPrice   string
	LineTotal   string
	CostPerUnit string
	LineCost    string
}
