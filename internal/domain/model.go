package domain

// Model names as they appear in the dependency graph, watermark rows, and
// quality results.
const (
	ModelStgCustomers   = "stg_customers"
	ModelStgProducts    = "stg_products"
	ModelStgOrders      = "stg_orders"
	ModelStgOrderItems  = "stg_order_items"
	ModelDimCustomers   = "dim_customers"
	ModelDimProducts    = "dim_products"
	ModelFactOrders     = "fact_orders"
	ModelFactOrderItems = "fact_order_items"
)
