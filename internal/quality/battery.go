package quality

import (
	"context"

	"ecom-warehouse/internal/domain"
)

// Sane bounds for range checks. Out-of-bound values are reported, never
// mutated.
const (
	maxOrderTotal    = 10000
	maxRating        = 5
	maxMarginPercent = 100
)

// battery assembles the fixed check list. Order is stable: staging models
// first, then dimensions, then facts, so reports read in build order.
func (s *Suite) battery() []Check {
	var checks []Check
	checks = append(checks, s.stagingCustomerChecks()...)
	checks = append(checks, s.stagingProductChecks()...)
	checks = append(checks, s.stagingOrderChecks()...)
	checks = append(checks, s.stagingOrderItemChecks()...)
	checks = append(checks, s.customerDimensionChecks()...)
	checks = append(checks, s.productDimensionChecks()...)
	checks = append(checks, s.orderFactChecks()...)
	checks = append(checks, s.orderItemFactChecks()...)
	return checks
}

// customersColumn applies a verdict to one string column of stg_customers.
func (s *Suite) customersColumn(col func(*domain.StagingCustomer) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.stagingCustomers.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// productsColumn applies a verdict to one string column of stg_products.
func (s *Suite) productsColumn(col func(*domain.StagingProduct) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.stagingProducts.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// ordersColumn applies a verdict to one string column of stg_orders.
func (s *Suite) ordersColumn(col func(*domain.StagingOrder) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.stagingOrders.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// orderItemsColumn applies a verdict to one string column of stg_order_items.
func (s *Suite) orderItemsColumn(col func(*domain.StagingOrderItem) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.stagingOrderItems.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// orderFactsColumn applies a verdict to one string column of fact_orders.
func (s *Suite) orderFactsColumn(col func(*domain.OrderFact) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.orderFacts.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// orderItemFactsColumn applies a verdict to one string column of
// fact_order_items.
func (s *Suite) orderItemFactsColumn(col func(*domain.OrderItemFact) string, verdict func([]string) int64) func(context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		rows, err := s.orderItemFacts.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = col(r)
		}
		return verdict(values), nil
	}
}

// currentCustomerCounts maps each customer natural key to its number of
// current dimension versions. A fact reference resolves only when the count
// is exactly one.
func (s *Suite) currentCustomerCounts(ctx context.Context) (map[string]int64, error) {
	versions, err := s.customers.GetAllCurrent(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(versions))
	for _, v := range versions {
		counts[v.CustomerID]++
	}
	return counts, nil
}

// currentProductCounts maps each product natural key to its number of
// current dimension versions.
func (s *Suite) currentProductCounts(ctx context.Context) (map[string]int64, error) {
	versions, err := s.products.GetAllCurrent(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(versions))
	for _, v := range versions {
		counts[v.ProductID]++
	}
	return counts, nil
}

func (s *Suite) stagingCustomerChecks() []Check {
	model := domain.ModelStgCustomers
	return []Check{
		{Model: model, Name: CheckUnique, Column: "customer_id", Severity: domain.SeverityError,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.CustomerID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "customer_id", Severity: domain.SeverityError,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.CustomerID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "created_at", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingCustomers.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.CreatedAt.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckAcceptedValues, Column: "gender", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.Gender }, outsideSet(domain.AcceptedGenders))},
		{Model: model, Name: CheckAcceptedValues, Column: "customer_segment", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.CustomerSegment }, outsideSet(domain.AcceptedSegments))},
		{Model: model, Name: CheckAcceptedValues, Column: "preferred_contact", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.PreferredContact }, outsideSet(domain.AcceptedContacts))},
		{Model: model, Name: CheckAcceptedValues, Column: "credit_score_range", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.CreditScoreRange }, outsideSet(domain.AcceptedCreditRanges))},
		{Model: model, Name: CheckAcceptedValues, Column: "value_band", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.ValueBand }, outsideSet(domain.AcceptedValueBands))},
		{Model: model, Name: CheckAcceptedValues, Column: "recency_band", Severity: domain.SeverityWarn,
			Eval: s.customersColumn(func(r *domain.StagingCustomer) string { return r.RecencyBand }, outsideSet(domain.AcceptedRecencyBands))},
	}
}

func (s *Suite) stagingProductChecks() []Check {
	model := domain.ModelStgProducts
	return []Check{
		{Model: model, Name: CheckUnique, Column: "product_id", Severity: domain.SeverityError,
			Eval: s.productsColumn(func(r *domain.StagingProduct) string { return r.ProductID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "product_id", Severity: domain.SeverityError,
			Eval: s.productsColumn(func(r *domain.StagingProduct) string { return r.ProductID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "created_at", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingProducts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.CreatedAt.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckAcceptedValues, Column: "price_tier", Severity: domain.SeverityWarn,
			Eval: s.productsColumn(func(r *domain.StagingProduct) string { return r.PriceTier }, outsideSet(domain.AcceptedPriceTiers))},
		{Model: model, Name: CheckAcceptedValues, Column: "lifecycle_stage", Severity: domain.SeverityWarn,
			Eval: s.productsColumn(func(r *domain.StagingProduct) string { return r.LifecycleStage }, outsideSet(domain.AcceptedLifecycleStages))},
		{Model: model, Name: CheckRange, Column: "avg_rating", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingProducts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.AvgRating < 0 || r.AvgRating > maxRating {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRange, Column: "margin_percent", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingProducts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.MarginPercent != nil && *r.MarginPercent > maxMarginPercent {
						failing++
					}
				}
				return failing, nil
			}},
	}
}

func (s *Suite) stagingOrderChecks() []Check {
	model := domain.ModelStgOrders
	return []Check{
		{Model: model, Name: CheckUnique, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.OrderID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.OrderID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "customer_id", Severity: domain.SeverityError,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.CustomerID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "order_date", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingOrders.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.OrderDate.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckAcceptedValues, Column: "order_status", Severity: domain.SeverityWarn,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.OrderStatus }, outsideSet(domain.AcceptedOrderStatuses))},
		{Model: model, Name: CheckAcceptedValues, Column: "payment_method", Severity: domain.SeverityWarn,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.PaymentMethod }, outsideSet(domain.AcceptedPaymentMethods))},
		{Model: model, Name: CheckAcceptedValues, Column: "device_type", Severity: domain.SeverityWarn,
			Eval: s.ordersColumn(func(r *domain.StagingOrder) string { return r.DeviceType }, outsideSet(domain.AcceptedDeviceTypes))},
	}
}

func (s *Suite) stagingOrderItemChecks() []Check {
	model := domain.ModelStgOrderItems
	return []Check{
		{Model: model, Name: CheckUnique, Column: "order_item_id", Severity: domain.SeverityError,
			Eval: s.orderItemsColumn(func(r *domain.StagingOrderItem) string { return r.OrderItemID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "order_item_id", Severity: domain.SeverityError,
			Eval: s.orderItemsColumn(func(r *domain.StagingOrderItem) string { return r.OrderItemID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.orderItemsColumn(func(r *domain.StagingOrderItem) string { return r.OrderID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "product_id", Severity: domain.SeverityError,
			Eval: s.orderItemsColumn(func(r *domain.StagingOrderItem) string { return r.ProductID }, missing)},
		{Model: model, Name: CheckRange, Column: "quantity", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingOrderItems.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.Quantity < 1 {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRange, Column: "line_margin_percent", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.stagingOrderItems.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.LineMarginPercent != nil && *r.LineMarginPercent > maxMarginPercent {
						failing++
					}
				}
				return failing, nil
			}},
	}
}

func (s *Suite) customerDimensionChecks() []Check {
	model := domain.ModelDimCustomers
	return []Check{
		{Model: model, Name: CheckUnique, Column: "surrogate_key", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.customers.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				seen := make(map[int64]int64, len(versions))
				for _, v := range versions {
					seen[v.SurrogateKey]++
				}
				var failing int64
				for _, n := range seen {
					if n > 1 {
						failing += n
					}
				}
				return failing, nil
			}},
		// At most one current version per natural key.
		{Model: model, Name: CheckUnique, Column: "customer_id", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.customers.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var keys []string
				for _, v := range versions {
					if v.IsCurrent {
						keys = append(keys, v.CustomerID)
					}
				}
				return duplicated(keys), nil
			}},
		{Model: model, Name: CheckNotNull, Column: "attr_hash", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.customers.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, v := range versions {
					if v.AttrHash == "" {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckNotNull, Column: "valid_from", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.customers.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, v := range versions {
					if v.ValidFrom.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
	}
}

func (s *Suite) productDimensionChecks() []Check {
	model := domain.ModelDimProducts
	return []Check{
		{Model: model, Name: CheckUnique, Column: "surrogate_key", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.products.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				seen := make(map[int64]int64, len(versions))
				for _, v := range versions {
					seen[v.SurrogateKey]++
				}
				var failing int64
				for _, n := range seen {
					if n > 1 {
						failing += n
					}
				}
				return failing, nil
			}},
		// At most one current version per natural key.
		{Model: model, Name: CheckUnique, Column: "product_id", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.products.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var keys []string
				for _, v := range versions {
					if v.IsCurrent {
						keys = append(keys, v.ProductID)
					}
				}
				return duplicated(keys), nil
			}},
		{Model: model, Name: CheckNotNull, Column: "attr_hash", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.products.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, v := range versions {
					if v.AttrHash == "" {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckNotNull, Column: "valid_from", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				versions, err := s.products.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, v := range versions {
					if v.ValidFrom.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
	}
}

func (s *Suite) orderFactChecks() []Check {
	model := domain.ModelFactOrders
	return []Check{
		{Model: model, Name: CheckUnique, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.orderFactsColumn(func(r *domain.OrderFact) string { return r.OrderID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.orderFactsColumn(func(r *domain.OrderFact) string { return r.OrderID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "customer_id", Severity: domain.SeverityError,
			Eval: s.orderFactsColumn(func(r *domain.OrderFact) string { return r.CustomerID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "order_date", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.OrderDate.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRelationships, Column: "customer_id", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				current, err := s.currentCustomerCounts(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if current[r.CustomerID] != 1 {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRange, Column: "total_amount", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.TotalAmount <= 0 || r.TotalAmount > maxOrderTotal {
						failing++
					}
				}
				return failing, nil
			}},
	}
}

func (s *Suite) orderItemFactChecks() []Check {
	model := domain.ModelFactOrderItems
	return []Check{
		{Model: model, Name: CheckUnique, Column: "order_item_id", Severity: domain.SeverityError,
			Eval: s.orderItemFactsColumn(func(r *domain.OrderItemFact) string { return r.OrderItemID }, duplicated)},
		{Model: model, Name: CheckNotNull, Column: "order_item_id", Severity: domain.SeverityError,
			Eval: s.orderItemFactsColumn(func(r *domain.OrderItemFact) string { return r.OrderItemID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "order_id", Severity: domain.SeverityError,
			Eval: s.orderItemFactsColumn(func(r *domain.OrderItemFact) string { return r.OrderID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "product_id", Severity: domain.SeverityError,
			Eval: s.orderItemFactsColumn(func(r *domain.OrderItemFact) string { return r.ProductID }, missing)},
		{Model: model, Name: CheckNotNull, Column: "order_date", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderItemFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.OrderDate.IsZero() {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRelationships, Column: "product_id", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderItemFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				current, err := s.currentProductCounts(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if current[r.ProductID] != 1 {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRelationships, Column: "order_id", Severity: domain.SeverityError,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderItemFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				orders, err := s.orderFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				known := make(map[string]struct{}, len(orders))
				for _, o := range orders {
					known[o.OrderID] = struct{}{}
				}
				var failing int64
				for _, r := range rows {
					if _, ok := known[r.OrderID]; !ok {
						failing++
					}
				}
				return failing, nil
			}},
		{Model: model, Name: CheckRange, Column: "quantity", Severity: domain.SeverityWarn,
			Eval: func(ctx context.Context) (int64, error) {
				rows, err := s.orderItemFacts.GetAll(ctx)
				if err != nil {
					return 0, err
				}
				var failing int64
				for _, r := range rows {
					if r.Quantity < 1 {
						failing++
					}
				}
				return failing, nil
			}},
	}
}
