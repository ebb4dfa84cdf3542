package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// header resolves contracted column names to record indices.
type header struct {
	idx     map[string]int
	columns []string
}

func readHeader(r *csv.Reader, required []string) (header, error) {
	record, err := r.Read()
	if err != nil {
		return header{}, fmt.Errorf("read header: %w", err)
	}

	h := header{idx: make(map[string]int, len(record)), columns: make([]string, 0, len(record))}
	for i, name := range record {
		name = strings.TrimSpace(name)
		h.idx[name] = i
		h.columns = append(h.columns, name)
	}

	var missing []string
	for _, col := range required {
		if _, ok := h.idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return header{}, fmt.Errorf("source contract violation: missing columns %s", strings.Join(missing, ", "))
	}
	return h, nil
}

func (h header) get(record []string, col string) string {
	i := h.idx[col]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func open(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open extract: %w", err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row arity is validated through the header map
	return f, r, nil
}

// ReadCustomers reads a customers extract. Returns the rows and the
// observed column set in header order.
func ReadCustomers(path string) ([]Customer, []string, error) {
	f, r, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := readHeader(r, CustomerColumns)
	if err != nil {
		return nil, nil, fmt.Errorf("customers %s: %w", path, err)
	}

	var rows []Customer
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("customers %s: %w", path, err)
		}
		rows = append(rows, Customer{
			CustomerID:         h.get(record, "customer_id"),
			FirstName:          h.get(record, "first_name"),
			LastName:           h.get(record, "last_name"),
			Email:              h.get(record, "email"),
			Phone:              h.get(record, "phone"),
			BirthDate:          h.get(record, "birth_date"),
			Gender:             h.get(record, "gender"),
			AddressLine1:       h.get(record, "address_line1"),
			City:               h.get(record, "city"),
			State:              h.get(record, "state"),
			PostalCode:         h.get(record, "postal_code"),
			Country:            h.get(record, "country"),
			CustomerSegment:    h.get(record, "customer_segment"),
			AcquisitionChannel: h.get(record, "acquisition_channel"),
			LifetimeValue:      h.get(record, "lifetime_value"),
			CreatedAt:          h.get(record, "created_at"),
			UpdatedAt:          h.get(record, "updated_at"),
			LastOrderDate:      h.get(record, "last_order_date"),
			IsActive:           h.get(record, "is_active"),
			EmailSubscribed:    h.get(record, "email_subscribed"),
			PreferredContact:   h.get(record, "preferred_contact"),
			CreditScoreRange:   h.get(record, "credit_score_range"),
		})
	}
	return rows, h.columns, nil
}

// ReadProducts reads a products extract.
func ReadProducts(path string) ([]Product, []string, error) {
	f, r, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := readHeader(r, ProductColumns)
	if err != nil {
		return nil, nil, fmt.Errorf("products %s: %w", path, err)
	}

	var rows []Product
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("products %s: %w", path, err)
		}
		rows = append(rows, Product{
			ProductID:      h.get(record, "product_id"),
			SKU:            h.get(record, "sku"),
			ProductName:    h.get(record, "product_name"),
			Brand:          h.get(record, "brand"),
			CategoryL1:     h.get(record, "category_l1"),
			CategoryL2:     h.get(record, "category_l2"),
			RetailPrice:    h.get(record, "retail_price"),
			Cost:           h.get(record, "cost"),
			MarginPercent:  h.get(record, "margin_percent"),
			WeightKg:       h.get(record, "weight_kg"),
			DimensionsCm:   h.get(record, "dimensions_cm"),
			Color:          h.get(record, "color"),
			Size:           h.get(record, "size"),
			StockQuantity:  h.get(record, "stock_quantity"),
			ReorderPoint:   h.get(record, "reorder_point"),
			Supplier:       h.get(record, "supplier"),
			LifecycleStage: h.get(record, "lifecycle_stage"),
			IsActive:       h.get(record, "is_active"),
			IsFeatured:     h.get(record, "is_featured"),
			CreatedAt:      h.get(record, "created_at"),
			AvgRating:      h.get(record, "avg_rating"),
			TotalReviews:   h.get(record, "total_reviews"),
			TotalSales:     h.get(record, "total_sales"),
		})
	}
	return rows, h.columns, nil
}

// ReadOrders reads an orders extract.
func ReadOrders(path string) ([]Order, []string, error) {
	f, r, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := readHeader(r, OrderColumns)
	if err != nil {
		return nil, nil, fmt.Errorf("orders %s: %w", path, err)
	}

	var rows []Order
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("orders %s: %w", path, err)
		}
		rows = append(rows, Order{
			OrderID:            h.get(record, "order_id"),
			CustomerID:         h.get(record, "customer_id"),
			OrderDate:          h.get(record, "order_date"),
			OrderStatus:        h.get(record, "order_status"),
			PaymentMethod:      h.get(record, "payment_method"),
			TotalItems:         h.get(record, "total_items"),
			Subtotal:           h.get(record, "subtotal"),
			DiscountAmount:     h.get(record, "discount_amount"),
			TaxAmount:          h.get(record, "tax_amount"),
			ShippingCost:       h.get(record, "shipping_cost"),
			TotalAmount:        h.get(record, "total_amount"),
			Currency:           h.get(record, "currency"),
			AcquisitionChannel: h.get(record, "acquisition_channel"),
			DeviceType:         h.get(record, "device_type"),
			IsFirstOrder:       h.get(record, "is_first_order"),
			CreatedAt:          h.get(record, "created_at"),
			UpdatedAt:          h.get(record, "updated_at"),
		})
	}
	return rows, h.columns, nil
}

// ReadOrderItems reads an order_items extract.
func ReadOrderItems(path string) ([]OrderItem, []string, error) {
	f, r, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, err := readHeader(r, OrderItemColumns)
	if err != nil {
		return nil, nil, fmt.Errorf("order_items %s: %w", path, err)
	}

	var rows []OrderItem
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("order_items %s: %w", path, err)
		}
		rows = append(rows, OrderItem{
			OrderItemID: h.get(record, "order_item_id"),
			OrderID:     h.get(record, "order_id"),
			ProductID:   h.get(record, "product_id"),
			Quantity:    h.get(record, "quantity"),
			UnitPrice:   h.get(record, "unit_price"),
			LineTotal:   h.get(record, "line_total"),
			CostPerUnit: h.get(record, "cost_per_unit"),
			LineCost:    h.get(record, "line_cost"),
		})
	}
	return rows, h.columns, nil
}
