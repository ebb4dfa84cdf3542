package staging

import (
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
)

// NormalizeOrder turns one raw order row into a staging record or a
// rejection.
func NormalizeOrder(raw source.Order, loadedAt time.Time, cfg Config) (*domain.StagingOrder, *Rejection) {
	orderID := strings.TrimSpace(raw.OrderID)
	if orderID == "" {
		return nil, rejected(domain.ModelStgOrders, "", "order_id", ReasonMissingKey)
	}
	customerID := strings.TrimSpace(raw.CustomerID)
	if customerID == "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "customer_id", ReasonMissingRequired)
	}

	orderDate, reason := requiredDate(raw.OrderDate)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "order_date", reason)
	}
	createdAt, reason := requiredDate(raw.CreatedAt)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "created_at", reason)
	}
	updatedAt, reason := requiredDate(raw.UpdatedAt)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "updated_at", reason)
	}

	totalItems, reason := requiredInt(raw.TotalItems)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "total_items", reason)
	}
	if totalItems <= 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "total_items", ReasonNonPositive)
	}

	subtotal, reason := requiredFloat(raw.Subtotal)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "subtotal", reason)
	}
	if subtotal <= 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "subtotal", ReasonNonPositive)
	}
	discountAmount, reason := requiredFloat(raw.DiscountAmount)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "discount_amount", reason)
	}
	if discountAmount < 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "discount_amount", ReasonNegative)
	}
	taxAmount, reason := requiredFloat(raw.TaxAmount)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "tax_amount", reason)
	}
	if taxAmount < 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "tax_amount", ReasonNegative)
	}
	shippingCost, reason := requiredFloat(raw.ShippingCost)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "shipping_cost", reason)
	}
	if shippingCost < 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "shipping_cost", ReasonNegative)
	}
	totalAmount, reason := requiredFloat(raw.TotalAmount)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "total_amount", reason)
	}
	if totalAmount <= 0 {
		return nil, rejected(domain.ModelStgOrders, orderID, "total_amount", ReasonNonPositive)
	}

	isFirstOrder, reason := requiredBool(raw.IsFirstOrder)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrders, orderID, "is_first_order", reason)
	}

	status := statusTable.canonical(raw.OrderStatus)

	return &domain.StagingOrder{
		OrderID:               orderID,
		CustomerID:            customerID,
		OrderDate:             orderDate,
		OrderStatus:           status,
		PaymentMethod:         paymentTable.canonical(raw.PaymentMethod),
		TotalItems:            totalItems,
		Subtotal:              subtotal,
		DiscountAmount:        discountAmount,
		TaxAmount:             taxAmount,
		ShippingCost:          shippingCost,
		TotalAmount:           totalAmount,
		Currency:              strings.ToUpper(strings.TrimSpace(raw.Currency)),
		AcquisitionChannel:    strings.ToLower(strings.TrimSpace(raw.AcquisitionChannel)),
		DeviceType:            deviceTable.canonical(raw.DeviceType),
		IsFirstOrder:          isFirstOrder,
		HasDiscount:           discountAmount > 0,
		NetRevenue:            round2(subtotal - discountAmount),
		AverageItemValue:      round2(totalAmount / float64(totalItems)),
		IsCompleted:           status == domain.StatusDelivered,
		IsReturnedOrCancelled: status == domain.StatusCancelled || status == domain.StatusReturned,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
		LoadedAt:              loadedAt,
	}, nil
}
