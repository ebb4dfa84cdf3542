package merge

import (
	"time"

	"ecom-warehouse/internal/domain"
)

// orderFactFrom projects a staged order onto the fact grain. Measures are
// carried as staged; loadedAt records when this merge touched the row.
func orderFactFrom(o *domain.StagingOrder, loadedAt time.Time) *domain.OrderFact {
	return &domain.OrderFact{
		OrderID:        o.OrderID,
		CustomerID:     o.CustomerID,
		OrderDate:      o.OrderDate,
		OrderStatus:    o.OrderStatus,
		PaymentMethod:  o.PaymentMethod,
		DeviceType:     o.DeviceType,
		Currency:       o.Currency,
		IsFirstOrder:   o.IsFirstOrder,
		TotalItems:     o.TotalItems,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		ShippingCost:   o.ShippingCost,
		TotalAmount:    o.TotalAmount,
		NetRevenue:     o.NetRevenue,
		LoadedAt:       loadedAt,
	}
}

// orderItemFactFrom projects a staged order line onto the fact grain.
// OrderDate and CustomerID come from the staged parent order.
func orderItemFactFrom(it *domain.StagingOrderItem, parent *domain.StagingOrder, loadedAt time.Time) *domain.OrderItemFact {
	return &domain.OrderItemFact{
		OrderItemID:        it.OrderItemID,
		OrderID:            it.OrderID,
		ProductID:          it.ProductID,
		CustomerID:         parent.CustomerID,
		OrderDate:          parent.OrderDate,
		Quantity:           it.Quantity,
		UnitPrice:          it.UnitPrice,
		EffectiveUnitPrice: it.EffectiveUnitPrice,
		IsDiscounted:       it.IsDiscounted,
		LineTotal:          it.LineTotal,
		CostPerUnit:        it.CostPerUnit,
		LineCost:           it.LineCost,
		LineProfit:         it.LineProfit,
		LineMarginPercent:  it.LineMarginPercent,
		LoadedAt:           loadedAt,
	}
}
