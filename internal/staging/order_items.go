package staging

import (
	"math"
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
)

// NormalizeOrderItem turns one raw order line into a staging record or a
// rejection. A quantity of zero or a non-positive unit price drops the row.
func NormalizeOrderItem(raw source.OrderItem, loadedAt time.Time, cfg Config) (*domain.StagingOrderItem, *Rejection) {
	orderItemID := strings.TrimSpace(raw.OrderItemID)
	if orderItemID == "" {
		return nil, rejected(domain.ModelStgOrderItems, "", "order_item_id", ReasonMissingKey)
	}
	orderID := strings.TrimSpace(raw.OrderID)
	if orderID == "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "order_id", ReasonMissingRequired)
	}
	productID := strings.TrimSpace(raw.ProductID)
	if productID == "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "product_id", ReasonMissingRequired)
	}

	quantity, reason := requiredInt(raw.Quantity)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "quantity", reason)
	}
	if quantity <= 0 {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "quantity", ReasonNonPositive)
	}

	unitPrice, reason := requiredFloat(raw.UnitPrice)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "unit_price", reason)
	}
	if unitPrice <= 0 {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "unit_price", ReasonNonPositive)
	}

	lineTotal, reason := requiredFloat(raw.LineTotal)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "line_total", reason)
	}
	if lineTotal < 0 {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "line_total", ReasonNegative)
	}
	costPerUnit, reason := requiredFloat(raw.CostPerUnit)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "cost_per_unit", reason)
	}
	if costPerUnit < 0 {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "cost_per_unit", ReasonNegative)
	}
	lineCost, reason := requiredFloat(raw.LineCost)
	if reason != "" {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "line_cost", reason)
	}
	if lineCost < 0 {
		return nil, rejected(domain.ModelStgOrderItems, orderItemID, "line_cost", ReasonNegative)
	}

	effective := EffectiveUnitPrice(lineTotal, quantity)

	return &domain.StagingOrderItem{
		OrderItemID:        orderItemID,
		OrderID:            orderID,
		ProductID:          productID,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		LineTotal:          lineTotal,
		EffectiveUnitPrice: effective,
		IsDiscounted:       math.Abs(unitPrice-effective) >= cfg.DiscountEpsilon,
		CostPerUnit:        costPerUnit,
		LineCost:           lineCost,
		LineProfit:         round2(lineTotal - lineCost),
		LineMarginPercent:  MarginPercent(lineTotal, lineCost),
		LoadedAt:           loadedAt,
	}, nil
}
