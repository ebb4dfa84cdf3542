package staging

import (
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
)

// NormalizeProduct turns one raw product row into a staging record or a
// rejection. The raw margin_percent column is ignored: the margin is
// recomputed from price and cost so staging never carries a stale figure.
func NormalizeProduct(raw source.Product, loadedAt time.Time, cfg Config) (*domain.StagingProduct, *Rejection) {
	productID := strings.TrimSpace(raw.ProductID)
	if productID == "" {
		return nil, rejected(domain.ModelStgProducts, "", "product_id", ReasonMissingKey)
	}

	retailPrice, reason := requiredFloat(raw.RetailPrice)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "retail_price", reason)
	}
	if retailPrice <= 0 {
		return nil, rejected(domain.ModelStgProducts, productID, "retail_price", ReasonNonPositive)
	}
	cost, reason := requiredFloat(raw.Cost)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "cost", reason)
	}
	if cost < 0 {
		return nil, rejected(domain.ModelStgProducts, productID, "cost", ReasonNegative)
	}

	createdAt, reason := requiredDate(raw.CreatedAt)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "created_at", reason)
	}

	stockQuantity, reason := requiredInt(raw.StockQuantity)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "stock_quantity", reason)
	}
	if stockQuantity < 0 {
		return nil, rejected(domain.ModelStgProducts, productID, "stock_quantity", ReasonNegative)
	}
	reorderPoint, reason := requiredInt(raw.ReorderPoint)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "reorder_point", reason)
	}

	avgRating, reason := requiredFloat(raw.AvgRating)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "avg_rating", reason)
	}
	totalReviews, reason := requiredInt(raw.TotalReviews)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "total_reviews", reason)
	}
	totalSales, reason := requiredInt(raw.TotalSales)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "total_sales", reason)
	}

	isActive, reason := requiredBool(raw.IsActive)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "is_active", reason)
	}
	isFeatured, reason := requiredBool(raw.IsFeatured)
	if reason != "" {
		return nil, rejected(domain.ModelStgProducts, productID, "is_featured", reason)
	}

	var weightKg *float64
	if trimmed := strings.TrimSpace(raw.WeightKg); trimmed != "" {
		w, ok := toFloat(trimmed)
		if !ok {
			return nil, rejected(domain.ModelStgProducts, productID, "weight_kg", ReasonBadNumber)
		}
		weightKg = &w
	}

	length, width, height := ParseDimensions(toOptionalString(raw.DimensionsCm))

	categoryL1 := strings.TrimSpace(raw.CategoryL1)
	categoryL2 := strings.TrimSpace(raw.CategoryL2)

	return &domain.StagingProduct{
		ProductID:      productID,
		SKU:            strings.ToUpper(strings.TrimSpace(raw.SKU)),
		ProductName:    strings.TrimSpace(raw.ProductName),
		Brand:          strings.TrimSpace(raw.Brand),
		CategoryL1:     categoryL1,
		CategoryL2:     categoryL2,
		CategoryPath:   CategoryPath(categoryL1, categoryL2),
		RetailPrice:    retailPrice,
		Cost:           cost,
		Profit:         round2(retailPrice - cost),
		MarginPercent:  MarginPercent(retailPrice, cost),
		PriceTier:      PriceTier(cfg.PriceTiers, retailPrice),
		WeightKg:       weightKg,
		LengthCm:       length,
		WidthCm:        width,
		HeightCm:       height,
		VolumeCm3:      Volume(length, width, height),
		Color:          toOptionalString(raw.Color),
		Size:           toOptionalString(raw.Size),
		StockQuantity:  stockQuantity,
		ReorderPoint:   reorderPoint,
		NeedsReorder:   stockQuantity <= reorderPoint,
		Supplier:       strings.TrimSpace(raw.Supplier),
		LifecycleStage: lifecycleTable.canonical(raw.LifecycleStage),
		IsActive:       isActive,
		IsFeatured:     isFeatured,
		CreatedAt:      createdAt,
		AvgRating:      avgRating,
		TotalReviews:   totalReviews,
		TotalSales:     totalSales,
		LoadedAt:       loadedAt,
	}, nil
}
