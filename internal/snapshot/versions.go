package snapshot

import (
	"time"

	"ecom-warehouse/internal/attrhash"
	"ecom-warehouse/internal/domain"
)

// customerVersionFrom projects the tracked attribute subset of a staging row
// into a dimension version opening at validFrom. The surrogate key and the
// open/closed bookkeeping are assigned by the store.
func customerVersionFrom(s *domain.StagingCustomer, validFrom time.Time) *domain.CustomerVersion {
	return &domain.CustomerVersion{
		CustomerID:         s.CustomerID,
		FullName:           s.FullName,
		Email:              s.Email,
		EmailDomain:        s.EmailDomain,
		Phone:              s.Phone,
		BirthDate:          s.BirthDate,
		Gender:             s.Gender,
		AddressLine1:       s.AddressLine1,
		City:               s.City,
		State:              s.State,
		PostalCode:         s.PostalCode,
		Country:            s.Country,
		CustomerSegment:    s.CustomerSegment,
		AcquisitionChannel: s.AcquisitionChannel,
		ValueBand:          s.ValueBand,
		CreditScoreRange:   s.CreditScoreRange,
		IsActive:           s.IsActive,
		EmailSubscribed:    s.EmailSubscribed,
		PreferredContact:   s.PreferredContact,
		AttrHash:           attrhash.Customer(s),
		ValidFrom:          validFrom,
	}
}

// productVersionFrom projects the tracked attribute subset of a staging row
// into a dimension version opening at validFrom. Volatile measures (stock,
// ratings, sales) stay behind in staging.
func productVersionFrom(p *domain.StagingProduct, validFrom time.Time) *domain.ProductVersion {
	return &domain.ProductVersion{
		ProductID:      p.ProductID,
		SKU:            p.SKU,
		ProductName:    p.ProductName,
		Brand:          p.Brand,
		CategoryL1:     p.CategoryL1,
		CategoryL2:     p.CategoryL2,
		CategoryPath:   p.CategoryPath,
		RetailPrice:    p.RetailPrice,
		Cost:           p.Cost,
		MarginPercent:  p.MarginPercent,
		PriceTier:      p.PriceTier,
		WeightKg:       p.WeightKg,
		Color:          p.Color,
		Size:           p.Size,
		Supplier:       p.Supplier,
		LifecycleStage: p.LifecycleStage,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		AttrHash:       attrhash.Product(p),
		ValidFrom:      validFrom,
	}
}
