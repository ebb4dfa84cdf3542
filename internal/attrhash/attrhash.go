package attrhash

import (
	"crypto/sha256"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"ecom-warehouse/internal/domain"
)

// Customer computes the change-detection digest for a customer dimension
// version from its staging record.
// Formula: base58(SHA256(customer_id|full_name|email|phone|birth_date|gender|
// address_line1|city|state|postal_code|country|customer_segment|
// acquisition_channel|value_band|credit_score_range|is_active|
// email_subscribed|preferred_contact))
// Only tracked attributes participate. Load metadata, time-anchored
// derivations (tenure, age, recency) and fields re-derivable from tracked
// ones (email_domain) are excluded so re-derivation never changes the digest.
func Customer(c *domain.StagingCustomer) string {
	return digest([]string{
		c.CustomerID,
		c.FullName,
		c.Email,
		c.Phone,
		nullDate(c.BirthDate),
		c.Gender,
		c.AddressLine1,
		c.City,
		c.State,
		c.PostalCode,
		c.Country,
		c.CustomerSegment,
		c.AcquisitionChannel,
		c.ValueBand,
		c.CreditScoreRange,
		boolean(c.IsActive),
		boolean(c.EmailSubscribed),
		c.PreferredContact,
	})
}

// Product computes the change-detection digest for a product dimension
// version from its staging record.
// Formula: base58(SHA256(product_id|sku|product_name|brand|category_l1|
// category_l2|retail_price|cost|price_tier|weight_kg|color|size|supplier|
// lifecycle_stage|is_active|is_featured))
// Inventory and engagement measures are excluded: they churn on every
// extract and must not version the dimension. category_path and
// margin_percent are re-derivable from tracked fields and excluded too.
func Product(p *domain.StagingProduct) string {
	return digest([]string{
		p.ProductID,
		p.SKU,
		p.ProductName,
		p.Brand,
		p.CategoryL1,
		p.CategoryL2,
		float(p.RetailPrice),
		float(p.Cost),
		p.PriceTier,
		nullFloat(p.WeightKg),
		nullString(p.Color),
		nullString(p.Size),
		p.Supplier,
		p.LifecycleStage,
		boolean(p.IsActive),
		boolean(p.IsFeatured),
	})
}

func digest(fields []string) string {
	hash := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return base58.Encode(hash[:])
}

func float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func nullFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return float(*f)
}

func nullString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func boolean(b bool) string {
	return strconv.FormatBool(b)
}
