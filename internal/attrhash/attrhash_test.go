package attrhash

import (
	"testing"
	"time"

	"ecom-warehouse/internal/domain"
)

func baseCustomer() *domain.StagingCustomer {
	birth := time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC)
	domainPart := "example.com"
	return &domain.StagingCustomer{
		CustomerID:         "CUST_00000001",
		FirstName:          "Anna",
		LastName:           "Keller",
		FullName:           "Anna Keller",
		Email:              "anna.keller@example.com",
		EmailDomain:        &domainPart,
		Phone:              "+49-30-1234567",
		BirthDate:          &birth,
		Gender:             "female",
		AddressLine1:       "Hauptstr. 5",
		City:               "Berlin",
		State:              "BE",
		PostalCode:         "10115",
		Country:            "Germany",
		CustomerSegment:    "regular",
		AcquisitionChannel: "organic",
		LifetimeValue:      812.40,
		ValueBand:          domain.BandMediumValue,
		CreditScoreRange:   "good",
		IsActive:           true,
		EmailSubscribed:    true,
		PreferredContact:   "email",
		LoadedAt:           time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestCustomer_Deterministic(t *testing.T) {
	c := baseCustomer()

	first := Customer(c)
	for i := 0; i < 10; i++ {
		if got := Customer(c); got != first {
			t.Fatalf("digest not deterministic: %s != %s", got, first)
		}
	}
	if first == "" {
		t.Fatal("digest is empty")
	}
}

func TestCustomer_TrackedAttributeChanges(t *testing.T) {
	base := Customer(baseCustomer())

	tests := []struct {
		name   string
		mutate func(*domain.StagingCustomer)
	}{
		{"email", func(c *domain.StagingCustomer) { c.Email = "anna.k@example.org" }},
		{"city", func(c *domain.StagingCustomer) { c.City = "Hamburg" }},
		{"segment", func(c *domain.StagingCustomer) { c.CustomerSegment = "vip" }},
		{"value band", func(c *domain.StagingCustomer) { c.ValueBand = domain.BandHighValue }},
		{"is_active", func(c *domain.StagingCustomer) { c.IsActive = false }},
		{"birth date nil", func(c *domain.StagingCustomer) { c.BirthDate = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCustomer()
			tt.mutate(c)
			if got := Customer(c); got == base {
				t.Errorf("changing %s did not change the digest", tt.name)
			}
		})
	}
}

func TestCustomer_UntrackedFieldsIgnored(t *testing.T) {
	base := Customer(baseCustomer())

	c := baseCustomer()
	c.LoadedAt = c.LoadedAt.Add(48 * time.Hour)
	c.TenureDays = 999
	c.RecencyBand = domain.BandDormant
	c.LifetimeValue = 99999
	other := "elsewhere.net" // re-derivable from email, excluded
	c.EmailDomain = &other

	if got := Customer(c); got != base {
		t.Errorf("untracked fields changed the digest: %s != %s", got, base)
	}
}

func TestProduct_TrackedAttributeChanges(t *testing.T) {
	weight := 1.25
	p := &domain.StagingProduct{
		ProductID:      "PROD_00000042",
		SKU:            "SKU-AB12-0042",
		ProductName:    "Steel Water Bottle",
		Brand:          "Northpeak",
		CategoryL1:     "Sports",
		CategoryL2:     "Hydration",
		CategoryPath:   "Sports > Hydration",
		RetailPrice:    24.99,
		Cost:           9.10,
		PriceTier:      domain.TierBudget,
		WeightKg:       &weight,
		Supplier:       "Nordic Supply GmbH",
		LifecycleStage: "mature",
		IsActive:       true,
		StockQuantity:  310,
		AvgRating:      4.4,
	}

	base := Product(p)

	p.RetailPrice = 25.00
	p.PriceTier = domain.TierStandard
	if got := Product(p); got == base {
		t.Error("price change did not change the digest")
	}

	p.RetailPrice = 24.99
	p.PriceTier = domain.TierBudget
	p.StockQuantity = 5
	p.AvgRating = 1.0
	p.TotalSales = 77777
	if got := Product(p); got != base {
		t.Errorf("volatile measures changed the digest: %s != %s", got, base)
	}
}
