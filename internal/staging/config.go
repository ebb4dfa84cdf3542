package staging

import (
	"math"
	"time"

	"ecom-warehouse/internal/domain"
)

// TierBand is one ascending price band. A price belongs to the first band
// whose Below bound is strictly greater than the price, so bounds are
// exclusive on the lower band and inclusive on the upper one.
type TierBand struct {
	Tier  string
	Below float64
}

// Config carries the explicit thresholds used by normalization and
// derivation. Every component receives it at construction time.
type Config struct {
	// PriceTiers are evaluated in ascending order, first match wins.
	// The final band has Below = +Inf and catches everything else.
	PriceTiers []TierBand

	// Lifetime-value thresholds for the customer monetary band.
	HighValueAt   float64
	MediumValueAt float64

	// Recency windows measured against load time.
	ActiveWithin  time.Duration
	CoolingWithin time.Duration
	AtRiskWithin  time.Duration

	// Minimum gap between unit price and effective unit price that marks
	// an order line as discounted.
	DiscountEpsilon float64
}

// DefaultConfig returns the standard warehouse thresholds.
func DefaultConfig() Config {
	return Config{
		PriceTiers: []TierBand{
			{Tier: domain.TierBudget, Below: 25},
			{Tier: domain.TierStandard, Below: 100},
			{Tier: domain.TierPremium, Below: 500},
			{Tier: domain.TierLuxury, Below: math.Inf(1)},
		},
		HighValueAt:     2000,
		MediumValueAt:   500,
		ActiveWithin:    30 * 24 * time.Hour,
		CoolingWithin:   90 * 24 * time.Hour,
		AtRiskWithin:    180 * 24 * time.Hour,
		DiscountEpsilon: 0.005,
	}
}
