package staging

import (
	"math"
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
)

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MarginPercent computes profit as a percentage of revenue.
//
// Formulas:
//   - profit = revenue - cost
//   - margin_percent = profit / revenue * 100, rounded to 2 decimal places
//
// A zero revenue leaves the margin undefined: the result is nil, never an
// error.
func MarginPercent(revenue, cost float64) *float64 {
	if revenue == 0 {
		return nil
	}
	m := round2((revenue - cost) / revenue * 100)
	return &m
}

// EffectiveUnitPrice is the actually charged per-unit price.
// Formula: line_total / quantity, rounded to 2 decimal places.
// Quantity is validated positive before derivation runs.
func EffectiveUnitPrice(lineTotal float64, quantity int64) float64 {
	return round2(lineTotal / float64(quantity))
}

// PriceTier assigns the first band whose Below bound exceeds the price.
// Bands are evaluated in ascending order; the final band is a catch-all.
func PriceTier(bands []TierBand, price float64) string {
	for _, b := range bands {
		if price < b.Below {
			return b.Tier
		}
	}
	// Unreachable with a well-formed band list; the catch-all has Below=+Inf.
	return bands[len(bands)-1].Tier
}

// ParseDimensions splits an "LxWxH" centimeter string into its parts.
// A nil input, a missing separator, a wrong part count, or a non-numeric
// part yields all-nil results rather than an error.
func ParseDimensions(dims *string) (length, width, height *float64) {
	if dims == nil {
		return nil, nil, nil
	}
	parts := strings.Split(strings.TrimSpace(*dims), "x")
	if len(parts) != 3 {
		return nil, nil, nil
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, ok := toFloat(p)
		if !ok {
			return nil, nil, nil
		}
		vals[i] = v
	}
	return &vals[0], &vals[1], &vals[2]
}

// Volume multiplies the parsed dimensions. Any missing part yields nil.
func Volume(length, width, height *float64) *float64 {
	if length == nil || width == nil || height == nil {
		return nil
	}
	v := round2(*length * *width * *height)
	return &v
}

// ValueBand classifies a customer by lifetime value.
func ValueBand(cfg Config, lifetimeValue float64) string {
	switch {
	case lifetimeValue >= cfg.HighValueAt:
		return domain.BandHighValue
	case lifetimeValue >= cfg.MediumValueAt:
		return domain.BandMediumValue
	default:
		return domain.BandLowValue
	}
}

// RecencyBand classifies a customer by time since the last order, measured
// at load time. A customer without orders is never_ordered.
func RecencyBand(cfg Config, lastOrder *time.Time, asOf time.Time) string {
	if lastOrder == nil {
		return domain.BandNeverOrdered
	}
	age := asOf.Sub(*lastOrder)
	switch {
	case age <= cfg.ActiveWithin:
		return domain.BandActive
	case age <= cfg.CoolingWithin:
		return domain.BandCooling
	case age <= cfg.AtRiskWithin:
		return domain.BandAtRisk
	default:
		return domain.BandDormant
	}
}

// TenureDays is the whole number of days between account creation and load
// time. Negative tenures (clock skew in the source) clamp to zero.
func TenureDays(createdAt, asOf time.Time) int64 {
	days := int64(asOf.Sub(createdAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AgeYears is the customer's age in whole years at load time, nil without
// a birth date.
func AgeYears(birthDate *time.Time, asOf time.Time) *int64 {
	if birthDate == nil {
		return nil
	}
	years := int64(asOf.Year() - birthDate.Year())
	anniversary := time.Date(asOf.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	if asOf.Before(anniversary) {
		years--
	}
	if years < 0 {
		years = 0
	}
	aged := years
	return &aged
}

// EmailDomain extracts the part after the last '@'. Absent separator means
// no derivable domain; the row is kept with a nil domain.
func EmailDomain(email string) *string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return nil
	}
	d := email[at+1:]
	return &d
}

// FullName joins name parts with a single separating space, tolerating
// empty parts.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// CategoryPath joins the two category levels with the fixed " > " delimiter.
func CategoryPath(l1, l2 string) string {
	return l1 + " > " + l2
}
