package staging

import (
	"strings"

	"ecom-warehouse/internal/domain"
)

// lookup maps case-folded raw values to canonical values. Values outside
// the table resolve to the declared fallback sentinel; canonicalization
// never fails a row.
type lookup struct {
	values   map[string]string
	fallback string
}

func newLookup(fallback string, canonical ...string) lookup {
	m := make(map[string]string, len(canonical))
	for _, v := range canonical {
		m[v] = v
	}
	return lookup{values: m, fallback: fallback}
}

// canonical trims and case-folds raw, then resolves it through the table.
func (l lookup) canonical(raw string) string {
	folded := strings.ToLower(strings.TrimSpace(raw))
	if v, ok := l.values[folded]; ok {
		return v
	}
	return l.fallback
}

var (
	genderTable    = newLookup(domain.EnumUnknown, "male", "female", domain.EnumOther)
	segmentTable   = newLookup(domain.EnumUnknown, "vip", "regular", "new")
	contactTable   = newLookup(domain.EnumUnknown, "email", "phone", "sms")
	creditTable    = newLookup(domain.EnumUnknown, "excellent", "good", "fair", "poor")
	lifecycleTable = newLookup(domain.EnumUnknown, "new", "growth", "mature", "decline")
	deviceTable    = newLookup(domain.EnumUnknown, "desktop", "mobile", "tablet")
	statusTable    = newLookup(domain.EnumUnknown,
		domain.StatusPending, domain.StatusProcessing, domain.StatusShipped,
		domain.StatusDelivered, domain.StatusCancelled, domain.StatusReturned)
	paymentTable = newLookup(domain.EnumOther,
		"credit_card", "debit_card", "paypal", "apple_pay", "google_pay", "bank_transfer")
)
