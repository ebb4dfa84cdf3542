package staging

import (
	"testing"

	"ecom-warehouse/internal/domain"
)

func TestLookup_Canonical(t *testing.T) {
	tests := []struct {
		name  string
		table lookup
		raw   string
		want  string
	}{
		{"exact match", statusTable, "shipped", "shipped"},
		{"case folded", statusTable, "SHIPPED", "shipped"},
		{"trimmed and folded", statusTable, "  Delivered ", "delivered"},
		{"unmatched maps to sentinel", statusTable, "teleported", domain.EnumUnknown},
		{"empty maps to sentinel", statusTable, "", domain.EnumUnknown},
		{"payment fallback is other", paymentTable, "bitcoin", domain.EnumOther},
		{"payment known value", paymentTable, "Apple_Pay", "apple_pay"},
		{"gender other stays other", genderTable, "Other", domain.EnumOther},
		{"segment vip folds", segmentTable, "VIP", "vip"},
		{"device tablet", deviceTable, "Tablet", "tablet"},
		{"credit band", creditTable, "Excellent", "excellent"},
		{"lifecycle", lifecycleTable, "Decline", "decline"},
		{"contact", contactTable, "SMS", "sms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.table.canonical(tt.raw); got != tt.want {
				t.Errorf("canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLookup_SentinelNeverFailsRow(t *testing.T) {
	// Every table resolves arbitrary garbage to its sentinel.
	tables := map[string]lookup{
		"gender":    genderTable,
		"segment":   segmentTable,
		"contact":   contactTable,
		"credit":    creditTable,
		"lifecycle": lifecycleTable,
		"device":    deviceTable,
		"status":    statusTable,
		"payment":   paymentTable,
	}

	for name, table := range tables {
		got := table.canonical("\t ~~garbage~~ ")
		if got != table.fallback {
			t.Errorf("%s: canonical(garbage) = %q, want sentinel %q", name, got, table.fallback)
		}
	}
}
