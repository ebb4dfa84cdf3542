package domain

// Canonical values for classification fields. Raw extract values are
// case-folded and mapped onto these sets during staging; anything outside a
// set becomes the declared sentinel instead of failing the row.
const (
	// Sentinels.
	EnumUnknown = "unknown"
	EnumOther   = "other"

	// Order status.
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusReturned   = "returned"

	// Price tiers, ascending.
	TierBudget   = "budget"
	TierStandard = "standard"
	TierPremium  = "premium"
	TierLuxury   = "luxury"

	// Customer value bands (monetary).
	BandHighValue   = "high_value"
	BandMediumValue = "medium_value"
	BandLowValue    = "low_value"

	// Customer recency bands.
	BandActive       = "active"
	BandCooling      = "cooling"
	BandAtRisk       = "at_risk"
	BandDormant      = "dormant"
	BandNeverOrdered = "never_ordered"
)

// Accepted value sets for the quality validator. Sentinels are accepted:
// they are legitimate canonical outcomes, not data defects.
var (
	AcceptedGenders          = []string{"male", "female", EnumOther, EnumUnknown}
	AcceptedSegments         = []string{"vip", "regular", "new", EnumUnknown}
	AcceptedContacts         = []string{"email", "phone", "sms", EnumUnknown}
	AcceptedCreditRanges     = []string{"excellent", "good", "fair", "poor", EnumUnknown}
	AcceptedLifecycleStages  = []string{"new", "growth", "mature", "decline", EnumUnknown}
	AcceptedOrderStatuses    = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned, EnumUnknown}
	AcceptedPaymentMethods   = []string{"credit_card", "debit_card", "paypal", "apple_pay", "google_pay", "bank_transfer", EnumOther}
	AcceptedDeviceTypes      = []string{"desktop", "mobile", "tablet", EnumUnknown}
	AcceptedPriceTiers       = []string{TierBudget, TierStandard, TierPremium, TierLuxury}
	AcceptedValueBands       = []string{BandHighValue, BandMediumValue, BandLowValue}
	AcceptedRecencyBands     = []string{BandActive, BandCooling, BandAtRisk, BandDormant, BandNeverOrdered}
)
