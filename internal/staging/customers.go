package staging

import (
	"strings"
	"time"

	"ecom-warehouse/internal/domain"
	"ecom-warehouse/internal/source"
)

// NormalizeCustomer turns one raw customer row into a staging record or a
// rejection. Purely row-local.
func NormalizeCustomer(raw source.Customer, loadedAt time.Time, cfg Config) (*domain.StagingCustomer, *Rejection) {
	customerID := strings.TrimSpace(raw.CustomerID)
	if customerID == "" {
		return nil, rejected(domain.ModelStgCustomers, "", "customer_id", ReasonMissingKey)
	}

	createdAt, reason := requiredDate(raw.CreatedAt)
	if reason != "" {
		return nil, rejected(domain.ModelStgCustomers, customerID, "created_at", reason)
	}
	updatedAt, reason := requiredDate(raw.UpdatedAt)
	if reason != "" {
		return nil, rejected(domain.ModelStgCustomers, customerID, "updated_at", reason)
	}
	birthDate, ok := toOptionalDate(raw.BirthDate)
	if !ok {
		return nil, rejected(domain.ModelStgCustomers, customerID, "birth_date", ReasonBadDate)
	}
	lastOrderDate, ok := toOptionalDate(raw.LastOrderDate)
	if !ok {
		return nil, rejected(domain.ModelStgCustomers, customerID, "last_order_date", ReasonBadDate)
	}

	lifetimeValue, reason := requiredFloat(raw.LifetimeValue)
	if reason != "" {
		return nil, rejected(domain.ModelStgCustomers, customerID, "lifetime_value", reason)
	}
	if lifetimeValue < 0 {
		return nil, rejected(domain.ModelStgCustomers, customerID, "lifetime_value", ReasonNegative)
	}

	isActive, reason := requiredBool(raw.IsActive)
	if reason != "" {
		return nil, rejected(domain.ModelStgCustomers, customerID, "is_active", reason)
	}
	emailSubscribed, reason := requiredBool(raw.EmailSubscribed)
	if reason != "" {
		return nil, rejected(domain.ModelStgCustomers, customerID, "email_subscribed", reason)
	}

	firstName := strings.TrimSpace(raw.FirstName)
	lastName := strings.TrimSpace(raw.LastName)
	email := strings.ToLower(strings.TrimSpace(raw.Email))

	return &domain.StagingCustomer{
		CustomerID:         customerID,
		FirstName:          firstName,
		LastName:           lastName,
		FullName:           FullName(firstName, lastName),
		Email:              email,
		EmailDomain:        EmailDomain(email),
		Phone:              strings.TrimSpace(raw.Phone),
		BirthDate:          birthDate,
		AgeYears:           AgeYears(birthDate, loadedAt),
		Gender:             genderTable.canonical(raw.Gender),
		AddressLine1:       strings.TrimSpace(raw.AddressLine1),
		City:               strings.TrimSpace(raw.City),
		State:              strings.TrimSpace(raw.State),
		PostalCode:         strings.TrimSpace(raw.PostalCode),
		Country:            strings.TrimSpace(raw.Country),
		CustomerSegment:    segmentTable.canonical(raw.CustomerSegment),
		AcquisitionChannel: strings.ToLower(strings.TrimSpace(raw.AcquisitionChannel)),
		LifetimeValue:      lifetimeValue,
		ValueBand:          ValueBand(cfg, lifetimeValue),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
		TenureDays:         TenureDays(createdAt, loadedAt),
		LastOrderDate:      lastOrderDate,
		RecencyBand:        RecencyBand(cfg, lastOrderDate, loadedAt),
		IsActive:           isActive,
		EmailSubscribed:    emailSubscribed,
		PreferredContact:   contactTable.canonical(raw.PreferredContact),
		CreditScoreRange:   creditTable.canonical(raw.CreditScoreRange),
		LoadedAt:           loadedAt,
	}, nil
}
