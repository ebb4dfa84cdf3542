package domain

import "time"

// StagingCustomer is a normalized customer extract row with derived fields.
// Corresponds to stg_customers table in ClickHouse.
type StagingCustomer struct {
	CustomerID         string     // PRIMARY KEY, natural key
	FirstName          string     //
	LastName           string     //
	FullName           string     // first + " " + last, single separating space
	Email              string     // lowercased
	EmailDomain        *string    // substring after last '@', NULL if absent
	Phone              string     //
	BirthDate          *time.Time // NULL if not provided
	AgeYears           *int64     // whole years at load time, NULL if no birth date
	Gender             string     // canonical: male|female|other|unknown
	AddressLine1       string     //
	City               string     //
	State              string     //
	PostalCode         string     //
	Country            string     //
	CustomerSegment    string     // canonical: vip|regular|new|unknown
	AcquisitionChannel string     // lowercased
	LifetimeValue      float64    // cumulative spend from the source system
	ValueBand          string     // high_value|medium_value|low_value
	CreatedAt          time.Time  // account creation, required
	UpdatedAt          time.Time  // source revision timestamp
	TenureDays         int64      // whole days between CreatedAt and LoadedAt
	LastOrderDate      *time.Time // NULL if the customer never ordered
	RecencyBand        string     // active|cooling|at_risk|dormant|never_ordered
	IsActive           bool       //
	EmailSubscribed    bool       //
	PreferredContact   string     // canonical: email|phone|sms|unknown
	CreditScoreRange   string     // canonical: excellent|good|fair|poor|unknown
	LoadedAt           time.Time  // staging build time
}

// CustomerVersion is one SCD2 version of a customer dimension row.
// Corresponds to dim_customers table in PostgreSQL. Closed versions are
// never mutated and versions are never deleted.
type CustomerVersion struct {
	SurrogateKey       int64      // PRIMARY KEY, store-assigned, monotonic
	CustomerID         string     // natural key
	FullName           string     //
	Email              string     //
	EmailDomain        *string    //
	Phone              string     //
	BirthDate          *time.Time //
	Gender             string     //
	AddressLine1       string     //
	City               string     //
	State              string     //
	PostalCode         string     //
	Country            string     //
	CustomerSegment    string     //
	AcquisitionChannel string     //
	ValueBand          string     //
	CreditScoreRange   string     //
	IsActive           bool       //
	EmailSubscribed    bool       //
	PreferredContact   string     //
	AttrHash           string     // digest of the tracked attribute subset
	ValidFrom          time.Time  //
	ValidTo            *time.Time // NULL while the version is open
	IsCurrent          bool       // exactly one true per natural key
}
