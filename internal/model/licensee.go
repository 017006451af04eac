package model

import "time"

// SourceTier describes how a state's license data was acquired.
type SourceTier string

const (
	TierBulk    SourceTier = "BULK"    // direct file download
	TierAPI     SourceTier = "API"     // public API
	TierScraper SourceTier = "SCRAPER" // browser automation required
)

// LicenseType is the canonicalized trade classification vocabulary.
type LicenseType string

const (
	LicenseElectrical LicenseType = "Electrical"
	LicenseHVAC       LicenseType = "HVAC"
	LicenseLowVoltage LicenseType = "LowVoltage"
	LicensePlumbing   LicenseType = "Plumbing"
	LicenseSolar      LicenseType = "Solar"
	LicenseGeneral    LicenseType = "General"
	LicenseOther      LicenseType = "Other"
)

// Licensee is one contractor as seen in a state license registry.
// LicenseNumber is unique only within (SourceState, SourceTier), never
// globally. Records are parsed once from bulk exports and never mutated.
type Licensee struct {
	LicenseeName  string      `json:"licensee_name"`
	BusinessName  string      `json:"business_name,omitempty"`
	LicenseNumber string      `json:"license_number"`
	LicenseType   LicenseType `json:"license_type"`
	LicenseStatus string      `json:"license_status"`

	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	County string `json:"county,omitempty"`

	IssueDate      *time.Time `json:"issue_date,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	// OriginalIssueDate is the first-ever licensing date, a tenure signal.
	OriginalIssueDate *time.Time `json:"original_issue_date,omitempty"`

	SourceState string     `json:"source_state"`
	SourceTier  SourceTier `json:"source_tier"`

	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// Active reports whether the license status indicates a currently valid license.
func (l Licensee) Active() bool {
	switch l.LicenseStatus {
	case "Active", "ACTIVE", "active", "Current", "CURRENT":
		return true
	}
	return false
}
