// Package model defines the canonical record shapes shared by the sweep,
// dedup, aggregation, and cross-reference layers.
package model

// Dealer is one contractor business as seen from one OEM locator source.
// Phone is the only field that is roughly comparable across sources without
// normalization; Name is never guaranteed unique or canonical.
type Dealer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Domain  string `json:"domain"`
	Website string `json:"website"`

	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	AddressFull string `json:"address_full"`

	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	// OEMSource is the brand whose locator produced this record.
	// ScrapedFromZip is the search ZIP, not necessarily the dealer's own ZIP.
	OEMSource      string `json:"oem_source"`
	ScrapedFromZip string `json:"scraped_from_zip"`

	// Tier is the brand-specific ranking label ("Premier", "Gold Dealer").
	Tier           string   `json:"tier"`
	Certifications []string `json:"certifications"`

	Capabilities Capabilities `json:"capabilities"`
}

// Capabilities is an immutable summary of what a dealer can do, derived once
// from name, tier, and certification text by capability.Detect.
type Capabilities struct {
	HasGenerator  bool `json:"has_generator"`
	HasSolar      bool `json:"has_solar"`
	HasBattery    bool `json:"has_battery"`
	HasHVAC       bool `json:"has_hvac"`
	HasElectrical bool `json:"has_electrical"`
	HasPlumbing   bool `json:"has_plumbing"`
	HasRoofing    bool `json:"has_roofing"`
	IsCommercial  bool `json:"is_commercial"`
	IsResidential bool `json:"is_residential"`

	GeneratorOEMs     []string `json:"generator_oems,omitempty"`
	BatteryOEMs       []string `json:"battery_oems,omitempty"`
	InverterOEMs      []string `json:"inverter_oems,omitempty"`
	MicroinverterOEMs []string `json:"microinverter_oems,omitempty"`

	// HasOMCapability marks operations & maintenance service offerings.
	// IsMEPRContractor marks mechanical/electrical/plumbing/roofing breadth.
	HasOMCapability  bool `json:"has_om_capability"`
	IsMEPRContractor bool `json:"is_mep_r_contractor"`
}
