// Package capability derives product and market capability flags for a
// dealer from the free text an OEM locator exposes: business name, tier
// label, and certification badges. Detection is keyword-based and pure; the
// resulting value is built once and never mutated.
package capability

import (
	"sort"
	"strings"

	"github.com/gridline-data/locator-cli/internal/model"
)

// categoryOEMs maps product categories to the OEM brand names whose presence
// in a dealer's text attributes that brand to the dealer's capability sets.
var categoryOEMs = map[string][]string{
	"generator":     {"generac", "kohler", "cummins", "briggs", "champion"},
	"battery":       {"tesla", "enphase", "franklinwh", "lg", "sonnen"},
	"inverter":      {"solaredge", "sma", "fronius", "sol-ark"},
	"microinverter": {"enphase", "apsystems", "hoymiles"},
}

// boolKeywords maps capability flags to the keywords that set them.
var boolKeywords = map[string][]string{
	"generator":   {"generator", "standby power", "backup power"},
	"solar":       {"solar", "pv", "photovoltaic"},
	"battery":     {"battery", "storage", "powerwall", "ess"},
	"hvac":        {"hvac", "heating", "cooling", "air conditioning", "furnace", "heat pump"},
	"electrical":  {"electric", "electrical", "electrician"},
	"plumbing":    {"plumbing", "plumber"},
	"roofing":     {"roofing", "roof"},
	"commercial":  {"commercial", "industrial"},
	"residential": {"residential", "home", "homeowner"},
}

// omKeywords mark operations & maintenance offerings.
var omKeywords = []string{"o&m", "maintenance", "service plan", "monitoring", "service agreement"}

// Detect builds the capability flags for a dealer from its name, brand tier
// label, certification badges, and the OEM whose locator listed it.
func Detect(oemSource, name, tier string, certs []string) model.Capabilities {
	text := strings.ToLower(name + " " + tier + " " + strings.Join(certs, " "))

	has := func(key string) bool {
		for _, kw := range boolKeywords[key] {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}

	caps := model.Capabilities{
		HasGenerator:  has("generator"),
		HasSolar:      has("solar"),
		HasBattery:    has("battery"),
		HasHVAC:       has("hvac"),
		HasElectrical: has("electrical"),
		HasPlumbing:   has("plumbing"),
		HasRoofing:    has("roofing"),
		IsCommercial:  has("commercial"),
		IsResidential: has("residential"),
	}

	// The listing OEM itself counts toward category attribution: a dealer on
	// Generac's locator is a Generac generator dealer even if its own text
	// never says "generac".
	source := strings.ToLower(oemSource)
	caps.GeneratorOEMs = matchOEMs("generator", text, source)
	caps.BatteryOEMs = matchOEMs("battery", text, source)
	caps.InverterOEMs = matchOEMs("inverter", text, source)
	caps.MicroinverterOEMs = matchOEMs("microinverter", text, source)

	if len(caps.GeneratorOEMs) > 0 {
		caps.HasGenerator = true
	}
	if len(caps.BatteryOEMs) > 0 {
		caps.HasBattery = true
	}

	for _, kw := range omKeywords {
		if strings.Contains(text, kw) {
			caps.HasOMCapability = true
			break
		}
	}

	// MEP-R: at least three of mechanical (HVAC), electrical, plumbing,
	// roofing under one roof.
	trades := 0
	for _, b := range []bool{caps.HasHVAC, caps.HasElectrical, caps.HasPlumbing, caps.HasRoofing} {
		if b {
			trades++
		}
	}
	caps.IsMEPRContractor = trades >= 3

	return caps
}

// matchOEMs returns the sorted set of category OEMs found in the text or
// equal to the listing source.
func matchOEMs(category, text, source string) []string {
	var out []string
	for _, oem := range categoryOEMs[category] {
		if oem == source || strings.Contains(text, oem) {
			out = append(out, oem)
		}
	}
	sort.Strings(out)
	return out
}
