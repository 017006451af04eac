// Package scorer assigns priority scores and tiers to aggregated contractor
// profiles, consuming the deduplicated multi-OEM sets and their license
// cross-references.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/aggregate"
	"github.com/gridline-data/locator-cli/internal/model"
)

// Config holds the component weights and thresholds for lead scoring.
type Config struct {
	// Weights (sum = 100).
	MultiOEMWeight   float64 `mapstructure:"multi_oem_weight"`
	LicenseWeight    float64 `mapstructure:"license_weight"`
	TenureWeight     float64 `mapstructure:"tenure_weight"`
	CapabilityWeight float64 `mapstructure:"capability_weight"`
	ReputationWeight float64 `mapstructure:"reputation_weight"`

	// TenureFullYears is the license age at which the tenure component maxes out.
	TenureFullYears float64 `mapstructure:"tenure_full_years"`

	// Tier cutoffs, descending.
	TierACutoff float64 `mapstructure:"tier_a_cutoff"`
	TierBCutoff float64 `mapstructure:"tier_b_cutoff"`
	TierCCutoff float64 `mapstructure:"tier_c_cutoff"`
}

// DefaultConfig returns weights summing to 100 and the standard tier cutoffs.
func DefaultConfig() Config {
	return Config{
		MultiOEMWeight:   35,
		LicenseWeight:    25,
		TenureWeight:     15,
		CapabilityWeight: 15,
		ReputationWeight: 10,

		TenureFullYears: 15,

		TierACutoff: 75,
		TierBCutoff: 55,
		TierCCutoff: 35,
	}
}

// Validate checks the config is internally consistent.
func Validate(c Config) error {
	var errs []string
	sum := c.MultiOEMWeight + c.LicenseWeight + c.TenureWeight + c.CapabilityWeight + c.ReputationWeight
	if math.Abs(sum-100) > 1e-9 {
		errs = append(errs, fmt.Sprintf("weights sum to %.2f, want 100", sum))
	}
	if !(c.TierACutoff > c.TierBCutoff && c.TierBCutoff > c.TierCCutoff) {
		errs = append(errs, "tier cutoffs must be strictly descending")
	}
	if c.TenureFullYears <= 0 {
		errs = append(errs, "tenure_full_years must be positive")
	}
	if len(errs) > 0 {
		return eris.New("scorer: invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

// Lead is a scored contractor profile.
type Lead struct {
	Profile aggregate.Profile `json:"profile"`
	Score   float64           `json:"score"`
	Tier    string            `json:"tier"`

	// Breakdown components, each 0.0-1.0 before weighting.
	MultiOEM   float64 `json:"multi_oem"`
	License    float64 `json:"license"`
	Tenure     float64 `json:"tenure"`
	Capability float64 `json:"capability"`
	Reputation float64 `json:"reputation"`

	Licensed      bool `json:"licensed"`
	ActiveLicense bool `json:"active_license"`
}

// Score ranks one profile. matches are the cross-reference matches whose
// dealer shares the profile's identity key (may be empty).
func Score(cfg Config, prof aggregate.Profile, matches []model.Match, now time.Time) Lead {
	lead := Lead{Profile: prof}

	// Multi-OEM: 1 brand = 0.25, scaling to 1.0 at 4+.
	lead.MultiOEM = math.Min(float64(prof.OEMCount())/4.0, 1.0)

	// License: full credit for an active license, half for any license.
	var oldest *time.Time
	for _, m := range matches {
		lead.Licensed = true
		if m.Licensee.Active() {
			lead.ActiveLicense = true
		}
		d := m.Licensee.OriginalIssueDate
		if d == nil {
			d = m.Licensee.IssueDate
		}
		if d != nil && (oldest == nil || d.Before(*oldest)) {
			oldest = d
		}
	}
	switch {
	case lead.ActiveLicense:
		lead.License = 1.0
	case lead.Licensed:
		lead.License = 0.5
	}

	// Tenure: linear in license age, capped at TenureFullYears.
	if oldest != nil {
		years := now.Sub(*oldest).Hours() / (24 * 365.25)
		lead.Tenure = math.Min(math.Max(years, 0)/cfg.TenureFullYears, 1.0)
	}

	lead.Capability = capabilityBreadth(prof.Dealer.Capabilities)
	lead.Reputation = reputation(prof.Dealer)

	lead.Score = cfg.MultiOEMWeight*lead.MultiOEM +
		cfg.LicenseWeight*lead.License +
		cfg.TenureWeight*lead.Tenure +
		cfg.CapabilityWeight*lead.Capability +
		cfg.ReputationWeight*lead.Reputation

	switch {
	case lead.Score >= cfg.TierACutoff:
		lead.Tier = "A"
	case lead.Score >= cfg.TierBCutoff:
		lead.Tier = "B"
	case lead.Score >= cfg.TierCCutoff:
		lead.Tier = "C"
	default:
		lead.Tier = "D"
	}

	return lead
}

// ScoreAll ranks every profile and returns leads sorted by descending score.
// matchesByKey maps aggregate identity keys to their license matches.
func ScoreAll(cfg Config, profiles []aggregate.Profile, matchesByKey map[string][]model.Match, now time.Time) []Lead {
	leads := make([]Lead, 0, len(profiles))
	for _, p := range profiles {
		leads = append(leads, Score(cfg, p, matchesByKey[p.Key], now))
	}
	sort.SliceStable(leads, func(i, j int) bool { return leads[i].Score > leads[j].Score })

	tiers := make(map[string]int, 4)
	for _, l := range leads {
		tiers[l.Tier]++
	}
	zap.L().Info("scoring complete",
		zap.String("component", "scorer"),
		zap.Int("leads", len(leads)),
		zap.Int("tier_a", tiers["A"]),
		zap.Int("tier_b", tiers["B"]),
		zap.Int("tier_c", tiers["C"]),
		zap.Int("tier_d", tiers["D"]),
	)
	return leads
}

// capabilityBreadth scores how many product/trade capabilities the dealer
// shows, with a bonus for O&M and resimercial coverage.
func capabilityBreadth(c model.Capabilities) float64 {
	n := 0
	for _, b := range []bool{
		c.HasGenerator, c.HasSolar, c.HasBattery, c.HasHVAC,
		c.HasElectrical, c.HasPlumbing, c.HasRoofing,
	} {
		if b {
			n++
		}
	}
	score := math.Min(float64(n)/4.0, 0.8)
	if c.HasOMCapability {
		score += 0.1
	}
	if c.IsCommercial && c.IsResidential {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

// reputation folds rating and review volume into 0.0-1.0.
func reputation(d model.Dealer) float64 {
	if d.Rating <= 0 {
		return 0
	}
	score := d.Rating / 5.0 * 0.7
	// Review volume: log-ish credit capped at 100 reviews.
	score += math.Min(float64(d.ReviewCount), 100) / 100 * 0.3
	return math.Min(score, 1.0)
}
