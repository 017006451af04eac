// Package dedup collapses the duplicate dealer records produced by repeated
// ZIP sweeps of a single OEM locator into a unique set.
//
// Classification is a three-signal cascade evaluated in fixed precedence:
// normalized phone, exact domain, then fuzzy name within the same state.
// A dealer is a duplicate on the first signal that fires against an
// already-accepted dealer, and is dropped outright; fields are never merged
// across duplicates. First occurrence wins, so output order is the stable
// first-seen order of the input and the pass is idempotent.
package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/normalize"
)

// FuzzyThreshold is the minimum Ratcliff/Obershelp similarity at which two
// same-state names are treated as the same business. Deliberately high:
// phone and domain carry the recall, the name signal only mops up records
// with neither.
const FuzzyThreshold = 0.85

// Reason identifies which signal marked a dealer as a duplicate.
type Reason string

const (
	ReasonPhone  Reason = "phone"
	ReasonDomain Reason = "domain"
	ReasonFuzzy  Reason = "fuzzy_name"
)

// Dropped records one discarded duplicate and why it was discarded.
type Dropped struct {
	Dealer model.Dealer `json:"dealer"`
	Reason Reason       `json:"reason"`
	// Detail is the audit string, e.g. "phone=3235551234" or
	// "fuzzy_name=0.91 ('abc electric' ≈ 'abc electrical')".
	Detail string `json:"detail"`
}

// Result holds the reduced dealer list and the data-quality audit breakdown.
type Result struct {
	Dealers []model.Dealer `json:"dealers"`
	Dropped []Dropped      `json:"dropped"`

	Removed     int `json:"removed"`
	PhoneCount  int `json:"phone_count"`
	DomainCount int `json:"domain_count"`
	FuzzyCount  int `json:"fuzzy_count"`
}

// namedDealer pairs a kept dealer with its precomputed normalized name for
// fuzzy comparisons against later records.
type namedDealer struct {
	norm   string
	dealer model.Dealer
}

// Run deduplicates raw in first-seen order with the default fuzzy name
// cutoff. Kept dealers are indexed as they are accepted, so every signal
// compares against accepted survivors only, never the full unfiltered batch.
func Run(raw []model.Dealer) Result {
	return RunWithThreshold(raw, FuzzyThreshold)
}

// RunWithThreshold is Run with an explicit fuzzy name cutoff, for callers
// that take it from config. A cutoff outside (0, 1] falls back to the
// default; phone and domain matching are unaffected either way.
func RunWithThreshold(raw []model.Dealer, threshold float64) Result {
	if threshold <= 0 || threshold > 1 {
		threshold = FuzzyThreshold
	}

	res := Result{Dealers: make([]model.Dealer, 0, len(raw))}

	seenPhones := make(map[string]bool)
	seenDomains := make(map[string]bool)
	byState := make(map[string][]namedDealer)

	for _, d := range raw {
		if drop, ok := classify(d, threshold, seenPhones, seenDomains, byState); ok {
			res.Dropped = append(res.Dropped, drop)
			switch drop.Reason {
			case ReasonPhone:
				res.PhoneCount++
			case ReasonDomain:
				res.DomainCount++
			case ReasonFuzzy:
				res.FuzzyCount++
			}
			continue
		}

		if p, ok := normalize.Phone(d.Phone); ok {
			seenPhones[p] = true
		}
		if d.Domain != "" {
			seenDomains[d.Domain] = true
		}
		if d.Name != "" && d.State != "" {
			byState[d.State] = append(byState[d.State], namedDealer{
				norm:   normalize.Name(d.Name),
				dealer: d,
			})
		}
		res.Dealers = append(res.Dealers, d)
	}

	res.Removed = len(res.Dropped)
	return res
}

// classify tests the three signals in precedence order against the accepted
// indexes. Returns the drop record and true if any signal fires.
func classify(d model.Dealer, threshold float64, seenPhones, seenDomains map[string]bool, byState map[string][]namedDealer) (Dropped, bool) {
	if p, ok := normalize.Phone(d.Phone); ok && seenPhones[p] {
		return Dropped{Dealer: d, Reason: ReasonPhone, Detail: "phone=" + p}, true
	}

	if d.Domain != "" && seenDomains[d.Domain] {
		return Dropped{Dealer: d, Reason: ReasonDomain, Detail: "domain=" + d.Domain}, true
	}

	if d.Name != "" && d.State != "" {
		norm := normalize.Name(d.Name)
		for _, kept := range byState[d.State] {
			ratio := normalize.Ratio(norm, kept.norm)
			if ratio >= threshold {
				detail := fmt.Sprintf("fuzzy_name=%.2f ('%s' ≈ '%s')", ratio, norm, kept.norm)
				return Dropped{Dealer: d, Reason: ReasonFuzzy, Detail: detail}, true
			}
		}
	}

	return Dropped{}, false
}

// LogSummary writes the audit breakdown for an OEM's dedup pass.
func (r Result) LogSummary(oem string) {
	zap.L().Info("dedup complete",
		zap.String("component", "dedup"),
		zap.String("oem", oem),
		zap.Int("kept", len(r.Dealers)),
		zap.Int("removed", r.Removed),
		zap.Int("by_phone", r.PhoneCount),
		zap.Int("by_domain", r.DomainCount),
		zap.Int("by_fuzzy_name", r.FuzzyCount),
	)
}
