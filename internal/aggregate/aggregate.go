// Package aggregate merges deduplicated per-OEM dealer sets into unified
// contractor profiles, detecting which contractor carries which brands.
package aggregate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/normalize"
)

// Profile is one distinct contractor identity across all OEM sources.
type Profile struct {
	// Dealer is the first-seen record for this identity; later sightings
	// contribute only their OEM membership, never field values.
	Dealer model.Dealer `json:"dealer"`
	// OEMs is the sorted set of brands whose locators list this contractor.
	OEMs []string `json:"oems"`
	// Key is the identity key the profile was grouped under.
	Key string `json:"key"`
}

// OEMCount returns how many distinct brands certify this contractor.
func (p Profile) OEMCount() int { return len(p.OEMs) }

// KeyFor returns the identity key a dealer groups under, so callers can
// line up external records (license matches) with merged profiles.
func KeyFor(d model.Dealer) (string, bool) {
	return identityKey(d)
}

// Batch is one deduplicated dealer list tagged by its OEM name.
type Batch struct {
	OEM     string
	Dealers []model.Dealer
}

// identityKey computes the grouping key for a dealer: normalized phone
// first, then domain, then normalized name + state. Dealers with none of
// the three stand alone and are skipped.
func identityKey(d model.Dealer) (string, bool) {
	if p, ok := normalize.Phone(d.Phone); ok {
		return "phone:" + p, true
	}
	if d.Domain != "" {
		return "domain:" + d.Domain, true
	}
	if d.Name != "" && d.State != "" {
		return "name:" + normalize.Name(d.Name) + "|" + d.State, true
	}
	return "", false
}

// Merge folds N per-OEM batches into contractor profiles, in batch order
// then dealer order. Profiles come back sorted by descending OEM count so
// multi-brand contractors surface first.
func Merge(batches []Batch) []Profile {
	byKey := make(map[string]*Profile)
	var order []string

	skipped := 0
	for _, b := range batches {
		for _, d := range b.Dealers {
			key, ok := identityKey(d)
			if !ok {
				skipped++
				continue
			}

			prof, seen := byKey[key]
			if !seen {
				prof = &Profile{Dealer: d, Key: key}
				byKey[key] = prof
				order = append(order, key)
			}
			prof.OEMs = addOEM(prof.OEMs, b.OEM)
		}
	}

	out := make([]Profile, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].OEMs) > len(out[j].OEMs)
	})

	zap.L().Info("aggregation complete",
		zap.String("component", "aggregate"),
		zap.Int("profiles", len(out)),
		zap.Int("skipped_no_identity", skipped),
	)
	return out
}

// addOEM inserts an OEM into a sorted set.
func addOEM(oems []string, oem string) []string {
	i := sort.SearchStrings(oems, oem)
	if i < len(oems) && oems[i] == oem {
		return oems
	}
	oems = append(oems, "")
	copy(oems[i+1:], oems[i:])
	oems[i] = oem
	return oems
}
