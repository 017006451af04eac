// Package xref cross-references state license registries against the
// deduplicated OEM dealer universe.
//
// Two signals only, in strict precedence: normalized phone (confidence 100),
// then website domain (confidence 90). There is deliberately no fuzzy-name
// tier here: phone and domain are safe at registry scale, while name-only
// matching across tens of thousands of licensees was judged too noisy. The
// fuzzy signal exists only inside a single OEM source (internal/dedup);
// do not "fix" the asymmetry by adding one.
package xref

import (
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/normalize"
)

// Matcher holds the precomputed phone and domain indexes over a dealer
// batch. Build once per batch, not per licensee.
type Matcher struct {
	byPhone  map[string][]model.Dealer
	byDomain map[string][]model.Dealer
}

// NewMatcher indexes the dealer batch. Dealers whose phone or domain cannot
// be normalized are simply absent from the respective index.
func NewMatcher(dealers []model.Dealer) *Matcher {
	m := &Matcher{
		byPhone:  make(map[string][]model.Dealer),
		byDomain: make(map[string][]model.Dealer),
	}
	for _, d := range dealers {
		if p, ok := normalize.Phone(d.Phone); ok {
			m.byPhone[p] = append(m.byPhone[p], d)
		}
		raw := d.Domain
		if raw == "" {
			raw = d.Website
		}
		if dom, ok := normalize.Domain(raw); ok {
			m.byDomain[dom] = append(m.byDomain[dom], d)
		}
	}
	return m
}

// Match evaluates one licensee against the indexes. Phone hits fan out to
// every dealer under that phone and suppress the domain tier entirely; only
// when the phone produces nothing is the website domain consulted.
func (m *Matcher) Match(lic model.Licensee) []model.Match {
	if p, ok := normalize.Phone(lic.Phone); ok {
		if dealers := m.byPhone[p]; len(dealers) > 0 {
			return buildMatches(lic, dealers, model.MatchPhone)
		}
	}

	if dom, ok := normalize.Domain(lic.Website); ok {
		if dealers := m.byDomain[dom]; len(dealers) > 0 {
			return buildMatches(lic, dealers, model.MatchDomain)
		}
	}

	return nil
}

// MatchAll runs every licensee through the matcher in input order.
func (m *Matcher) MatchAll(licensees []model.Licensee) []model.Match {
	var out []model.Match
	for _, lic := range licensees {
		out = append(out, m.Match(lic)...)
	}
	zap.L().Info("cross-reference complete",
		zap.String("component", "xref"),
		zap.Int("licensees", len(licensees)),
		zap.Int("matches", len(out)),
	)
	return out
}

func buildMatches(lic model.Licensee, dealers []model.Dealer, mt model.MatchType) []model.Match {
	out := make([]model.Match, 0, len(dealers))
	for _, d := range dealers {
		out = append(out, model.Match{
			Licensee:       lic,
			Dealer:         d,
			MatchType:      mt,
			Confidence:     mt.Confidence(),
			EnrichedDealer: enrich(lic, d),
		})
	}
	return out
}

// enrich copies the dealer's core display fields and appends license
// metadata under prefixed keys. Optional dates are written only when
// present so downstream CSV rows stay sparse.
func enrich(lic model.Licensee, d model.Dealer) map[string]string {
	e := map[string]string{
		"name":             d.Name,
		"phone":            d.Phone,
		"domain":           d.Domain,
		"website":          d.Website,
		"city":             d.City,
		"state":            d.State,
		"zip":              d.Zip,
		"oem_source":       d.OEMSource,
		"scraped_from_zip": d.ScrapedFromZip,

		"license_number": lic.LicenseNumber,
		"license_type":   string(lic.LicenseType),
		"license_status": lic.LicenseStatus,
		"license_state":  lic.SourceState,
		"license_tier":   string(lic.SourceTier),
	}
	const dateLayout = "2006-01-02"
	if lic.IssueDate != nil {
		e["license_issue_date"] = lic.IssueDate.Format(dateLayout)
	}
	if lic.ExpirationDate != nil {
		e["license_expiration_date"] = lic.ExpirationDate.Format(dateLayout)
	}
	if lic.OriginalIssueDate != nil {
		e["license_original_issue_date"] = lic.OriginalIssueDate.Format(dateLayout)
	}
	return e
}
