// Package export writes scored leads and enriched license matches to the
// formats the sales team consumes: CSV, XLSX, Notion, and Salesforce.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

// LeadHeaders is the column order for lead exports.
var LeadHeaders = []string{
	"Name", "Score", "Tier", "Phone", "URL", "City", "State", "Zip",
	"OEMs", "OEM Count", "Licensed", "Active License",
	"Multi-OEM", "License", "Tenure", "Capability", "Reputation",
}

// LeadRow flattens one scored lead into the LeadHeaders column order.
func LeadRow(l scorer.Lead) []string {
	d := l.Profile.Dealer
	return []string{
		d.Name,
		fmt.Sprintf("%.1f", l.Score),
		l.Tier,
		d.Phone,
		d.Website,
		d.City,
		d.State,
		d.Zip,
		strings.Join(l.Profile.OEMs, "; "),
		strconv.Itoa(l.Profile.OEMCount()),
		strconv.FormatBool(l.Licensed),
		strconv.FormatBool(l.ActiveLicense),
		fmt.Sprintf("%.2f", l.MultiOEM),
		fmt.Sprintf("%.2f", l.License),
		fmt.Sprintf("%.2f", l.Tenure),
		fmt.Sprintf("%.2f", l.Capability),
		fmt.Sprintf("%.2f", l.Reputation),
	}
}

// LeadMap flattens one scored lead into a key-value row for property-based
// sinks (Notion). Keys follow LeadHeaders.
func LeadMap(l scorer.Lead) map[string]string {
	row := LeadRow(l)
	m := make(map[string]string, len(LeadHeaders))
	for i, h := range LeadHeaders {
		m[h] = row[i]
	}
	return m
}

// MatchHeaders computes the union of enriched-dealer keys across matches.
// Enriched rows are sparse: absent license dates are omitted per-record, so
// the header set depends on the batch. Keys are sorted for stable output.
func MatchHeaders(matches []model.Match) []string {
	seen := make(map[string]struct{})
	for _, m := range matches {
		for k := range m.EnrichedDealer {
			seen[k] = struct{}{}
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

// MatchRow flattens one match's enriched dealer into the given header order.
// Missing keys become empty cells.
func MatchRow(m model.Match, headers []string) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		row[i] = m.EnrichedDealer[h]
	}
	return row
}
