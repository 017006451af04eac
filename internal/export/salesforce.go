package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/scorer"
	"github.com/gridline-data/locator-cli/pkg/salesforce"
)

// UpsertResult summarizes a Salesforce lead push.
type UpsertResult struct {
	Created int
	Updated int
	Failed  int
}

// sfRating maps a score tier to the standard Salesforce Lead Rating picklist.
func sfRating(tier string) string {
	switch tier {
	case "A":
		return "Hot"
	case "B":
		return "Warm"
	default:
		return "Cold"
	}
}

// leadFields builds the Salesforce field map for one scored lead.
func leadFields(l scorer.Lead) map[string]any {
	d := l.Profile.Dealer
	return map[string]any{
		"Company":     d.Name,
		"LastName":    "Unknown",
		"Phone":       d.Phone,
		"Website":     d.Website,
		"Street":      d.Street,
		"City":        d.City,
		"State":       d.State,
		"PostalCode":  d.Zip,
		"LeadSource":  "Dealer Locator",
		"Rating":      sfRating(l.Tier),
		"Description": leadDescription(l),
	}
}

// leadDescription summarizes the scoring evidence for the sales rep.
func leadDescription(l scorer.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score %.1f (tier %s). Certified by: %s.",
		l.Score, l.Tier, strings.Join(l.Profile.OEMs, ", "))
	if l.ActiveLicense {
		b.WriteString(" Active state contractor license.")
	} else if l.Licensed {
		b.WriteString(" State license on file (not active).")
	}
	return b.String()
}

// UpsertLeadsToSalesforce pushes scored leads into Salesforce. Leads whose
// phone already matches an existing Lead record are updated in place; the
// rest are created in bulk. Leads without a phone are always created, since
// there is nothing to match on.
func UpsertLeadsToSalesforce(ctx context.Context, c salesforce.Client, leads []scorer.Lead) (UpsertResult, error) {
	log := zap.L().With(zap.String("component", "export"))

	var res UpsertResult
	var inserts []map[string]any

	for _, l := range leads {
		if ctx.Err() != nil {
			return res, eris.Wrap(ctx.Err(), "export: salesforce push cancelled")
		}

		fields := leadFields(l)
		phone := l.Profile.Dealer.Phone
		if phone == "" {
			inserts = append(inserts, fields)
			continue
		}

		existing, err := salesforce.FindLeadByPhone(ctx, c, phone)
		if err != nil {
			return res, eris.Wrapf(err, "export: look up lead %s", l.Profile.Key)
		}
		if existing != nil {
			if err := salesforce.UpdateLead(ctx, c, existing.ID, fields); err != nil {
				return res, eris.Wrapf(err, "export: update lead %s", existing.ID)
			}
			res.Updated++
			continue
		}
		inserts = append(inserts, fields)
	}

	results, err := salesforce.BulkInsertLeads(ctx, c, inserts)
	if err != nil {
		return res, eris.Wrap(err, "export: bulk insert leads")
	}
	for _, r := range results {
		if r.Success {
			res.Created++
		} else {
			res.Failed++
			log.Warn("lead insert rejected", zap.Strings("errors", r.Errors))
		}
	}

	log.Info("pushed leads to salesforce",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("failed", res.Failed))
	return res, nil
}
