package export

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/scorer"
	"github.com/gridline-data/locator-cli/pkg/notion"
)

// PushLeadsToNotion creates one page per lead in the given Notion database.
// Each page carries the flattened lead columns plus Status = "Queued" so the
// sales team's board picks them up. Leads whose name is already on the board
// are skipped rather than duplicated. Returns the number of pages created;
// on error the count covers pages created before the failure.
func PushLeadsToNotion(ctx context.Context, c notion.Client, dbID string, leads []scorer.Lead) (int, error) {
	log := zap.L().With(zap.String("component", "export"))

	existing, err := notion.ExistingLeadNames(ctx, c, dbID)
	if err != nil {
		return 0, err
	}

	created, skipped := 0, 0
	for _, l := range leads {
		if ctx.Err() != nil {
			return created, eris.Wrap(ctx.Err(), "export: notion push cancelled")
		}
		if existing[l.Profile.Dealer.Name] {
			skipped++
			continue
		}

		row := LeadMap(l)
		props := notion.BuildRowProperties(row)
		props["Status"] = notion.StatusProperty("Queued")

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: props,
		}

		if _, err := c.CreatePage(ctx, req); err != nil {
			return created, eris.Wrapf(err, "export: create notion page for %s", l.Profile.Key)
		}
		created++
	}

	log.Info("pushed leads to notion",
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.String("database", dbID))
	return created, nil
}
