package license

import (
	"context"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

// Nevada's NSCB publishes no bulk file or API; its search portal needs a
// browser session. Registered so state coverage reports name the gap.
type Nevada struct{}

func (s *Nevada) State() string          { return "NV" }
func (s *Nevada) Board() string          { return "NSCB" }
func (s *Nevada) Tier() model.SourceTier { return model.TierScraper }

func (s *Nevada) Fetch(context.Context, fetcher.Fetcher, string) ([]model.Licensee, error) {
	return nil, ErrScraperSource
}
