package license

import (
	"context"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const tdlrFileURL = "https://www.tdlr.texas.gov/LicenseSearch/lictype-csv.asp?type=AllLicenses"

// Texas ingests the TDLR all-licenses extract, which covers electricians
// and HVAC contractors in one file.
type Texas struct{}

func (s *Texas) State() string          { return "TX" }
func (s *Texas) Board() string          { return "TDLR" }
func (s *Texas) Tier() model.SourceTier { return model.TierBulk }

func (s *Texas) Fetch(ctx context.Context, f fetcher.Fetcher, _ string) ([]model.Licensee, error) {
	return fetchCSV(ctx, f, tdlrFileURL, ',', ColumnMap{
		LicenseeName:   "LICENSE HOLDER NAME",
		BusinessName:   "BUSINESS NAME",
		LicenseNumber:  "LICENSE NUMBER",
		LicenseType:    "LICENSE TYPE",
		Status:         "LICENSE STATUS",
		Street:         "MAILING ADDRESS LINE1",
		City:           "MAILING ADDRESS CITY",
		Zip:            "MAILING ADDRESS ZIP",
		County:         "MAILING ADDRESS COUNTY",
		ExpirationDate: "LICENSE EXPIRATION DATE",
		Phone:          "PHONE NUMBER",
	}, "TX", model.TierBulk)
}
