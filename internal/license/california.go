package license

import (
	"context"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const cslbMasterURL = "https://www.cslb.ca.gov/onlineservices/dataportal/MasterLicenseList.csv"

// California ingests the CSLB master license list. The file carries the
// full classification history, so one business can appear once per
// classification code.
type California struct{}

func (s *California) State() string          { return "CA" }
func (s *California) Board() string          { return "CSLB" }
func (s *California) Tier() model.SourceTier { return model.TierBulk }

func (s *California) Fetch(ctx context.Context, f fetcher.Fetcher, _ string) ([]model.Licensee, error) {
	return fetchCSV(ctx, f, cslbMasterURL, ',', ColumnMap{
		LicenseeName:      "FullBusinessName",
		BusinessName:      "BusinessName",
		LicenseNumber:     "LicenseNo",
		LicenseType:       "Classifications",
		Status:            "PrimaryStatus",
		Street:            "MailingAddress",
		City:              "City",
		Zip:               "ZIPCode",
		County:            "County",
		IssueDate:         "ReissueDate",
		ExpirationDate:    "ExpirationDate",
		OriginalIssueDate: "IssueDate",
		Phone:             "BusinessPhone",
	}, "CA", model.TierBulk)
}
