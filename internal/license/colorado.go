package license

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const doraResourceURL = "https://data.colorado.gov/resource/dora-electrical-licenses.json?$limit=500000"

// coRecord is the Socrata row shape for the DORA license dataset.
type coRecord struct {
	Licensee       string `json:"licensee"`
	LicenseNumber  string `json:"licensenumber"`
	LicenseType    string `json:"licensetype"`
	Status         string `json:"licensestatus"`
	City           string `json:"city"`
	Zip            string `json:"zipcode"`
	FirstIssueDate string `json:"firstissuedate"`
	IssueDate      string `json:"issuedate"`
	ExpirationDate string `json:"expirationdate"`
}

// Colorado ingests the DORA license dataset from the state open-data API.
// DORA publishes first_issue_date, the strongest tenure signal of any
// wired state.
type Colorado struct{}

func (s *Colorado) State() string          { return "CO" }
func (s *Colorado) Board() string          { return "DORA" }
func (s *Colorado) Tier() model.SourceTier { return model.TierAPI }

func (s *Colorado) Fetch(ctx context.Context, f fetcher.Fetcher, _ string) ([]model.Licensee, error) {
	body, err := f.Download(ctx, doraResourceURL)
	if err != nil {
		return nil, eris.Wrap(err, "license: download CO dataset")
	}
	defer body.Close() //nolint:errcheck

	recCh, errCh := fetcher.DecodeJSONArray[coRecord](ctx, body)

	var out []model.Licensee
	for rec := range recCh {
		if rec.LicenseNumber == "" {
			continue
		}
		out = append(out, model.Licensee{
			LicenseeName:      rec.Licensee,
			LicenseNumber:     rec.LicenseNumber,
			LicenseType:       CanonicalType(rec.LicenseType),
			LicenseStatus:     NormalizeStatus(rec.Status),
			City:              rec.City,
			State:             "CO",
			Zip:               trimZip(rec.Zip),
			IssueDate:         parseDate(rec.IssueDate),
			ExpirationDate:    parseDate(rec.ExpirationDate),
			OriginalIssueDate: parseDate(rec.FirstIssueDate),
			SourceState:       "CO",
			SourceTier:        model.TierAPI,
		})
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "license: decode CO dataset")
		}
	}
	return out, nil
}
