package license

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const lniResourceURL = "https://data.wa.gov/resource/contractor-licenses.json?$limit=500000"

// waRecord is the Socrata row shape for the L&I contractor dataset.
type waRecord struct {
	BusinessName     string `json:"businessname"`
	ContractorLicNum string `json:"contractorlicensenumber"`
	LicenseType      string `json:"contractorlicensetypecode"`
	Status           string `json:"statuscode"`
	Address          string `json:"address1"`
	City             string `json:"city"`
	Zip              string `json:"zip"`
	County           string `json:"county"`
	EffectiveDate    string `json:"licenseeffectivedate"`
	ExpirationDate   string `json:"licenseexpirationdate"`
	Phone            string `json:"phonenumber"`
}

// Washington ingests the L&I contractor dataset from the state open-data
// API.
type Washington struct{}

func (s *Washington) State() string          { return "WA" }
func (s *Washington) Board() string          { return "L&I" }
func (s *Washington) Tier() model.SourceTier { return model.TierAPI }

func (s *Washington) Fetch(ctx context.Context, f fetcher.Fetcher, _ string) ([]model.Licensee, error) {
	body, err := f.Download(ctx, lniResourceURL)
	if err != nil {
		return nil, eris.Wrap(err, "license: download WA dataset")
	}
	defer body.Close() //nolint:errcheck

	recCh, errCh := fetcher.DecodeJSONArray[waRecord](ctx, body)

	var out []model.Licensee
	for rec := range recCh {
		if rec.ContractorLicNum == "" {
			continue
		}
		out = append(out, model.Licensee{
			LicenseeName:   rec.BusinessName,
			BusinessName:   rec.BusinessName,
			LicenseNumber:  rec.ContractorLicNum,
			LicenseType:    CanonicalType(rec.LicenseType),
			LicenseStatus:  NormalizeStatus(rec.Status),
			Street:         rec.Address,
			City:           rec.City,
			State:          "WA",
			Zip:            trimZip(rec.Zip),
			County:         rec.County,
			IssueDate:      parseDate(rec.EffectiveDate),
			ExpirationDate: parseDate(rec.ExpirationDate),
			SourceState:    "WA",
			SourceTier:     model.TierAPI,
			Phone:          rec.Phone,
		})
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "license: decode WA dataset")
		}
	}
	return out, nil
}
