package license

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const doplExtractURL = "https://dopl.utah.gov/data/contractor-licenses.xlsx"

// Utah ingests the DOPL contractor workbook.
type Utah struct{}

func (s *Utah) State() string          { return "UT" }
func (s *Utah) Board() string          { return "DOPL" }
func (s *Utah) Tier() model.SourceTier { return model.TierBulk }

func (s *Utah) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]model.Licensee, error) {
	path := filepath.Join(tempDir, "contractor-licenses.xlsx")
	if _, err := f.DownloadToFile(ctx, doplExtractURL, path); err != nil {
		return nil, eris.Wrap(err, "license: download UT workbook")
	}
	defer os.Remove(path) //nolint:errcheck

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "license: read UT workbook")
	}

	return parseRows(rows, ColumnMap{
		LicenseeName:   "Name",
		BusinessName:   "DBA",
		LicenseNumber:  "License Number",
		LicenseType:    "License Type",
		Status:         "Status",
		City:           "City",
		Zip:            "Postal Code",
		IssueDate:      "Issue Date",
		ExpirationDate: "Expiration Date",
	}, "UT", model.TierBulk), nil
}
