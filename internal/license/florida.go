package license

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const dbprExtractURL = "https://www2.myfloridalicense.com/sto/file_download/extracts/cilb_certified.zip"

// Florida ingests the DBPR construction-industry extract, published as a
// ZIP containing a single CSV.
type Florida struct{}

func (s *Florida) State() string          { return "FL" }
func (s *Florida) Board() string          { return "DBPR" }
func (s *Florida) Tier() model.SourceTier { return model.TierBulk }

func (s *Florida) Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]model.Licensee, error) {
	zipPath := filepath.Join(tempDir, "cilb_certified.zip")
	if _, err := f.DownloadToFile(ctx, dbprExtractURL, zipPath); err != nil {
		return nil, eris.Wrap(err, "license: download FL extract")
	}
	defer os.Remove(zipPath) //nolint:errcheck

	csvPath, err := fetcher.ExtractZIPSingle(zipPath, tempDir)
	if err != nil {
		return nil, eris.Wrap(err, "license: extract FL archive")
	}
	defer os.Remove(csvPath) //nolint:errcheck

	file, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, "license: open FL extract")
	}
	defer file.Close() //nolint:errcheck

	return parseCSVStream(ctx, file, ',', ColumnMap{
		LicenseeName:   "Licensee Name",
		BusinessName:   "DBA Name",
		LicenseNumber:  "License Number",
		LicenseType:    "License Type",
		Status:         "Status",
		Street:         "Address Line 1",
		City:           "City",
		Zip:            "Zip",
		County:         "County",
		OriginalIssueDate: "Original License Date",
		ExpirationDate:    "Expiration Date",
	}, "FL", model.TierBulk)
}
