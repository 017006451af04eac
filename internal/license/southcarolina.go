package license

import (
	"context"
	"io"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

const llrExtractURL = "ftp://ftp.llronline.com/pub/contractors/licensees.csv"

// SouthCarolina ingests the LLR contractor roster, still published over
// anonymous FTP.
type SouthCarolina struct {
	// FTP is injectable for tests; defaults to the shared FTP fetcher.
	FTP interface {
		Download(ctx context.Context, url string) (io.ReadCloser, error)
	}
}

func (s *SouthCarolina) State() string          { return "SC" }
func (s *SouthCarolina) Board() string          { return "LLR" }
func (s *SouthCarolina) Tier() model.SourceTier { return model.TierBulk }

func (s *SouthCarolina) Fetch(ctx context.Context, _ fetcher.Fetcher, _ string) ([]model.Licensee, error) {
	ftp := s.FTP
	if ftp == nil {
		ftp = fetcher.NewFTPFetcher(fetcher.FTPOptions{})
	}

	body, err := ftp.Download(ctx, llrExtractURL)
	if err != nil {
		return nil, eris.Wrap(err, "license: download SC roster")
	}
	defer body.Close() //nolint:errcheck

	return parseCSVStream(ctx, body, '|', ColumnMap{
		LicenseeName:   "licensee_name",
		LicenseNumber:  "license_no",
		LicenseType:    "specialty",
		Status:         "status",
		Street:         "address",
		City:           "city",
		Zip:            "zip",
		County:         "county",
		IssueDate:      "issue_date",
		ExpirationDate: "expire_date",
	}, "SC", model.TierBulk)
}
