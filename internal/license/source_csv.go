package license

import (
	"context"
	"io"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/fetcher"
	"github.com/gridline-data/locator-cli/internal/model"
)

// parseCSVStream runs a CSV export through the streaming parser and maps
// rows with the state's column mapping. Rows without a license number
// are skipped.
func parseCSVStream(ctx context.Context, r io.Reader, delim rune, m ColumnMap, state string, tier model.SourceTier) ([]model.Licensee, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		Delimiter:  delim,
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var colIdx map[string]int
	var out []model.Licensee
	for row := range rowCh {
		if colIdx == nil {
			colIdx = mapColumns(<-headerCh)
		}
		if lic, ok := buildLicensee(colIdx, row, m, state, tier); ok {
			out = append(out, lic)
		}
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrapf(err, "license: parse %s export", state)
		}
	}
	return out, nil
}

// fetchCSV downloads a CSV export over HTTP and parses it.
func fetchCSV(ctx context.Context, f fetcher.Fetcher, url string, delim rune, m ColumnMap, state string, tier model.SourceTier) ([]model.Licensee, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "license: download %s export", state)
	}
	defer body.Close() //nolint:errcheck

	return parseCSVStream(ctx, body, delim, m, state, tier)
}

// parseRows maps pre-split rows (XLSX sheets) with the first row as header.
func parseRows(rows [][]string, m ColumnMap, state string, tier model.SourceTier) []model.Licensee {
	if len(rows) == 0 {
		return nil
	}
	colIdx := mapColumns(rows[0])
	var out []model.Licensee
	for _, row := range rows[1:] {
		if lic, ok := buildLicensee(colIdx, row, m, state, tier); ok {
			out = append(out, lic)
		}
	}
	return out
}
