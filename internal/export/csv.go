package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

// WriteLeadsCSV writes scored leads to a CSV file at path.
func WriteLeadsCSV(path string, leads []scorer.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("export: create %s", path))
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(LeadHeaders); err != nil {
		return eris.Wrap(err, "export: write lead header")
	}
	for _, l := range leads {
		if err := w.Write(LeadRow(l)); err != nil {
			return eris.Wrap(err, fmt.Sprintf("export: write lead %s", l.Profile.Key))
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush leads csv")
}

// WriteMatchesCSV writes enriched license matches to a CSV file at path.
// Columns are the union of enriched keys across the batch; rows with absent
// keys get empty cells.
func WriteMatchesCSV(path string, matches []model.Match) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("export: create %s", path))
	}
	defer f.Close() //nolint:errcheck

	headers := MatchHeaders(matches)
	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return eris.Wrap(err, "export: write match header")
	}
	for _, m := range matches {
		if err := w.Write(MatchRow(m, headers)); err != nil {
			return eris.Wrap(err, "export: write match row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush matches csv")
}
