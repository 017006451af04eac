package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

// WriteLeadsXLSX writes scored leads to an XLSX workbook at path, one sheet
// per tier plus an "All Leads" sheet. Leads within a sheet keep input order,
// which is score-descending when fed from scorer.ScoreAll.
func WriteLeadsXLSX(path string, leads []scorer.Lead) error {
	f := xlsx.NewFile()

	all, err := f.AddSheet("All Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	writeLeadHeader(all)
	for _, l := range leads {
		writeLeadRow(all, l)
	}

	byTier := make(map[string][]scorer.Lead)
	for _, l := range leads {
		byTier[l.Tier] = append(byTier[l.Tier], l)
	}
	for _, tier := range []string{"A", "B", "C", "D"} {
		tierLeads := byTier[tier]
		if len(tierLeads) == 0 {
			continue
		}
		sheet, err := f.AddSheet("Tier " + tier)
		if err != nil {
			return eris.Wrap(err, fmt.Sprintf("export: add tier %s sheet", tier))
		}
		writeLeadHeader(sheet)
		for _, l := range tierLeads {
			writeLeadRow(sheet, l)
		}
	}

	return eris.Wrap(f.Save(path), fmt.Sprintf("export: save %s", path))
}

// WriteMatchesXLSX writes enriched license matches to an XLSX workbook.
func WriteMatchesXLSX(path string, matches []model.Match) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("License Matches")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headers := MatchHeaders(matches)
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}
	for _, m := range matches {
		row := sheet.AddRow()
		for _, v := range MatchRow(m, headers) {
			row.AddCell().SetString(v)
		}
	}

	return eris.Wrap(f.Save(path), fmt.Sprintf("export: save %s", path))
}

func writeLeadHeader(sheet *xlsx.Sheet) {
	row := sheet.AddRow()
	for _, h := range LeadHeaders {
		row.AddCell().SetString(h)
	}
}

func writeLeadRow(sheet *xlsx.Sheet, l scorer.Lead) {
	row := sheet.AddRow()
	for _, v := range LeadRow(l) {
		row.AddCell().SetString(v)
	}
}
