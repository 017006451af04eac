package license

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gridline-data/locator-cli/internal/model"
)

// ColumnMap names the export columns carrying each licensee field.
// Empty entries mean the state's export does not publish that field.
type ColumnMap struct {
	LicenseeName  string
	BusinessName  string
	LicenseNumber string
	LicenseType   string
	Status        string

	Street string
	City   string
	Zip    string
	County string

	IssueDate         string
	ExpirationDate    string
	OriginalIssueDate string

	Phone   string
	Email   string
	Website string
}

// mapColumns builds a lowercase header name to index map.
func mapColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// rowReader resolves ColumnMap fields against one export row.
type rowReader struct {
	colIdx map[string]int
	row    []string
}

func (r rowReader) get(col string) string {
	if col == "" {
		return ""
	}
	i, ok := r.colIdx[strings.ToLower(col)]
	if !ok || i >= len(r.row) {
		return ""
	}
	return sanitizeUTF8(strings.TrimSpace(r.row[i]))
}

// buildLicensee maps one export row onto the standardized record.
// Returns false when the row has no license number, which the bulk
// exports use for continuation and disclaimer lines.
func buildLicensee(colIdx map[string]int, row []string, m ColumnMap, state string, tier model.SourceTier) (model.Licensee, bool) {
	r := rowReader{colIdx: colIdx, row: row}

	num := r.get(m.LicenseNumber)
	if num == "" {
		return model.Licensee{}, false
	}

	lic := model.Licensee{
		LicenseeName:  r.get(m.LicenseeName),
		BusinessName:  r.get(m.BusinessName),
		LicenseNumber: num,
		LicenseType:   CanonicalType(r.get(m.LicenseType)),
		LicenseStatus: NormalizeStatus(r.get(m.Status)),

		Street: r.get(m.Street),
		City:   r.get(m.City),
		State:  state,
		Zip:    trimZip(r.get(m.Zip)),
		County: r.get(m.County),

		IssueDate:         parseDate(r.get(m.IssueDate)),
		ExpirationDate:    parseDate(r.get(m.ExpirationDate)),
		OriginalIssueDate: parseDate(r.get(m.OriginalIssueDate)),

		SourceState: state,
		SourceTier:  tier,

		Phone:   r.get(m.Phone),
		Email:   r.get(m.Email),
		Website: r.get(m.Website),
	}
	if lic.LicenseeName == "" && lic.BusinessName != "" {
		lic.LicenseeName = lic.BusinessName
	}
	return lic, true
}

// dateLayouts covers the formats seen across state exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"20060102",
	"Jan 2, 2006",
}

// parseDate parses a registry date, returning nil for empty or
// unrecognized values. Zero dates ("00/00/0000") also return nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "00/00") || s == "0000-00-00" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// CanonicalType folds a state's free-text classification into the
// standardized trade vocabulary.
func CanonicalType(raw string) model.LicenseType {
	v := strings.ToLower(raw)
	switch {
	case v == "":
		return model.LicenseOther
	case strings.Contains(v, "low volt"), strings.Contains(v, "alarm"),
		strings.Contains(v, "limited energy"):
		return model.LicenseLowVoltage
	case strings.Contains(v, "electric"):
		return model.LicenseElectrical
	case strings.Contains(v, "hvac"), strings.Contains(v, "air condition"),
		strings.Contains(v, "mechanical"), strings.Contains(v, "refrigeration"),
		strings.Contains(v, "warm-air"), strings.Contains(v, "heating"):
		return model.LicenseHVAC
	case strings.Contains(v, "plumb"):
		return model.LicensePlumbing
	case strings.Contains(v, "solar"), strings.Contains(v, "photovoltaic"):
		return model.LicenseSolar
	case strings.Contains(v, "general"), strings.Contains(v, "building"):
		return model.LicenseGeneral
	default:
		return model.LicenseOther
	}
}

// NormalizeStatus folds registry status strings into a small set.
// CSLB publishes "CLEAR" for licenses in good standing.
func NormalizeStatus(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, "active"), v == "clear", v == "current", v == "valid":
		return "Active"
	case strings.HasPrefix(v, "inactive"):
		return "Inactive"
	case strings.HasPrefix(v, "expired"), strings.HasPrefix(v, "delinquent"):
		return "Expired"
	case strings.HasPrefix(v, "suspend"):
		return "Suspended"
	case strings.HasPrefix(v, "revoke"), strings.HasPrefix(v, "cancel"):
		return "Revoked"
	default:
		return strings.ToUpper(v[:1]) + v[1:]
	}
}

// trimZip reduces ZIP+4 values to the 5-digit prefix.
func trimZip(z string) string {
	if i := strings.IndexByte(z, '-'); i == 5 {
		return z[:5]
	}
	if len(z) == 9 && isDigits(z) {
		return z[:5]
	}
	return z
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// sanitizeUTF8 drops invalid byte sequences so Postgres doesn't reject
// the row. Some boards still export Latin-1.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
