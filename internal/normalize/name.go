package normalize

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// corpSuffixes matches trailing corporate-form suffixes, longest forms first
// so "incorporated" is not truncated to "inc" + leftovers.
// A separator is required before the suffix so names like "texaco" are not
// truncated by the bare "co" form.
var corpSuffixes = regexp.MustCompile(
	`(?i)[\s,]+(incorporated|corporation|limited|company|` +
		`l\.?\s?l\.?\s?c\.?|llc|inc\.?|corp\.?|ltd\.?|co\.?)\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Name standardizes a business name into the key used by the fuzzy dedup
// signal: lowercase, trimmed, corporate suffix stripped, whitespace collapsed.
func Name(raw string) string {
	n := strings.ToLower(strings.TrimSpace(raw))
	if n == "" {
		return ""
	}
	n = corpSuffixes.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Ratio computes Ratcliff/Obershelp similarity between two strings using the
// difflib sequence matcher over individual characters. Returns 0.0-1.0.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
