// Package normalize canonicalizes the noisy free-text fields (phone numbers,
// URLs, business names) that dedup and cross-reference matching compare on.
// All normalizers fail soft: an unparseable input means "signal unavailable",
// never an error.
package normalize

import "regexp"

var (
	extSuffix = regexp.MustCompile(`(?i)\s*(?:ext\.?|x)\s*\d+\s*$`)
	nonDigit  = regexp.MustCompile(`\D`)
)

// Phone reduces a raw phone string to its 10-digit US form.
// Extension suffixes ("ext 204", "x12") are dropped, then all non-digits.
// An 11-digit number with a leading 1 loses the country code. Anything that
// does not leave exactly 10 digits fails.
func Phone(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	s := extSuffix.ReplaceAllString(raw, "")
	s = nonDigit.ReplaceAllString(s, "")
	if len(s) == 11 && s[0] == '1' {
		s = s[1:]
	}
	if len(s) != 10 {
		return "", false
	}
	return s, true
}
