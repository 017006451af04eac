package normalize

import (
	"net/url"
	"strings"
)

// Domain extracts the lowercase registrable host from a raw URL or bare
// domain. Only a leading "www." is stripped; other subdomains are preserved
// ("shop.example.com" stays intact). Purely syntactic: no TLD validation,
// no DNS.
func Domain(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, ".") {
		return "", false
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return "", false
	}
	return host, true
}
