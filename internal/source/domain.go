package source

import (
	"regexp"
	"strings"
)

var (
	schemeRE = regexp.MustCompile(`(?i)^[a-z]+://`)
	portRE   = regexp.MustCompile(`:\d+$`)
	pathRE   = regexp.MustCompile(`[/?#].*$`)
)

// multiSuffixes are multi-label public suffixes treated as a single TLD unit.
// Best-effort heuristic; a full public suffix list is deliberately avoided.
var multiSuffixes = []string{
	"co.uk", "gov.uk", "ac.uk",
	"com.au", "net.au", "org.au",
	"co.jp",
	"com.br", "com.mx", "com.tr",
}

// NormalizeDomain canonicalizes a raw source string (URL, bare hostname, or
// a citation label like "report.pdf, p.3") into a registrable domain.
// It never fails: unusable input degrades to a best-effort substring or "".
func NormalizeDomain(raw string) string {
	if raw == "" {
		return ""
	}
	// Citation labels carry ", p.N" suffixes; keep only the identifier part.
	if idx := strings.Index(raw, ","); idx >= 0 {
		raw = raw[:idx]
	}
	host := stripToHost(raw)
	return RegistrableDomain(host)
}

// stripToHost reduces a URL-ish string to its bare lowercase host
func stripToHost(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = schemeRE.ReplaceAllString(s, "")
	s = pathRE.ReplaceAllString(s, "")
	s = strings.Trim(s, "/")
	s = portRE.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "www.")
	return s
}

// RegistrableDomain collapses a host to its last two labels, or last three
// when the host ends in a known multi-label public suffix.
func RegistrableDomain(host string) string {
	if host == "" {
		return ""
	}
	for _, suf := range multiSuffixes {
		if host == suf || strings.HasSuffix(host, "."+suf) {
			parts := strings.Split(host, ".")
			if len(parts) >= 3 {
				return strings.Join(parts[len(parts)-3:], ".")
			}
			return host
		}
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}
