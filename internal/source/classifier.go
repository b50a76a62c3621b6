package source

import "strings"

// Tier-to-prior mapping for the heuristic classifier. Tertiary confidence sits
// below the scorer's threshold on purpose: "probably a blog" is not a signal
// worth overriding the neutral prior for.
const (
	primaryScore        = 4.2
	primaryConfidence   = 0.85
	secondaryScore      = 3.6
	secondaryConfidence = 0.75
	tertiaryScore       = 2.2
	tertiaryConfidence  = 0.4
)

// TierClassifier classifies domains into authority tiers using curated domain
// sets and TLD heuristics, and maps each tier to a (prior, confidence) pair.
type TierClassifier struct {
	primary   map[string]bool
	secondary map[string]bool
}

// NewTierClassifier builds a classifier from primary/secondary domain lists.
// Both lists may be nil; TLD heuristics still apply.
func NewTierClassifier(primaryDomains, secondaryDomains []string) *TierClassifier {
	c := &TierClassifier{
		primary:   make(map[string]bool),
		secondary: make(map[string]bool),
	}
	for _, d := range primaryDomains {
		c.primary[NormalizeDomain(d)] = true
	}
	for _, d := range secondaryDomains {
		c.secondary[NormalizeDomain(d)] = true
	}
	return c
}

// Classify returns a credibility prior and confidence for a normalized domain
func (c *TierClassifier) Classify(domain string) (float64, float64) {
	if domain == "" {
		return tertiaryScore, 0
	}

	if c.primary[domain] || hasSuffixIn(domain, c.primary) {
		return primaryScore, primaryConfidence
	}

	// Government and academic TLDs are primary sources
	if strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".edu") ||
		strings.HasSuffix(domain, ".ac.uk") || strings.HasSuffix(domain, ".gov.uk") {
		return primaryScore, primaryConfidence
	}

	if c.secondary[domain] || hasSuffixIn(domain, c.secondary) {
		return secondaryScore, secondaryConfidence
	}

	return tertiaryScore, tertiaryConfidence
}

// hasSuffixIn reports whether domain is a subdomain of any entry in set
func hasSuffixIn(domain string, set map[string]bool) bool {
	for d := range set {
		if d != "" && strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
