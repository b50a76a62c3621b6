package extract

import (
	"strings"
	"unicode"
)

// minClaimChars is the shortest claim worth verifying
const minClaimChars = 6

// maxClaimWords caps a claim before it is truncated with an ellipsis
const maxClaimWords = 28

// forbiddenPrefixes mark lines that are prompt scaffolding or structured
// output leaking through the model, not actual claims.
var forbiddenPrefixes = []string{
	"article:", "begin claims", "headline:", "description:",
	"context:", "metadata:", "system role",
	"[", "{", "<",
	"claim:", "output:", "json:",
}

// vacuousClaims are placeholder answers the model emits when it finds nothing
var vacuousClaims = map[string]bool{
	"n/a":       true,
	"none":      true,
	"no claims": true,
	"no claim":  true,
}

// SanitizeClaims filters and normalizes raw claim candidates. It drops
// scaffolding lines, boilerplate, and vacuous placeholders, collapses
// whitespace, trims bullet and punctuation residue, truncates overlong
// claims, capitalizes the first letter, and deduplicates
// case-insensitively keeping first-seen order.
func SanitizeClaims(raw []string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, candidate := range raw {
		claim, ok := sanitizeOne(candidate)
		if !ok {
			continue
		}
		key := strings.ToLower(claim)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, claim)
	}
	return out
}

// sanitizeOne applies the per-claim pipeline. The reject checks run twice,
// before and after normalization, since collapsing whitespace and trimming
// punctuation can expose a placeholder that was wrapped in residue.
func sanitizeOne(raw string) (string, bool) {
	claim := strings.TrimSpace(stripArtifacts(raw))
	if isVacuous(claim) {
		return "", false
	}

	claim = normalizeClaim(claim)
	if isVacuous(claim) {
		return "", false
	}
	return claim, true
}

// isVacuous rejects junk lines: too short, scaffolding prefixes,
// placeholder answers, and cookie-policy boilerplate.
func isVacuous(claim string) bool {
	if len(claim) < minClaimChars {
		return true
	}
	lowered := strings.ToLower(strings.TrimSpace(claim))
	for _, prefix := range forbiddenPrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return true
		}
	}
	if vacuousClaims[lowered] {
		return true
	}
	if strings.Contains(lowered, "cookie") && strings.Contains(lowered, "policy") {
		return true
	}
	return false
}

// normalizeClaim collapses spacing, trims bullet and punctuation residue,
// enforces the word budget, and capitalizes the first letter.
func normalizeClaim(claim string) string {
	claim = strings.Join(strings.Fields(claim), " ")
	claim = strings.Trim(claim, " \t\r\n-•*")
	claim = strings.TrimRight(claim, ",;: ")

	words := strings.Fields(claim)
	if len(words) > maxClaimWords {
		claim = strings.TrimRight(strings.Join(words[:maxClaimWords], " "), ",.;:") + "…"
	}
	return capitalize(claim)
}

// stripArtifacts removes HTML attribute residue such as content=' or
// content=" fragments that scrapers leave behind.
func stripArtifacts(claim string) string {
	for _, marker := range []string{"content='", `content="`} {
		claim = strings.ReplaceAll(claim, marker, "")
	}
	return strings.Trim(claim, `'"`)
}

// capitalize upper-cases the first letter only
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
