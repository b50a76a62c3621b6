package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/llm"
)

// maxArticleChars bounds the article text sent to the model
const maxArticleChars = 8000

const claimsPrompt = `You are a careful news analyst. Extract the distinct factual claims made in
the article below. A claim is a single verifiable statement, not an opinion,
question, or headline fragment.

Return ONLY a JSON array of strings, one claim per element, at most %d
claims. Do not include any other text.

Article:
%s`

// jsonArrayRE locates the first JSON array in a chatty model response
var jsonArrayRE = regexp.MustCompile(`\[[\s\S]*\]`)

// ClaimExtractor pulls verifiable claims out of article text with a
// language model and sanitizes the result.
type ClaimExtractor struct {
	gen       llm.Generator
	maxClaims int
}

// NewClaimExtractor creates an extractor. maxClaims values below 1 fall
// back to a single claim.
func NewClaimExtractor(gen llm.Generator, maxClaims int) *ClaimExtractor {
	if maxClaims < 1 {
		maxClaims = 1
	}
	return &ClaimExtractor{gen: gen, maxClaims: maxClaims}
}

// Extract returns up to maxClaims sanitized claims from the article.
// An unavailable generator or an unparseable response yields an empty
// list and no error; callers treat extraction as best-effort.
func (e *ClaimExtractor) Extract(ctx context.Context, article string) ([]string, error) {
	article = strings.TrimSpace(article)
	if article == "" {
		return nil, nil
	}
	if e.gen == nil {
		return nil, nil
	}
	if len(article) > maxArticleChars {
		article = article[:maxArticleChars]
	}

	prompt := fmt.Sprintf(claimsPrompt, e.maxClaims, article)
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	raw := parseClaimArray(out)
	claims := SanitizeClaims(raw)
	if len(claims) > e.maxClaims {
		claims = claims[:e.maxClaims]
	}
	return claims, nil
}

// parseClaimArray coerces a model response into a string slice. It first
// tries the whole response as JSON, then the first bracketed region, then
// falls back to splitting lines and stripping bullet markers.
func parseClaimArray(out string) []string {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(out), &arr); err == nil {
		return arr
	}
	if match := jsonArrayRE.FindString(out); match != "" {
		if err := json.Unmarshal([]byte(match), &arr); err == nil {
			return arr
		}
	}

	// Line fallback for models that ignore the JSON instruction
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		line = trimLeadingNumber(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// trimLeadingNumber strips "1." or "2)" style list prefixes
func trimLeadingNumber(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
