package retrieve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

// hedgePatterns remove speculation phrasing from claims before they are
// used as retrieval queries. Hedged wording drags keyword search toward
// opinion pieces instead of the underlying fact.
var hedgePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bis expected to\b`),
	regexp.MustCompile(`(?i)\bis likely to\b`),
	regexp.MustCompile(`(?i)\bis rumored to\b`),
	regexp.MustCompile(`(?i)\bis believed to\b`),
	regexp.MustCompile(`(?i)\breportedly\b`),
	regexp.MustCompile(`(?i)\ballegedly\b`),
	regexp.MustCompile(`(?i)\baccording to\b.*$`),
	regexp.MustCompile(`(?i)\bsources say\b.*$`),
}

// nonWordRE collapses anything that is not a word character into a space
var nonWordRE = regexp.MustCompile(`[^\w]+`)

// ClaimQuery converts a claim into a retrieval query by stripping hedge
// phrases and punctuation. A claim reduced to nothing falls back to its
// original text.
func ClaimQuery(claim string) string {
	q := claim
	for _, re := range hedgePatterns {
		q = re.ReplaceAllString(q, " ")
	}
	q = nonWordRE.ReplaceAllString(q, " ")
	q = strings.TrimSpace(q)
	if q == "" {
		return strings.TrimSpace(claim)
	}
	return q
}

// EvidenceSelector pulls the strongest local documents for a claim.
type EvidenceSelector struct {
	ranker  *HybridRanker
	maxDocs int
}

// NewEvidenceSelector builds a selector over the hybrid ranker. maxDocs
// values below 1 fall back to 3.
func NewEvidenceSelector(ranker *HybridRanker, maxDocs int) *EvidenceSelector {
	if maxDocs < 1 {
		maxDocs = 3
	}
	return &EvidenceSelector{ranker: ranker, maxDocs: maxDocs}
}

// Select retrieves up to maxDocs documents for a claim, querying with the
// hedge-stripped form. Documents carrying a title are preferred on ties
// since titled chunks tend to be article leads rather than body fragments.
func (s *EvidenceSelector) Select(ctx context.Context, claim string) ([]model.EvidenceDocument, error) {
	query := ClaimQuery(claim)
	docs, err := s.ranker.Search(ctx, query, s.maxDocs*2)
	if err != nil {
		return nil, fmt.Errorf("select evidence: %w", err)
	}

	for i := 1; i < len(docs); i++ {
		if docs[i].Score == docs[i-1].Score && hasTitle(docs[i]) && !hasTitle(docs[i-1]) {
			docs[i], docs[i-1] = docs[i-1], docs[i]
		}
	}

	if len(docs) > s.maxDocs {
		docs = docs[:s.maxDocs]
	}
	return docs, nil
}

func hasTitle(d model.EvidenceDocument) bool {
	return strings.TrimSpace(d.Metadata["title"]) != ""
}
