package query

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/model"
)

const (
	maxKeywordQueries   = 5
	maxPreferredDomains = 8
	minQueryWords       = 3
	maxQueryWords       = 9
)

// defaultDomains seed the plan when the model suggests none
var defaultDomains = []string{
	"reuters.com", "apnews.com", "bbc.com", "theverge.com", "bloomberg.com",
}

const reformulatePrompt = `You are a search strategist for a news verification system. Rewrite the
user question into retrieval queries.

Return ONLY a JSON object with exactly these keys:
- "keyword_queries": array of short keyword search strings (3 to %d words each)
- "semantic_query": one well-formed sentence capturing the information need
- "preferred_domains": array of news domains likely to cover this topic

Question:
%s`

// jsonObjectRE locates the first JSON object in a chatty response
var jsonObjectRE = regexp.MustCompile(`\{[\s\S]*\}`)

// rawPlan mirrors the model's JSON contract
type rawPlan struct {
	KeywordQueries   []string `json:"keyword_queries"`
	SemanticQuery    string   `json:"semantic_query"`
	PreferredDomains []string `json:"preferred_domains"`
}

// Reformulator turns a question into a retrieval plan via a language
// model, with deterministic fallbacks so it never returns an empty plan.
type Reformulator struct {
	gen llm.Generator
}

func NewReformulator(gen llm.Generator) *Reformulator {
	return &Reformulator{gen: gen}
}

// Reformulate builds a plan for the question. Model failure or an
// unparseable reply degrades to the deterministic default plan; the
// returned error is nil in that case because planning is best-effort.
func (r *Reformulator) Reformulate(ctx context.Context, question string) *model.ReformulationPlan {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	if r.gen == nil {
		return defaultPlan(question)
	}

	prompt := fmt.Sprintf(reformulatePrompt, maxQueryWords, question)
	out, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return defaultPlan(question)
	}

	raw, ok := parsePlan(out)
	if !ok {
		return defaultPlan(question)
	}
	return normalizePlan(raw, question)
}

// parsePlan tries the whole reply as JSON, then the first braced region
func parsePlan(out string) (rawPlan, bool) {
	var raw rawPlan
	out = strings.TrimSpace(out)
	if err := json.Unmarshal([]byte(out), &raw); err == nil {
		return raw, true
	}
	if match := jsonObjectRE.FindString(out); match != "" {
		if err := json.Unmarshal([]byte(match), &raw); err == nil {
			return raw, true
		}
	}
	return rawPlan{}, false
}

// normalizePlan filters and caps the model's suggestions, backfilling
// anything missing from the deterministic defaults.
func normalizePlan(raw rawPlan, question string) *model.ReformulationPlan {
	plan := &model.ReformulationPlan{
		SemanticQuery: strings.TrimSpace(raw.SemanticQuery),
	}
	if plan.SemanticQuery == "" {
		plan.SemanticQuery = question
	}

	seen := make(map[string]bool)
	for _, q := range raw.KeywordQueries {
		q = strings.TrimSpace(q)
		words := len(strings.Fields(q))
		if words < minQueryWords || words > maxQueryWords {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		plan.KeywordQueries = append(plan.KeywordQueries, q)
		if len(plan.KeywordQueries) == maxKeywordQueries {
			break
		}
	}
	if len(plan.KeywordQueries) == 0 {
		plan.KeywordQueries = []string{keywordFallback(question)}
	}

	seenDomains := make(map[string]bool)
	for _, d := range raw.PreferredDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || !strings.Contains(d, ".") || seenDomains[d] {
			continue
		}
		seenDomains[d] = true
		plan.PreferredDomains = append(plan.PreferredDomains, d)
		if len(plan.PreferredDomains) == maxPreferredDomains {
			break
		}
	}
	if len(plan.PreferredDomains) == 0 {
		plan.PreferredDomains = append([]string(nil), defaultDomains...)
	}

	return plan
}

// defaultPlan is the no-model plan: the question itself as the semantic
// query, its content words as the keyword query, and the stock domains.
func defaultPlan(question string) *model.ReformulationPlan {
	return &model.ReformulationPlan{
		KeywordQueries:   []string{keywordFallback(question)},
		SemanticQuery:    question,
		PreferredDomains: append([]string(nil), defaultDomains...),
	}
}

// keywordFallback strips punctuation and caps the question at the query
// word budget.
func keywordFallback(question string) string {
	cleaned := regexp.MustCompile(`[^\w\s]`).ReplaceAllString(question, " ")
	words := strings.Fields(cleaned)
	if len(words) > maxQueryWords {
		words = words[:maxQueryWords]
	}
	return strings.Join(words, " ")
}
