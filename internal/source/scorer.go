package source

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/claimlens/internal/cache"
	"github.com/ppiankov/claimlens/internal/llm"
)

// fallbackCacheTTL bounds how long an LLM-assigned prior is reused.
// Publisher reputation drifts slowly, so a long TTL is safe.
const fallbackCacheTTL = 7 * 24 * time.Hour

// NeutralPrior is returned whenever no tier can produce a confident score
const NeutralPrior = 2.5

// classifierConfidenceThreshold gates the secondary classifier: results below
// it are ignored entirely, never blended.
const classifierConfidenceThreshold = 0.7

// defaultReputation holds hand-assigned publisher priors on a 1.0-5.0 scale.
// Wire services and major outlets score high; user-generated platforms low.
var defaultReputation = map[string]float64{
	// Wire & mainstream
	"reuters.com":     4.6,
	"apnews.com":      4.5,
	"bbc.com":         4.3,
	"nytimes.com":     4.2,
	"theguardian.com": 4.1,
	"bloomberg.com":   4.3,
	"wsj.com":         4.2,
	"ft.com":          4.2,

	// Tech/business
	"theverge.com":    3.9,
	"techcrunch.com":  3.8,
	"arstechnica.com": 4.0,
	"engadget.com":    3.7,

	// Company newsrooms: reliable for their own announcements, still PR
	"apple.com":          3.6,
	"googleblog.com":     3.6,
	"about.fb.com":       3.4,
	"news.microsoft.com": 3.6,

	// Social & noisy
	"twitter.com": 2.0,
	"tiktok.com":  1.5,
	"reddit.com":  2.3,
}

const reputationFallbackPrompt = `You are an expert media reliability researcher. Assign a conservative
credibility prior (1.0-5.0, one decimal place) to a news publisher domain.

Consider editorial standards, track record for factual accuracy, and
independence from PR voice. Heavily user-generated or short-form social video
sites score lower as primary sources. Avoid political bias judgments.

Rules:
- Output only the number (e.g. 4.2), no words, no units, no explanation.
- One decimal place, clamped between 1.0 and 5.0.
- If the domain is unknown, choose a careful neutral value between 2.3 and 2.9.

[DOMAIN]
%s

[NUMBER ONLY]`

// Classifier is an optional secondary scorer consulted when the curated table
// has no entry. It returns a prior plus a confidence in [0,1].
type Classifier interface {
	Classify(domain string) (score float64, confidence float64)
}

// Scorer resolves a source identifier to a credibility prior in [1.0, 5.0].
//
// Resolution order, first success wins: curated table (exact, then
// registrable-domain collapse), secondary classifier above the confidence
// threshold, optional LLM fallback, neutral default. The output is always
// clamped and rounded to one decimal regardless of which tier produced it.
type Scorer struct {
	table      map[string]float64
	classifier Classifier
	fallback   llm.Generator
	cache      cache.Cache
}

// NewScorer creates a scorer. overrides are merged over the built-in table
// once, at construction; the merged table is never mutated afterwards.
// classifier and fallback may be nil to disable those tiers.
func NewScorer(overrides map[string]float64, classifier Classifier, fallback llm.Generator) *Scorer {
	table := make(map[string]float64, len(defaultReputation)+len(overrides))
	for k, v := range defaultReputation {
		table[k] = v
	}
	for k, v := range overrides {
		table[NormalizeDomain(k)] = v
	}

	return &Scorer{
		table:      table,
		classifier: classifier,
		fallback:   fallback,
	}
}

// WithCache reuses LLM fallback scores across runs. Table and classifier
// tiers are cheap and never cached.
func (s *Scorer) WithCache(c cache.Cache) *Scorer {
	s.cache = c
	return s
}

// Score returns a credibility prior for a publisher identified by a URL,
// a bare domain, or a citation label. It has no failure mode: every tier
// degrades to the neutral prior.
func (s *Scorer) Score(ctx context.Context, identifier string) float64 {
	domain := NormalizeDomain(identifier)
	if domain == "" {
		return NeutralPrior
	}

	if hit, ok := s.lookupTable(domain); ok {
		return roundPrior(hit)
	}

	if s.classifier != nil {
		score, confidence := s.classifier.Classify(domain)
		if confidence >= classifierConfidenceThreshold {
			return roundPrior(score)
		}
	}

	if s.fallback != nil {
		return roundPrior(s.fallbackScore(ctx, domain))
	}

	return NeutralPrior
}

// lookupTable checks the curated table, retrying after subdomain collapse
func (s *Scorer) lookupTable(domain string) (float64, bool) {
	if v, ok := s.table[domain]; ok {
		return v, true
	}
	if collapsed := RegistrableDomain(domain); collapsed != domain {
		if v, ok := s.table[collapsed]; ok {
			return v, true
		}
	}
	return 0, false
}

// fallbackScore asks the text generator for a single decimal number.
// Any failure, including unparseable output, yields the neutral prior.
func (s *Scorer) fallbackScore(ctx context.Context, domain string) float64 {
	cacheKey := cache.Key("prior:" + domain)
	if s.cache != nil {
		if data, ok := s.cache.Get(cacheKey); ok {
			if val, err := strconv.ParseFloat(string(data), 64); err == nil {
				return val
			}
		}
	}

	raw, err := s.fallback.Generate(ctx, fmt.Sprintf(reputationFallbackPrompt, domain))
	if err != nil {
		return NeutralPrior
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return NeutralPrior
	}

	if s.cache != nil {
		_ = s.cache.Set(cacheKey, []byte(strconv.FormatFloat(val, 'f', -1, 64)), fallbackCacheTTL)
	}
	return val
}

// roundPrior clamps to [1.0, 5.0] and rounds to one decimal
func roundPrior(v float64) float64 {
	v = math.Max(1.0, math.Min(5.0, v))
	return math.Round(v*10) / 10
}
