package score

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/model"
)

// Heuristic support-score constants derived from the verdict alone.
// Fixed magic numbers by contract, not derived from retrieval confidence.
const (
	SupportScoreAgree    = 4.3
	SupportScoreConflict = 1.7
	SupportScoreNeutral  = 3.0
)

const explainPrompt = `You are an expert critical evaluation instructor for evidence appraisal.
Briefly explain how a credibility score was computed using a weighted sum of
three components for a single claim assessment.

Inputs:
- Evidence support score S_e on a 1-5 scale: %.2f
- Source credibility prior S_s on a 1-5 scale: %.2f
- Cross-verification label L_c in {support, contradict, unrelated}: %s
- Weights (use exactly): w_e = %.2f, w_s = %.2f, w_c = %.2f
- Mapping for L_c to numeric C: support -> +1, contradict -> -1, unrelated -> 0

Rules:
1) The final score F is a weighted sum, not an average:
   F = (S_e x w_e) + (S_s x w_s) + (C x w_c)
2) Do not invent numbers. Use only the provided values and weights.
3) Be concise (at most 4 sentences), neutral, and clear.
4) Mention the mapping from the cross-verification label to its numeric C.
5) Conclude with the resulting score on the 1-5 scale: %.3f

Claim (for context only; do not re-score it):
%s

Produce a short paragraph, no lists or headings.`

// Aggregator combines evidence support, source credibility, and the
// cross-verification verdict into one final score under fixed weights.
type Aggregator struct {
	wEvidence float64
	wSource   float64
	wCross    float64
	explainer llm.Generator // nil disables LLM explanations
}

// NewAggregator creates an aggregator from validated configuration weights.
// The weights are fixed at construction and never renormalized: evidence
// quality is meant to dominate, source reputation is secondary, and
// cross-verification is a smaller corrective nudge.
func NewAggregator(weights map[string]float64, explainer llm.Generator) (*Aggregator, error) {
	for _, key := range []string{model.WeightEvidenceSupport, model.WeightSourceCredibility, model.WeightCrossVerification} {
		if _, ok := weights[key]; !ok {
			return nil, fmt.Errorf("aggregator: missing weight %q", key)
		}
	}

	return &Aggregator{
		wEvidence: weights[model.WeightEvidenceSupport],
		wSource:   weights[model.WeightSourceCredibility],
		wCross:    weights[model.WeightCrossVerification],
		explainer: explainer,
	}, nil
}

// verdictNumeric maps a verdict to its numeric evidence value C.
// Unrecognized labels map to 0, same as unrelated.
func verdictNumeric(v model.Verdict) float64 {
	switch v {
	case model.VerdictSupport:
		return 1.0
	case model.VerdictContradict:
		return -1.0
	default:
		return 0.0
	}
}

// Aggregate computes the deterministic weighted sum
// F = S_e*w_e + S_s*w_s + C*w_c, clamped once to [1.0, 5.0] after the full
// sum and rounded to three decimals. Intermediate terms are never clamped.
func (a *Aggregator) Aggregate(supportScore, sourceScore float64, verdict model.Verdict) float64 {
	raw := a.wEvidence*supportScore + a.wSource*sourceScore + a.wCross*verdictNumeric(verdict)

	clamped := math.Max(1.0, math.Min(5.0, raw))
	return math.Round(clamped*1000) / 1000
}

// SupportScoreFor returns the heuristic evidence-support score for a verdict
func SupportScoreFor(verdict model.Verdict) float64 {
	switch verdict {
	case model.VerdictSupport:
		return SupportScoreAgree
	case model.VerdictContradict:
		return SupportScoreConflict
	default:
		return SupportScoreNeutral
	}
}

// Explain produces a short justification referencing the exact inputs,
// weights, and the verdict mapping. The LLM path is optional; the templated
// fallback is fully deterministic and never fails.
func (a *Aggregator) Explain(ctx context.Context, claim string, supportScore, sourceScore float64, verdict model.Verdict, finalScore float64) string {
	if a.explainer != nil {
		prompt := fmt.Sprintf(explainPrompt,
			supportScore, sourceScore, verdict,
			a.wEvidence, a.wSource, a.wCross,
			finalScore, claim,
		)
		if text, err := a.explainer.Generate(ctx, prompt); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
	}
	return a.deterministicExplanation(supportScore, sourceScore, verdict, finalScore)
}

// deterministicExplanation builds the fallback sentence purely from numbers
func (a *Aggregator) deterministicExplanation(supportScore, sourceScore float64, verdict model.Verdict, finalScore float64) string {
	mapped := "0"
	switch verdict {
	case model.VerdictSupport:
		mapped = "+1"
	case model.VerdictContradict:
		mapped = "-1"
	}

	return fmt.Sprintf(
		"We computed the credibility as a weighted sum: F = (evidence %.2f x %.2f) + (source %.2f x %.2f) + (cross %s x %.2f). "+
			"The cross-verification label %q maps to %s. "+
			"This yields a final score of %.3f on a 1-5 scale for the claim.",
		supportScore, a.wEvidence, sourceScore, a.wSource, mapped, a.wCross,
		verdict, mapped, finalScore,
	)
}
