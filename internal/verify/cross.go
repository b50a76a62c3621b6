package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/model"
)

// maxEvidenceChars bounds the evidence block passed to the model
const maxEvidenceChars = 4000

const crossVerifyPrompt = `You are a meticulous fact-checking analyst. Given a claim and a block of
evidence snippets, decide whether the evidence supports the claim,
contradicts it, or is unrelated to it.

Respond with exactly one word: "support", "contradict", or "unrelated".
Do not add punctuation or explanation.

Claim:
%s

Evidence:
%s`

// CrossVerifier asks a language model to judge a claim against gathered
// evidence and normalizes the answer into a canonical verdict.
type CrossVerifier struct {
	gen llm.Generator
}

// NewCrossVerifier wraps a generator. A nil generator is allowed; Verify
// then always returns unrelated, which keeps the verdict a neutral 0 in
// downstream aggregation.
func NewCrossVerifier(gen llm.Generator) *CrossVerifier {
	return &CrossVerifier{gen: gen}
}

// Verify classifies the claim against the combined evidence snippets.
// Model failures degrade to unrelated rather than failing the pipeline.
func (v *CrossVerifier) Verify(ctx context.Context, claim string, snippets []string) model.Verdict {
	if v.gen == nil {
		return model.VerdictUnrelated
	}

	block := buildEvidenceBlock(snippets)
	prompt := fmt.Sprintf(crossVerifyPrompt, claim, block)

	out, err := v.gen.Generate(ctx, prompt)
	if err != nil {
		return model.VerdictUnrelated
	}
	return NormalizeVerdict(out)
}

// buildEvidenceBlock joins snippets and truncates to the model budget.
// An empty evidence set becomes "." so the prompt still has a body.
func buildEvidenceBlock(snippets []string) string {
	var kept []string
	for _, s := range snippets {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	block := strings.Join(kept, "\n\n")
	if block == "" {
		return "."
	}
	if len(block) > maxEvidenceChars {
		block = block[:maxEvidenceChars]
	}
	return block
}
