package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/memory"
	"github.com/ppiankov/claimlens/internal/model"
)

const answerPrompt = `You are a seasoned news analyst. Answer the question using only the
provided context snippets and conversation history. If the context does not
contain the answer, say so plainly instead of guessing. Keep the answer to a
few sentences.

Conversation history:
%s

Context snippets:
%s

Question:
%s`

// minSourceOverlap is the fraction of a snippet's tokens that must
// appear in the answer for its source to be cited.
const minSourceOverlap = 0.12

// Answerer generates grounded answers over retrieved context.
type Answerer struct {
	gen llm.Generator
}

func NewAnswerer(gen llm.Generator) *Answerer {
	return &Answerer{gen: gen}
}

// Answer responds to the question using evidence documents and recent
// turns. Cited sources are filtered to documents whose content actually
// overlaps the generated answer.
func (a *Answerer) Answer(ctx context.Context, question string, history []memory.Turn, docs []model.EvidenceDocument) (model.Answer, error) {
	start := time.Now()

	if a.gen == nil {
		return model.Answer{
			Text:     "No language model is configured, so the question cannot be answered.",
			LatencyS: time.Since(start).Seconds(),
		}, nil
	}

	snippets := make([]string, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, d.Content)
	}

	prompt := fmt.Sprintf(answerPrompt, formatHistory(history), formatContext(snippets), question)
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return model.Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	text = strings.TrimSpace(text)

	return model.Answer{
		Text:     text,
		Sources:  citedSources(text, docs),
		LatencyS: time.Since(start).Seconds(),
	}, nil
}

// formatHistory renders recent turns oldest first
func formatHistory(history []memory.Turn) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "User: %s\nAnalyst: %s\n", turn.Question, turn.Answer)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatContext joins snippets with a separator line so the model sees
// document boundaries.
func formatContext(snippets []string) string {
	if len(snippets) == 0 {
		return "(none)"
	}
	return strings.Join(snippets, "\n---\n")
}

// citedSources keeps the source labels of documents whose tokens
// meaningfully overlap the answer. This drops retrieved-but-unused
// documents from the citation list.
func citedSources(answer string, docs []model.EvidenceDocument) []string {
	answerTokens := tokenSet(answer)
	if len(answerTokens) == 0 {
		return nil
	}

	var sources []string
	seen := make(map[string]bool)
	for _, d := range docs {
		docTokens := tokenSet(d.Content)
		if len(docTokens) == 0 {
			continue
		}
		overlap := 0
		for tok := range docTokens {
			if answerTokens[tok] {
				overlap++
			}
		}
		if float64(overlap)/float64(len(docTokens)) < minSourceOverlap {
			continue
		}
		label := d.SourceLabel()
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		sources = append(sources, label)
	}
	return sources
}

// tokenSet lower-cases and splits on non-letters, dropping short tokens
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(tok) >= 3 {
			set[tok] = true
		}
	}
	return set
}
