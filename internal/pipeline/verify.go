package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/score"
	"github.com/ppiankov/claimlens/internal/source"
	"github.com/ppiankov/claimlens/internal/verify"
)

// EvidenceRetriever selects local evidence documents for a claim
type EvidenceRetriever interface {
	Select(ctx context.Context, claim string) ([]model.EvidenceDocument, error)
}

// WebSearcher runs an external web search
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]model.WebResult, error)
}

// SnippetEnricher fetches page text to replace thin search snippets
type SnippetEnricher interface {
	Snippet(ctx context.Context, url string) string
}

// PriorScorer maps a source identifier to a credibility prior
type PriorScorer interface {
	Score(ctx context.Context, identifier string) float64
}

// ClaimVerifier runs the full verification step for one claim: local
// retrieval, best-effort web search, cross-verification, and score
// aggregation.
type ClaimVerifier struct {
	retriever  EvidenceRetriever
	searcher   WebSearcher // nil disables web evidence
	enricher   SnippetEnricher
	verifier   *verify.CrossVerifier
	priors     PriorScorer
	aggregator *score.Aggregator
	log        *slog.Logger
}

// VerifyOptions toggle the optional parts of the step per run
type VerifyOptions struct {
	UseWeb        bool
	SourceScoring bool
	Explain       bool
}

// NewClaimVerifier wires the verification step. searcher and enricher
// may be nil; the step then runs on local evidence alone.
func NewClaimVerifier(retriever EvidenceRetriever, searcher WebSearcher, enricher SnippetEnricher,
	verifier *verify.CrossVerifier, priors PriorScorer, aggregator *score.Aggregator, log *slog.Logger) *ClaimVerifier {
	if log == nil {
		log = slog.Default()
	}
	return &ClaimVerifier{
		retriever:  retriever,
		searcher:   searcher,
		enricher:   enricher,
		verifier:   verifier,
		priors:     priors,
		aggregator: aggregator,
		log:        log,
	}
}

// VerifyClaim executes the step. Local retrieval failures are fatal;
// web evidence is best-effort and its failures only reduce the evidence
// pool.
func (v *ClaimVerifier) VerifyClaim(ctx context.Context, claim string, opts VerifyOptions) (model.VerificationRecord, error) {
	record := model.VerificationRecord{Claim: claim}

	localDocs, err := v.retriever.Select(ctx, claim)
	if err != nil {
		return record, fmt.Errorf("local evidence: %w", err)
	}
	seenSources := make(map[string]bool)
	for _, d := range localDocs {
		record.Evidence.LocalSnippets = append(record.Evidence.LocalSnippets, d.Content)
		label := d.SourceLabel()
		if seenSources[label] {
			continue
		}
		seenSources[label] = true
		record.Evidence.LocalSources = append(record.Evidence.LocalSources, label)
	}

	if opts.UseWeb && v.searcher != nil {
		results, err := v.searcher.Search(ctx, claim)
		if err != nil {
			v.log.Debug("web search failed", "claim", claim, "error", err)
		}
		for _, r := range results {
			snippet := strings.TrimSpace(r.Snippet)
			if snippet == "" && v.enricher != nil {
				snippet = v.enricher.Snippet(ctx, r.Link)
			}
			if snippet == "" {
				snippet = strings.TrimSpace(r.Title)
			}
			if snippet != "" {
				record.Evidence.WebSnippets = append(record.Evidence.WebSnippets, snippet)
			}
			if r.Link != "" {
				record.Evidence.WebLinks = append(record.Evidence.WebLinks, r.Link)
			}
		}
	}

	snippets := append(append([]string(nil), record.Evidence.LocalSnippets...), record.Evidence.WebSnippets...)
	record.Verdict = v.verifier.Verify(ctx, claim, snippets)
	record.SupportScore = score.SupportScoreFor(record.Verdict)

	if opts.SourceScoring && v.priors != nil {
		prior := v.bestPrior(ctx, record.Evidence.LocalSources)
		final := v.aggregator.Aggregate(record.SupportScore, prior, record.Verdict)
		record.SourceScore = &prior
		record.FinalScore = &final

		if opts.Explain {
			record.Explanation = v.aggregator.Explain(ctx, claim, record.SupportScore, prior, record.Verdict, final)
		}
	}

	return record, nil
}

// bestPrior takes the most credible local evidence source, never dropping
// below the neutral prior. Web results feed the verdict but not the source
// prior; a single reputable local outlet should lift the claim, not be
// averaged away.
func (v *ClaimVerifier) bestPrior(ctx context.Context, localSources []string) float64 {
	best := source.NeutralPrior
	for _, src := range localSources {
		if p := v.priors.Score(ctx, src); p > best {
			best = p
		}
	}
	return best
}
