package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/claimlens/internal/memory"
	"github.com/ppiankov/claimlens/internal/model"
)

// maxDerivedQuestionChars caps a question derived from an article
const maxDerivedQuestionChars = 200

// QuestionAnswerer produces a grounded answer over retrieved context
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string, history []memory.Turn, docs []model.EvidenceDocument) (model.Answer, error)
}

// ClaimsExtractor pulls verifiable claims from article text
type ClaimsExtractor interface {
	Extract(ctx context.Context, article string) ([]string, error)
}

// Planner rewrites a question into a retrieval plan
type Planner interface {
	Reformulate(ctx context.Context, question string) *model.ReformulationPlan
}

// Retriever searches the local corpus
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error)
}

// Verifier runs the verification step for one claim
type Verifier interface {
	VerifyClaim(ctx context.Context, claim string, opts VerifyOptions) (model.VerificationRecord, error)
}

// ConversationMemory tracks dialogue turns and recalls past exchanges
type ConversationMemory interface {
	RecordTurn(ctx context.Context, sessionID, question, answer string) error
	History(sessionID string) []memory.Turn
	Recall(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error)
}

// AnalyzeRequest is one unit of work: a question, an article, or both
type AnalyzeRequest struct {
	Question  string
	Article   string
	SessionID string
}

// Analyzer orchestrates the full analysis: planning, retrieval,
// answering, claim extraction, and per-claim verification. All
// collaborators are constructed up front; a misconfigured dependency
// fails at startup instead of mid-run.
type Analyzer struct {
	planner   Planner
	retriever Retriever
	answerer  QuestionAnswerer
	extractor ClaimsExtractor
	verifier  Verifier
	memory    ConversationMemory
	knobs     model.Knobs
	log       *slog.Logger
}

// NewAnalyzer wires the pipeline. planner, extractor, and memory may be
// nil, which disables their stages regardless of knobs.
func NewAnalyzer(planner Planner, retriever Retriever, answerer QuestionAnswerer, extractor ClaimsExtractor,
	verifier Verifier, mem ConversationMemory, knobs model.Knobs, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		planner:   planner,
		retriever: retriever,
		answerer:  answerer,
		extractor: extractor,
		verifier:  verifier,
		memory:    mem,
		knobs:     knobs,
		log:       log,
	}
}

// Analyze runs the full pipeline for one request and returns the report.
// Planning and web evidence are best-effort; answering and verification
// failures are fatal.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*model.Report, error) {
	question := workingQuestion(req)
	if question == "" {
		return nil, fmt.Errorf("analyze: empty question and article")
	}

	report := &model.Report{
		ID:         uuid.NewString(),
		Question:   question,
		SessionID:  req.SessionID,
		AnalyzedAt: time.Now().UTC(),
		Claims:     []string{},
		Timings:    make(map[string]float64),
		Knobs:      a.knobs,
	}

	// Planning is advisory: a failed or disabled planner leaves the
	// question as the only retrieval query.
	retrievalQuery := question
	if a.knobs.UseReformulation && a.planner != nil {
		start := time.Now()
		if plan := a.planner.Reformulate(ctx, question); plan != nil {
			report.Plan = plan
			if plan.SemanticQuery != "" {
				retrievalQuery = plan.SemanticQuery
			}
		}
		report.Timings["reformulation"] = time.Since(start).Seconds()
	}

	start := time.Now()
	docs, err := a.retriever.Search(ctx, retrievalQuery, a.knobs.KRetrieval)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if a.memory != nil && a.knobs.KMemory > 0 {
		recalled, err := a.memory.Recall(ctx, retrievalQuery, a.knobs.KMemory)
		if err != nil {
			a.log.Debug("memory recall failed", "error", err)
		} else {
			docs = append(docs, recalled...)
		}
	}
	report.Timings["retrieval"] = time.Since(start).Seconds()

	var history []memory.Turn
	if a.memory != nil {
		history = a.memory.History(req.SessionID)
	}

	start = time.Now()
	answer, err := a.answerer.Answer(ctx, question, history, docs)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	report.Answer = answer
	report.Timings["answer"] = time.Since(start).Seconds()

	if a.memory != nil {
		if err := a.memory.RecordTurn(ctx, req.SessionID, question, answer.Text); err != nil {
			a.log.Debug("record turn failed", "error", err)
		}
	}

	// Without an article the generated answer stands in as the claim
	// source, so question-only runs still get verification.
	sourceText := strings.TrimSpace(req.Article)
	if sourceText == "" {
		sourceText = strings.TrimSpace(answer.Text)
	}

	if a.knobs.DoClaims && a.extractor != nil && sourceText != "" {
		start = time.Now()
		claims, err := a.extractor.Extract(ctx, sourceText)
		if err != nil {
			return nil, fmt.Errorf("extract claims: %w", err)
		}
		report.Claims = claims
		report.Timings["claims"] = time.Since(start).Seconds()

		start = time.Now()
		opts := VerifyOptions{
			UseWeb:        a.knobs.UseWeb,
			SourceScoring: a.knobs.VerifySourceScore,
			Explain:       a.knobs.ExplainScores,
		}
		for _, claim := range claims {
			record, err := a.verifier.VerifyClaim(ctx, claim, opts)
			if err != nil {
				return nil, fmt.Errorf("verify claim %q: %w", claim, err)
			}
			report.Verification = append(report.Verification, record)
		}
		report.Timings["verification"] = time.Since(start).Seconds()
	}

	return report, nil
}

// workingQuestion resolves the question to analyze: an explicit question
// wins, otherwise the article's first line stands in for it.
func workingQuestion(req AnalyzeRequest) string {
	if q := strings.TrimSpace(req.Question); q != "" {
		return q
	}
	article := strings.TrimSpace(req.Article)
	if article == "" {
		return ""
	}
	line := article
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxDerivedQuestionChars {
		line = line[:maxDerivedQuestionChars]
	}
	return line
}
