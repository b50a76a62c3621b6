package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/claimlens/internal/memory"
	"github.com/ppiankov/claimlens/internal/model"
)

type fakePlanner struct{ plan *model.ReformulationPlan }

func (f *fakePlanner) Reformulate(_ context.Context, _ string) *model.ReformulationPlan {
	return f.plan
}

type fakeRetriever struct {
	docs      []model.EvidenceDocument
	lastQuery string
	lastK     int
}

func (f *fakeRetriever) Search(_ context.Context, query string, k int) ([]model.EvidenceDocument, error) {
	f.lastQuery = query
	f.lastK = k
	return f.docs, nil
}

type fakeAnswerer struct {
	answer  model.Answer
	err     error
	gotDocs int
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string, _ []memory.Turn, docs []model.EvidenceDocument) (model.Answer, error) {
	f.gotDocs = len(docs)
	return f.answer, f.err
}

type fakeExtractor struct {
	claims  []string
	gotText string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) ([]string, error) {
	f.gotText = text
	return f.claims, nil
}

type fakeVerifier struct {
	records map[string]model.VerificationRecord
	err     error
	gotOpts VerifyOptions
}

func (f *fakeVerifier) VerifyClaim(_ context.Context, claim string, opts VerifyOptions) (model.VerificationRecord, error) {
	f.gotOpts = opts
	if f.err != nil {
		return model.VerificationRecord{}, f.err
	}
	if rec, ok := f.records[claim]; ok {
		return rec, nil
	}
	return model.VerificationRecord{Claim: claim, Verdict: model.VerdictUnrelated}, nil
}

type fakeMemory struct {
	turns    []memory.Turn
	recalled []model.EvidenceDocument
	recorded []string
}

func (f *fakeMemory) RecordTurn(_ context.Context, sessionID, question, _ string) error {
	f.recorded = append(f.recorded, sessionID+"|"+question)
	return nil
}

func (f *fakeMemory) History(_ string) []memory.Turn { return f.turns }

func (f *fakeMemory) Recall(_ context.Context, _ string, _ int) ([]model.EvidenceDocument, error) {
	return f.recalled, nil
}

func defaultKnobs() model.Knobs {
	return model.Knobs{
		UseReformulation:  true,
		DoClaims:          true,
		VerifySourceScore: true,
		UseWeb:            true,
		ExplainScores:     false,
		KRetrieval:        8,
		KMemory:           2,
		MaxClaims:         8,
	}
}

func TestAnalyzeFullFlow(t *testing.T) {
	final := 3.895
	prior := 4.6
	verifier := &fakeVerifier{records: map[string]model.VerificationRecord{
		"Apple plans launch.": {
			Claim:        "Apple plans launch.",
			Verdict:      model.VerdictSupport,
			SupportScore: 4.3,
			SourceScore:  &prior,
			FinalScore:   &final,
		},
	}}
	planner := &fakePlanner{plan: &model.ReformulationPlan{
		SemanticQuery:  "When is Apple holding its launch event?",
		KeywordQueries: []string{"apple launch event"},
	}}
	retriever := &fakeRetriever{docs: []model.EvidenceDocument{{Content: "local doc"}}}
	mem := &fakeMemory{recalled: []model.EvidenceDocument{{Content: "recalled turn"}}}
	answerer := &fakeAnswerer{answer: model.Answer{Text: "Apple holds the event in September."}}

	a := NewAnalyzer(planner, retriever, answerer, &fakeExtractor{claims: []string{"Apple plans launch."}},
		verifier, mem, defaultKnobs(), nil)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{
		Question:  "when is the apple event?",
		Article:   "Apple plans launch.\nFull article body.",
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.ID == "" {
		t.Error("missing report ID")
	}
	if report.Plan == nil || report.Plan.SemanticQuery == "" {
		t.Error("plan not recorded")
	}
	if retriever.lastQuery != "When is Apple holding its launch event?" {
		t.Errorf("retrieval query = %q, want the reformulated one", retriever.lastQuery)
	}
	if retriever.lastK != 8 {
		t.Errorf("retrieval k = %d", retriever.lastK)
	}
	if answerer.gotDocs != 2 {
		t.Errorf("answerer saw %d docs, want local + recalled", answerer.gotDocs)
	}
	if len(mem.recorded) != 1 || mem.recorded[0] != "s1|when is the apple event?" {
		t.Errorf("recorded turns = %v", mem.recorded)
	}
	if len(report.Verification) != 1 {
		t.Fatalf("verification records = %d", len(report.Verification))
	}
	rec := report.Verification[0]
	if rec.Verdict != model.VerdictSupport || rec.FinalScore == nil || *rec.FinalScore != 3.895 {
		t.Errorf("record = %+v", rec)
	}
	if !verifier.gotOpts.UseWeb || !verifier.gotOpts.SourceScoring {
		t.Errorf("verify options = %+v", verifier.gotOpts)
	}
	for _, stage := range []string{"reformulation", "retrieval", "answer", "claims", "verification"} {
		if _, ok := report.Timings[stage]; !ok {
			t.Errorf("missing timing for %s", stage)
		}
	}
}

func TestAnalyzeDerivesQuestionFromArticle(t *testing.T) {
	answerer := &fakeAnswerer{answer: model.Answer{Text: "answer"}}
	a := NewAnalyzer(nil, &fakeRetriever{}, answerer, &fakeExtractor{}, &fakeVerifier{}, nil, model.Knobs{KRetrieval: 3}, nil)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{
		Article: "Regulators approved the merger on Friday.\nMore details follow.",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Question != "Regulators approved the merger on Friday." {
		t.Errorf("derived question = %q", report.Question)
	}
}

func TestAnalyzeEmptyRequest(t *testing.T) {
	a := NewAnalyzer(nil, &fakeRetriever{}, &fakeAnswerer{}, nil, nil, nil, model.Knobs{}, nil)
	if _, err := a.Analyze(context.Background(), AnalyzeRequest{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestAnalyzeExtractsClaimsFromAnswerWithoutArticle(t *testing.T) {
	extractor := &fakeExtractor{claims: []string{"Apple holds the event in September."}}
	a := NewAnalyzer(nil, &fakeRetriever{},
		&fakeAnswerer{answer: model.Answer{Text: "Apple holds the event in September."}},
		extractor, &fakeVerifier{}, nil,
		model.Knobs{DoClaims: true, KRetrieval: 3}, nil)

	report, err := a.Analyze(context.Background(), AnalyzeRequest{Question: "when is the apple event?"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if extractor.gotText != "Apple holds the event in September." {
		t.Errorf("extractor saw %q, want the answer text", extractor.gotText)
	}
	if len(report.Claims) != 1 || len(report.Verification) != 1 {
		t.Errorf("claims = %v, verification = %d", report.Claims, len(report.Verification))
	}
}

func TestAnalyzeArticleWinsOverAnswerForClaims(t *testing.T) {
	extractor := &fakeExtractor{claims: []string{"claim"}}
	a := NewAnalyzer(nil, &fakeRetriever{},
		&fakeAnswerer{answer: model.Answer{Text: "generated answer"}},
		extractor, &fakeVerifier{}, nil,
		model.Knobs{DoClaims: true, KRetrieval: 3}, nil)

	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Question: "q", Article: "article body"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if extractor.gotText != "article body" {
		t.Errorf("extractor saw %q, want the article", extractor.gotText)
	}
}

func TestAnalyzeVerifierErrorIsFatal(t *testing.T) {
	a := NewAnalyzer(nil, &fakeRetriever{}, &fakeAnswerer{answer: model.Answer{Text: "a"}},
		&fakeExtractor{claims: []string{"claim"}}, &fakeVerifier{err: errors.New("boom")}, nil,
		model.Knobs{DoClaims: true, KRetrieval: 3}, nil)

	if _, err := a.Analyze(context.Background(), AnalyzeRequest{Question: "q", Article: "body"}); err == nil {
		t.Fatal("expected verification error")
	}
}

func TestWorkingQuestionTruncation(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	req := AnalyzeRequest{Article: string(long)}
	if got := workingQuestion(req); len(got) != maxDerivedQuestionChars {
		t.Errorf("derived question length = %d, want %d", len(got), maxDerivedQuestionChars)
	}
}
