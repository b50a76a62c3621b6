package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/claimlens/internal/model"
)

func sampleReport() *model.Report {
	final := 3.895
	prior := 4.6
	return &model.Report{
		ID:         "test-id",
		Question:   "when is the apple event?",
		AnalyzedAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
		Answer: model.Answer{
			Text:    "Apple holds the event in September.",
			Sources: []string{"apple.md"},
		},
		Claims: []string{"Apple plans launch."},
		Verification: []model.VerificationRecord{{
			Claim:        "Apple plans launch.",
			Verdict:      model.VerdictSupport,
			SupportScore: 4.3,
			SourceScore:  &prior,
			FinalScore:   &final,
			Evidence: model.EvidenceBundle{
				LocalSources: []string{"apple.md"},
				WebLinks:     []string{"https://reuters.com/a"},
			},
		}},
		Timings: map[string]float64{"retrieval": 0.12, "answer": 1.5},
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := NewRenderer(false)

	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got model.Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Question != "when is the apple event?" || len(got.Verification) != 1 {
		t.Errorf("report = %+v", got)
	}
	if got.Verification[0].FinalScore == nil || *got.Verification[0].FinalScore != 3.895 {
		t.Errorf("final score = %v", got.Verification[0].FinalScore)
	}
}

func TestMarkdownContainsSections(t *testing.T) {
	r := NewRenderer(true)
	md := r.Markdown(sampleReport())

	for _, want := range []string{
		"# Analysis Report",
		"when is the apple event?",
		"## Answer",
		"Apple holds the event in September.",
		"## Claims",
		"## Verification",
		"Verdict: support",
		"Final score: 3.895",
		"## Timings",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownSkipsTimingsWhenDisabled(t *testing.T) {
	r := NewRenderer(false)
	md := r.Markdown(sampleReport())
	if strings.Contains(md, "## Timings") {
		t.Error("timings rendered when disabled")
	}
}
