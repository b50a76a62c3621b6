package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/claimlens/internal/memory"
	"github.com/ppiankov/claimlens/internal/model"
)

type fakeGenerator struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return true }

func TestAnswerBuildsPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "Apple announced a launch event for September."}
	a := NewAnswerer(gen)

	history := []memory.Turn{{Question: "any news?", Answer: "not yet"}}
	docs := []model.EvidenceDocument{
		{Content: "Apple announced a launch event scheduled for September.", Metadata: map[string]string{"source": "notes/apple.md"}},
	}

	ans, err := a.Answer(context.Background(), "when is the apple event?", history, docs)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != "Apple announced a launch event for September." {
		t.Errorf("Text = %q", ans.Text)
	}
	for _, want := range []string{"any news?", "not yet", "Apple announced a launch event scheduled", "when is the apple event?"} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if ans.LatencyS < 0 {
		t.Errorf("LatencyS = %v", ans.LatencyS)
	}
}

func TestAnswerCitesOverlappingSources(t *testing.T) {
	gen := &fakeGenerator{reply: "Apple announced a launch event scheduled for September."}
	a := NewAnswerer(gen)

	docs := []model.EvidenceDocument{
		{Content: "Apple announced a launch event scheduled for September.", Metadata: map[string]string{"source": "notes/apple.md"}},
		{Content: "Completely unconnected text regarding marine biology habitats.", Metadata: map[string]string{"source": "notes/ocean.md"}},
	}

	ans, err := a.Answer(context.Background(), "q", nil, docs)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(ans.Sources) != 1 || !strings.Contains(ans.Sources[0], "apple.md") {
		t.Errorf("Sources = %v", ans.Sources)
	}
}

func TestAnswerGeneratorError(t *testing.T) {
	a := NewAnswerer(&fakeGenerator{err: errors.New("down")})
	if _, err := a.Answer(context.Background(), "q", nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnswerWithoutGenerator(t *testing.T) {
	a := NewAnswerer(nil)
	ans, err := a.Answer(context.Background(), "q", nil, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text == "" {
		t.Error("expected explanatory text")
	}
}

func TestFormatHistoryEmpty(t *testing.T) {
	if got := formatHistory(nil); got != "(none)" {
		t.Errorf("formatHistory(nil) = %q", got)
	}
}

func TestFormatContextSeparator(t *testing.T) {
	got := formatContext([]string{"a", "b"})
	if got != "a\n---\nb" {
		t.Errorf("formatContext = %q", got)
	}
}
