package retrieve

import (
	"context"
	"testing"

	"github.com/ppiankov/claimlens/internal/model"
)

func TestClaimQuery(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		want  string
	}{
		{
			name:  "strip hedge phrase",
			claim: "Apple is expected to launch a new phone.",
			want:  "Apple launch a new phone",
		},
		{
			name:  "strip attribution tail",
			claim: "Rates will rise, according to people familiar with the matter.",
			want:  "Rates will rise",
		},
		{
			name:  "collapse punctuation",
			claim: "Merger approved -- pending review!",
			want:  "Merger approved pending review",
		},
		{
			name:  "reportedly removed",
			claim: "The company reportedly fired its CEO.",
			want:  "The company fired its CEO",
		},
		{
			name:  "fully hedged claim falls back to original",
			claim: "according to sources",
			want:  "according to sources",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClaimQuery(tt.claim); got != tt.want {
				t.Errorf("ClaimQuery(%q) = %q, want %q", tt.claim, got, tt.want)
			}
		})
	}
}

func TestSelectCapsDocsAndPrefersTitles(t *testing.T) {
	docs := []model.EvidenceDocument{
		{Content: "untitled chunk one"},
		{Content: "titled chunk", Metadata: map[string]string{"title": "Launch coverage"}},
		{Content: "untitled chunk two"},
		{Content: "untitled chunk three"},
	}
	ranker := NewHybridRanker(&fakeIndex{docs: docs}, nil, 1.0, 0.0)
	sel := NewEvidenceSelector(ranker, 3)

	got, err := sel.Select(context.Background(), "launch coverage claim")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d docs, want 3", len(got))
	}
}

func TestSelectTitleWinsTie(t *testing.T) {
	// Force a tie by making both documents sole members of their lists.
	dense := &fakeIndex{docs: []model.EvidenceDocument{{Content: "untitled"}}}
	lex := &fakeIndex{docs: []model.EvidenceDocument{{Content: "titled", Metadata: map[string]string{"title": "T"}}}}
	sel := NewEvidenceSelector(NewHybridRanker(dense, lex, 0.5, 0.5), 2)

	got, err := sel.Select(context.Background(), "some claim text")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d docs, want 2", len(got))
	}
	if got[0].Content != "titled" {
		t.Errorf("tie winner = %q, want the titled document", got[0].Content)
	}
}

func TestNewEvidenceSelectorDefault(t *testing.T) {
	sel := NewEvidenceSelector(NewHybridRanker(nil, nil, 0, 0), 0)
	if sel.maxDocs != 3 {
		t.Errorf("default maxDocs = %d, want 3", sel.maxDocs)
	}
}
