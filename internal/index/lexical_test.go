package index

import (
	"context"
	"testing"

	"github.com/ppiankov/claimlens/internal/model"
)

func newMemIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := OpenBleveIndex("")
	if err != nil {
		t.Fatalf("OpenBleveIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestBleveAddAndSearch(t *testing.T) {
	idx := newMemIndex(t)

	docs := []model.EvidenceDocument{
		{Content: "Apple announced a hardware launch event for September.", Metadata: map[string]string{"source": "theverge.com"}},
		{Content: "The central bank raised rates by a quarter point."},
	}
	if err := idx.Add(context.Background(), docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := idx.Search(context.Background(), "apple launch event", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no hits")
	}
	if got[0].Content != docs[0].Content {
		t.Errorf("top hit = %q", got[0].Content)
	}
	if got[0].Metadata["source"] != "theverge.com" {
		t.Errorf("metadata = %v", got[0].Metadata)
	}
	if got[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", got[0].Score)
	}
}

func TestBleveSearchEmptyQuery(t *testing.T) {
	idx := newMemIndex(t)
	if err := idx.Add(context.Background(), []model.EvidenceDocument{{Content: "something"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := idx.Search(context.Background(), "  ", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Errorf("Search on blank query = %v, want nil", got)
	}
}

func TestBleveSearchHonorsK(t *testing.T) {
	idx := newMemIndex(t)

	docs := []model.EvidenceDocument{
		{Content: "launch day one coverage"},
		{Content: "launch day two coverage"},
		{Content: "launch day three coverage"},
	}
	if err := idx.Add(context.Background(), docs); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := idx.Search(context.Background(), "launch coverage", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("got %d hits, want at most 2", len(got))
	}
}
