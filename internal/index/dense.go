package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/model"
)

// denseEntry is one stored document with its embedding
type denseEntry struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"vector"`
}

// denseSnapshot is the on-disk form of the store
type denseSnapshot struct {
	Entries []denseEntry `json:"entries"`
}

// MemoryDenseIndex is an in-memory cosine-similarity store over an
// embedding backend, with an optional JSON snapshot on disk.
type MemoryDenseIndex struct {
	embedder llm.Embedder
	path     string // empty disables persistence

	mu      sync.RWMutex
	entries []denseEntry
}

// NewMemoryDenseIndex creates a store backed by the given embedder.
// If path is non-empty an existing snapshot is loaded; a missing file
// is not an error.
func NewMemoryDenseIndex(embedder llm.Embedder, path string) (*MemoryDenseIndex, error) {
	idx := &MemoryDenseIndex{embedder: embedder, path: path}
	if path != "" {
		if err := idx.load(); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Add embeds and stores the documents, then persists the snapshot
func (idx *MemoryDenseIndex) Add(ctx context.Context, docs []model.EvidenceDocument) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embed documents: got %d vectors for %d texts", len(vectors), len(docs))
	}

	idx.mu.Lock()
	for i, d := range docs {
		idx.entries = append(idx.entries, denseEntry{
			Content:  d.Content,
			Metadata: d.Metadata,
			Vector:   vectors[i],
		})
	}
	idx.mu.Unlock()

	return idx.persist()
}

// Search embeds the query and ranks stored entries by cosine similarity
func (idx *MemoryDenseIndex) Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" || k < 1 {
		return nil, nil
	}

	idx.mu.RLock()
	n := len(idx.entries)
	idx.mu.RUnlock()
	if n == 0 {
		return nil, nil
	}

	vectors, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	qv := vectors[0]

	type scored struct {
		entry denseEntry
		score float64
	}

	idx.mu.RLock()
	ranked := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		ranked = append(ranked, scored{entry: e, score: cosine(qv, e.Vector)})
	}
	idx.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.EvidenceDocument, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, model.EvidenceDocument{
			Content:  r.entry.Content,
			Metadata: r.entry.Metadata,
			Score:    r.score,
		})
	}
	return out, nil
}

// Len reports the number of stored documents
func (idx *MemoryDenseIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

func (idx *MemoryDenseIndex) load() error {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load dense index: %w", err)
	}
	var snap denseSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("load dense index: %w", err)
	}
	idx.entries = snap.Entries
	return nil
}

func (idx *MemoryDenseIndex) persist() error {
	if idx.path == "" {
		return nil
	}

	idx.mu.RLock()
	snap := denseSnapshot{Entries: idx.entries}
	idx.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist dense index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return fmt.Errorf("persist dense index: %w", err)
	}

	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("persist dense index: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("persist dense index: %w", err)
	}
	return nil
}

// cosine computes cosine similarity; mismatched or zero vectors score 0
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
