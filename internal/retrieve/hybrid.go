package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/claimlens/internal/index"
	"github.com/ppiankov/claimlens/internal/model"
)

// HybridRanker fuses dense and lexical search results using weighted
// rank-decay scores. Backend scores are not comparable across systems,
// so ranking position is the only signal used.
type HybridRanker struct {
	dense   index.DenseIndex
	lexical index.LexicalIndex
	wDense  float64
	wSparse float64
}

// NewHybridRanker builds a ranker. Either backend may be nil, which
// simply removes its contribution.
func NewHybridRanker(dense index.DenseIndex, lexical index.LexicalIndex, wDense, wSparse float64) *HybridRanker {
	return &HybridRanker{dense: dense, lexical: lexical, wDense: wDense, wSparse: wSparse}
}

// rankScore decays linearly from 1.0 at the top of a list to 0.0 at the
// bottom. A single-element list scores 1.0.
func rankScore(i, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(n-1)
}

// Search queries both backends and merges the result lists. Documents
// appearing in both lists accumulate both weighted rank scores. Ties keep
// first-insertion order, so the dense list wins ordering disputes.
func (h *HybridRanker) Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error) {
	if strings.TrimSpace(query) == "" || k < 1 {
		return nil, nil
	}

	var denseDocs, lexDocs []model.EvidenceDocument
	if h.dense != nil {
		docs, err := h.dense.Search(ctx, query, k)
		if err != nil {
			return nil, fmt.Errorf("dense search: %w", err)
		}
		denseDocs = docs
	}
	if h.lexical != nil {
		docs, err := h.lexical.Search(ctx, query, k)
		if err != nil {
			return nil, fmt.Errorf("lexical search: %w", err)
		}
		lexDocs = docs
	}

	type fused struct {
		doc   model.EvidenceDocument
		score float64
		order int
	}
	merged := make(map[string]*fused)
	insertion := 0

	accumulate := func(docs []model.EvidenceDocument, weight float64) {
		n := len(docs)
		for i, d := range docs {
			key := d.Key()
			f, ok := merged[key]
			if !ok {
				f = &fused{doc: d, order: insertion}
				insertion++
				merged[key] = f
			}
			f.score += weight * rankScore(i, n)
		}
	}
	accumulate(denseDocs, h.wDense)
	accumulate(lexDocs, h.wSparse)

	ranked := make([]*fused, 0, len(merged))
	for _, f := range merged {
		ranked = append(ranked, f)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]model.EvidenceDocument, 0, k)
	for _, f := range ranked[:k] {
		doc := f.doc
		doc.Score = f.score
		out = append(out, doc)
	}
	return out, nil
}
