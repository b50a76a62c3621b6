package index

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/google/uuid"

	"github.com/ppiankov/claimlens/internal/model"
)

// metadata keys are flattened into bleve fields with this prefix
const metaFieldPrefix = "meta_"

// BleveIndex is a keyword index over evidence documents backed by bleve.
type BleveIndex struct {
	idx bleve.Index
}

// OpenBleveIndex opens the index at dir, creating it if absent.
// An empty dir creates a memory-only index, used by tests and by runs
// that ingest and query in one process.
func OpenBleveIndex(dir string) (*BleveIndex, error) {
	if dir == "" {
		idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("open lexical index: %w", err)
		}
		return &BleveIndex{idx: idx}, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		idx, err := bleve.New(dir, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create lexical index: %w", err)
		}
		return &BleveIndex{idx: idx}, nil
	}

	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open lexical index: %w", err)
	}
	return &BleveIndex{idx: idx}, nil
}

// Add indexes the documents under fresh IDs
func (b *BleveIndex) Add(_ context.Context, docs []model.EvidenceDocument) error {
	batch := b.idx.NewBatch()
	for _, d := range docs {
		fields := map[string]interface{}{"content": d.Content}
		for k, v := range d.Metadata {
			fields[metaFieldPrefix+k] = v
		}
		if err := batch.Index(uuid.NewString(), fields); err != nil {
			return fmt.Errorf("index document: %w", err)
		}
	}
	if err := b.idx.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}
	return nil
}

// Search runs a match query over the content field and reconstructs
// documents from stored fields.
func (b *BleveIndex) Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" || k < 1 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	req.Fields = []string{"*"}

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	out := make([]model.EvidenceDocument, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc := model.EvidenceDocument{Score: hit.Score}
		meta := make(map[string]string)
		for field, val := range hit.Fields {
			s, ok := val.(string)
			if !ok {
				continue
			}
			switch {
			case field == "content":
				doc.Content = s
			case strings.HasPrefix(field, metaFieldPrefix):
				meta[strings.TrimPrefix(field, metaFieldPrefix)] = s
			}
		}
		if len(meta) > 0 {
			doc.Metadata = meta
		}
		out = append(out, doc)
	}
	return out, nil
}

// Close releases the underlying index
func (b *BleveIndex) Close() error {
	return b.idx.Close()
}
