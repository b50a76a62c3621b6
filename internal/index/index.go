package index

import (
	"context"

	"github.com/ppiankov/claimlens/internal/model"
)

// DenseIndex retrieves documents by embedding similarity
type DenseIndex interface {
	// Add indexes documents. IDs are assigned internally.
	Add(ctx context.Context, docs []model.EvidenceDocument) error
	// Search returns up to k documents ranked by similarity to the query.
	// An empty or whitespace query returns an empty list without touching
	// the embedding backend.
	Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error)
}

// LexicalIndex retrieves documents by keyword match
type LexicalIndex interface {
	Add(ctx context.Context, docs []model.EvidenceDocument) error
	Search(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error)
}
