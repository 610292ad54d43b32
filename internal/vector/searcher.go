package vector

import (
	"context"
	"fmt"

	"github.com/secwise/kbsearch/internal/fusion"
)

// Searcher turns a query string into a semantic ranking by embedding it
// and running a nearest-neighbor search against the store. It satisfies
// the search engine's semantic delegate contract.
type Searcher struct {
	store    *Store
	embedder Embedder
}

// NewSearcher wires an embedder to a vector store.
func NewSearcher(store *Store, embedder Embedder) (*Searcher, error) {
	if store == nil {
		return nil, fmt.Errorf("vector searcher requires a store")
	}
	if embedder == nil {
		return nil, fmt.Errorf("vector searcher requires an embedder")
	}
	if d := embedder.Dimensions(); d != store.config.Dimensions {
		return nil, ErrDimensionMismatch{Expected: store.config.Dimensions, Got: d}
	}
	return &Searcher{store: store, embedder: embedder}, nil
}

// SemanticSearch embeds the query and returns the k nearest documents as
// (document ID, distance) pairs.
func (s *Searcher) SemanticSearch(ctx context.Context, query string, k int) ([]fusion.SemanticHit, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.Search(vec, k)
	if err != nil {
		return nil, err
	}

	out := make([]fusion.SemanticHit, len(hits))
	for i, h := range hits {
		out[i] = fusion.SemanticHit{DocID: h.DocID, Distance: h.Distance}
	}
	return out, nil
}

// Checksum exposes the corpus checksum recorded on the underlying store.
func (s *Searcher) Checksum() string {
	return s.store.Checksum()
}
