// Package search orchestrates hybrid retrieval: it runs the lexical and
// semantic rankings in parallel, fuses them, and caches fused results
// keyed by normalized query, result count, and fusion weight.
package search

import (
	"context"
	"time"

	"github.com/secwise/kbsearch/internal/fusion"
)

// SemanticSearcher is the delegate for the semantic leg of a hybrid
// query. Implementations embed the query and return the k nearest
// documents as (document ID, distance) pairs, smaller distance meaning
// more similar. The engine treats any returned error as a recoverable
// backend failure and degrades to lexical-only results.
type SemanticSearcher interface {
	SemanticSearch(ctx context.Context, query string, k int) ([]fusion.SemanticHit, error)
}

// Result is one entry of the final hybrid ranking, the fused scores
// joined back to the document they rank.
type Result struct {
	DocID         string            `json:"doc_id"`
	Content       string            `json:"content"`
	Source        string            `json:"source"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Score         float64           `json:"score"`
	LexicalScore  float64           `json:"lexical_score"`
	SemanticScore float64           `json:"semantic_score"`
	Origin        fusion.Source     `json:"origin"`
}

// Config sizes the engine's ranking and caching behavior.
type Config struct {
	// SemanticWeight is the initial fusion weight in [0,1].
	SemanticWeight float64

	// DefaultTopK is used when a query does not specify a result count.
	DefaultTopK int

	// MaxTopK caps the per-query result count.
	MaxTopK int

	// CacheCapacity is the maximum number of cached query results.
	CacheCapacity int

	// CacheTTL is the cached-result lifetime measured from creation.
	CacheTTL time.Duration
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() Config {
	return Config{
		SemanticWeight: 0.5,
		DefaultTopK:    5,
		MaxTopK:        100,
		CacheCapacity:  1000,
		CacheTTL:       24 * time.Hour,
	}
}

// Stats is a point-in-time snapshot of engine state.
type Stats struct {
	DocumentCount   int     `json:"document_count"`
	VocabularySize  int     `json:"vocabulary_size"`
	AvgDocLength    float64 `json:"avg_doc_length"`
	CorpusChecksum  string  `json:"corpus_checksum"`
	SemanticEnabled bool    `json:"semantic_enabled"`
	SemanticWeight  float64 `json:"semantic_weight"`
	CacheSize       int     `json:"cache_size"`
	CacheCapacity   int     `json:"cache_capacity"`
}
