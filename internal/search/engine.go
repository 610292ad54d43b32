package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/secwise/kbsearch/internal/cache"
	"github.com/secwise/kbsearch/internal/corpus"
	kerrors "github.com/secwise/kbsearch/internal/errors"
	"github.com/secwise/kbsearch/internal/fusion"
	"github.com/secwise/kbsearch/internal/index"
	"github.com/secwise/kbsearch/internal/textproc"
)

// overfetchFactor widens both retrieval legs beyond the requested topK
// so fusion has enough candidates from each side before truncation.
const overfetchFactor = 2

// checksummed is implemented by semantic backends that record the corpus
// checksum their vectors were built from.
type checksummed interface {
	Checksum() string
}

// Engine is the hybrid retrieval orchestrator.
type Engine struct {
	mu       sync.RWMutex
	idx      *index.Index
	semantic SemanticSearcher
	weight   float64

	cache       *cache.Cache[string, []Result]
	defaultTopK int
	maxTopK     int
	logger      *slog.Logger

	// persistWeight, when set, writes weight adjustments through to the
	// configuration store.
	persistWeight func(float64) error
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithSemanticSearcher enables the semantic leg of hybrid queries.
func WithSemanticSearcher(s SemanticSearcher) Option {
	return func(e *Engine) { e.semantic = s }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWeightPersistence installs a write-through hook called after every
// successful weight adjustment.
func WithWeightPersistence(fn func(float64) error) Option {
	return func(e *Engine) { e.persistWeight = fn }
}

// WithClock overrides the cache clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.cache = cache.New[string, []Result](
			e.cache.Stats().Capacity, e.cache.TTL(),
			cache.WithClock[string, []Result](now))
	}
}

// NewEngine builds an engine over a ready lexical index.
func NewEngine(idx *index.Index, cfg Config, opts ...Option) (*Engine, error) {
	if idx == nil {
		return nil, fmt.Errorf("engine requires a lexical index")
	}
	if cfg.SemanticWeight < 0 || cfg.SemanticWeight > 1 {
		return nil, fmt.Errorf("semantic weight must be in [0,1], got %g", cfg.SemanticWeight)
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.MaxTopK < cfg.DefaultTopK {
		cfg.MaxTopK = cfg.DefaultTopK
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	e := &Engine{
		idx:         idx,
		weight:      cfg.SemanticWeight,
		cache:       cache.New[string, []Result](cfg.CacheCapacity, cfg.CacheTTL),
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if cs, ok := e.semantic.(checksummed); ok {
		if sum := cs.Checksum(); sum != "" && sum != idx.Checksum() {
			e.logger.Warn("semantic index built from a different corpus",
				"lexical_checksum", idx.Checksum(),
				"semantic_checksum", sum)
		}
	}
	return e, nil
}

// Search runs a hybrid query. A topK of zero or less uses the configured
// default; larger values are capped at the configured maximum. Identical
// queries at the same topK and weight are served from the cache with
// byte-identical ordering.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = e.defaultTopK
	}
	if topK > e.maxTopK {
		topK = e.maxTopK
	}

	e.mu.RLock()
	idx := e.idx
	semantic := e.semantic
	weight := e.weight
	e.mu.RUnlock()

	key := cacheKey(textproc.Normalize(query), topK, weight)
	if cached, ok := e.cache.Get(key); ok {
		e.logger.Debug("cache hit", "query", query, "top_k", topK)
		return cloneResults(cached), nil
	}

	fetchK := topK * overfetchFactor

	var (
		lexHits []index.Result
		semHits []fusion.SemanticHit
		semErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexHits = idx.Search(query, fetchK)
		return nil
	})
	if semantic != nil {
		g.Go(func() error {
			hits, err := semantic.SemanticSearch(gctx, query, fetchK)
			if err != nil {
				// Recoverable: the lexical leg still answers the query.
				semErr = kerrors.SemanticBackend(err)
				return nil
			}
			semHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if semErr != nil {
		e.logger.Warn("semantic backend failed, serving lexical-only results",
			"query", query, "error", semErr)
	}

	// A zero BM25 score means no query term occurs in the document; the
	// lexical method did not find it, so it must not reach fusion as a
	// lexical hit (it would mis-tag semantic-only results as "both").
	lex := make([]fusion.LexicalHit, 0, len(lexHits))
	for _, h := range lexHits {
		if h.Score == 0 {
			continue
		}
		lex = append(lex, fusion.LexicalHit{DocID: h.DocID, Score: h.Score})
	}

	fused := fusion.Fuse(lex, semHits, weight, topK)
	results := e.materialize(idx, fused)

	// Degraded result sets are not cached: a recovered backend should
	// not be shadowed by lexical-only entries for a full TTL.
	if semErr == nil {
		e.cache.Put(key, cloneResults(results))
	}
	return results, nil
}

// materialize joins fused rankings back to their documents. IDs unknown
// to the lexical index (semantic drift) keep only their ID and scores.
func (e *Engine) materialize(idx *index.Index, fused []fusion.Result) []Result {
	results := make([]Result, len(fused))
	for i, f := range fused {
		r := Result{
			DocID:         f.DocID,
			Score:         f.Score,
			LexicalScore:  f.LexicalScore,
			SemanticScore: f.SemanticScore,
			Origin:        f.Source,
		}
		if doc, ok := idx.Document(f.DocID); ok {
			r.Content = doc.Content
			r.Source = doc.Source
			r.Metadata = doc.Metadata
		}
		results[i] = r
	}
	return results
}

// AdjustWeight sets the fusion weight, clamped to [0,1], and returns the
// effective value. Cached results for other weights stay valid because
// the weight is part of the cache key.
func (e *Engine) AdjustWeight(weight float64) float64 {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	e.mu.Lock()
	e.weight = weight
	persist := e.persistWeight
	e.mu.Unlock()

	if persist != nil {
		if err := persist(weight); err != nil {
			e.logger.Warn("failed to persist weight adjustment", "weight", weight, "error", err)
		}
	}
	e.logger.Info("fusion weight adjusted", "weight", weight)
	return weight
}

// Weight returns the current fusion weight.
func (e *Engine) Weight() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weight
}

// SetIndex swaps in a rebuilt lexical index and clears the result cache,
// since cached rankings may no longer match the corpus.
func (e *Engine) SetIndex(idx *index.Index) error {
	if idx == nil {
		return fmt.Errorf("engine requires a lexical index")
	}
	e.mu.Lock()
	e.idx = idx
	e.mu.Unlock()
	e.cache.Clear()
	return nil
}

// BuildIndex rebuilds the lexical index from docs and swaps it in.
func (e *Engine) BuildIndex(docs []*corpus.Document, params index.Params) error {
	idx, err := index.Build(docs, params)
	if err != nil {
		return err
	}
	return e.SetIndex(idx)
}

// PersistIndex saves the current lexical index to path.
func (e *Engine) PersistIndex(path string) error {
	return e.Index().Save(path)
}

// LoadIndex restores a persisted lexical index and swaps it in. A
// missing artifact surfaces as a recoverable not-found error so the
// caller can rebuild. A semantic backend built from a different corpus
// is flagged with a consistency warning, not an error.
func (e *Engine) LoadIndex(path string) error {
	idx, err := index.Load(path)
	if err != nil {
		return err
	}
	if err := e.SetIndex(idx); err != nil {
		return err
	}

	e.mu.RLock()
	semantic := e.semantic
	e.mu.RUnlock()
	if cs, ok := semantic.(checksummed); ok {
		if sum := cs.Checksum(); sum != "" && sum != idx.Checksum() {
			e.logger.Warn("semantic index built from a different corpus",
				"lexical_checksum", idx.Checksum(),
				"semantic_checksum", sum)
		}
	}
	return nil
}

// Index returns the current lexical index.
func (e *Engine) Index() *index.Index {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx
}

// Stats reports a point-in-time snapshot of engine state.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	idx := e.idx
	semantic := e.semantic
	weight := e.weight
	e.mu.RUnlock()

	is := idx.Stats()
	cs := e.cache.Stats()
	return Stats{
		DocumentCount:   is.DocumentCount,
		VocabularySize:  is.TermCount,
		AvgDocLength:    is.AvgDocLength,
		CorpusChecksum:  idx.Checksum(),
		SemanticEnabled: semantic != nil,
		SemanticWeight:  weight,
		CacheSize:       cs.Size,
		CacheCapacity:   cs.Capacity,
	}
}

// CacheStats reports result-cache statistics including age buckets.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops all cached query results.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// EvictExpiredResults removes expired cache entries and returns how many
// were dropped.
func (e *Engine) EvictExpiredResults() int {
	return e.cache.EvictExpired()
}

// SaveCache persists the result cache to path.
func (e *Engine) SaveCache(path string) error {
	return e.cache.Save(path)
}

// LoadCache restores a persisted result cache, dropping stale entries,
// and returns the number of entries restored.
func (e *Engine) LoadCache(path string) (int, error) {
	return e.cache.Load(path)
}

// cacheKey derives the cache key from everything that determines a
// result set: the normalized query, the result count, and the fusion
// weight in effect.
func cacheKey(normalizedQuery string, topK int, weight float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%.12f", normalizedQuery, topK, weight)
	return hex.EncodeToString(h.Sum(nil))
}

// cloneResults copies a result slice so callers and the cache never
// share backing arrays.
func cloneResults(in []Result) []Result {
	out := make([]Result, len(in))
	copy(out, in)
	return out
}
