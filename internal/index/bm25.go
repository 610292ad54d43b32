// Package index implements the BM25 lexical ranker. An Index is a
// derived, rebuildable artifact over a document corpus: per-term document
// frequency and IDF, per-document token lengths, and the average document
// length. After Build completes the index is read-only; concurrent reads
// require no locking.
package index

import (
	"math"
	"sort"

	"github.com/secwise/kbsearch/internal/corpus"
	kerrors "github.com/secwise/kbsearch/internal/errors"
	"github.com/secwise/kbsearch/internal/textproc"
)

// Params are the BM25 tuning parameters.
type Params struct {
	// K1 is the term-frequency saturation parameter.
	K1 float64 `json:"k1" yaml:"k1"`

	// B is the document-length normalization parameter.
	B float64 `json:"b" yaml:"b"`
}

// DefaultParams returns the standard BM25 parameters.
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

// Result is a single lexical ranking entry. Higher scores are better.
type Result struct {
	DocID string
	Score float64
}

// Stats describes an index for operational output.
type Stats struct {
	DocumentCount int     `json:"document_count"`
	TermCount     int     `json:"term_count"`
	AvgDocLength  float64 `json:"avg_doc_length"`
}

// Index holds the per-term and per-document statistics BM25 scoring needs.
type Index struct {
	params    Params
	docs      []*corpus.Document
	termFreqs []map[string]int
	docLen    []int
	avgdl     float64
	df        map[string]int
	idf       map[string]float64
	byID      map[string]int
	checksum  string
}

// Build tokenizes every document and computes the corpus statistics.
// Fails with an empty-corpus error when docs is empty: avgdl would be
// undefined and division by zero must never reach the scorer.
func Build(docs []*corpus.Document, params Params) (*Index, error) {
	if len(docs) == 0 {
		return nil, kerrors.EmptyCorpus()
	}
	if params.K1 <= 0 {
		params.K1 = DefaultParams().K1
	}
	if params.B < 0 || params.B > 1 {
		params.B = DefaultParams().B
	}

	x := &Index{
		params:    params,
		docs:      docs,
		termFreqs: make([]map[string]int, len(docs)),
		docLen:    make([]int, len(docs)),
		df:        make(map[string]int),
		idf:       make(map[string]float64),
		byID:      make(map[string]int, len(docs)),
		checksum:  corpus.Checksum(docs),
	}

	totalLen := 0
	for i, doc := range docs {
		tokens := doc.Tokens()
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		x.termFreqs[i] = freq
		x.docLen[i] = len(tokens)
		totalLen += len(tokens)

		for term := range freq {
			x.df[term]++
		}

		// First occurrence wins for duplicate content IDs; the corpus
		// owns dedup, the index just stays deterministic.
		if _, seen := x.byID[doc.ID]; !seen {
			x.byID[doc.ID] = i
		}
	}

	x.avgdl = float64(totalLen) / float64(len(docs))
	x.computeIDF()

	return x, nil
}

// computeIDF fills the IDF table using the BM25 formulation:
// idf(t) = ln((N - df + 0.5) / (df + 0.5) + 1). Always positive.
func (x *Index) computeIDF() {
	n := float64(len(x.docs))
	for term, df := range x.df {
		d := float64(df)
		x.idf[term] = math.Log((n-d+0.5)/(d+0.5) + 1)
	}
}

// Score computes the BM25 score of a query against one document. Query
// terms absent from the index contribute zero; an unknown document ID or
// an empty/entirely-stop-word query scores 0.0.
func (x *Index) Score(query string, docID string) float64 {
	i, ok := x.byID[docID]
	if !ok {
		return 0.0
	}
	return x.scoreAt(textproc.Tokenize(query), i)
}

// scoreAt accumulates the BM25 contribution of each query token against
// the document at position i.
func (x *Index) scoreAt(queryTokens []string, i int) float64 {
	if len(queryTokens) == 0 {
		return 0.0
	}

	freq := x.termFreqs[i]
	docLen := float64(x.docLen[i])
	k1, b := x.params.K1, x.params.B

	score := 0.0
	for _, tok := range queryTokens {
		idf, ok := x.idf[tok]
		if !ok {
			continue
		}
		tf := float64(freq[tok])
		if tf == 0 {
			continue
		}
		score += idf * tf * (k1 + 1) / (tf + k1*(1-b+b*docLen/x.avgdl))
	}
	return score
}

// Search scores every document in the corpus against the query and
// returns the topK by descending score. Ties keep original corpus
// insertion order so results are deterministic.
func (x *Index) Search(query string, topK int) []Result {
	if topK <= 0 {
		return []Result{}
	}

	queryTokens := textproc.Tokenize(query)
	results := make([]Result, len(x.docs))
	for i, doc := range x.docs {
		results[i] = Result{
			DocID: doc.ID,
			Score: x.scoreAt(queryTokens, i),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Documents returns the corpus in original insertion order.
func (x *Index) Documents() []*corpus.Document {
	return x.docs
}

// Document returns the document with the given content ID.
func (x *Index) Document(id string) (*corpus.Document, bool) {
	i, ok := x.byID[id]
	if !ok {
		return nil, false
	}
	return x.docs[i], true
}

// Checksum returns the corpus checksum the index was built from.
func (x *Index) Checksum() string {
	return x.checksum
}

// Params returns the BM25 parameters the index was built with.
func (x *Index) Params() Params {
	return x.params
}

// AvgDocLength returns the average document token length.
func (x *Index) AvgDocLength() float64 {
	return x.avgdl
}

// IDF returns the inverse document frequency for a term, or 0 if the
// term does not occur in the corpus.
func (x *Index) IDF(term string) float64 {
	return x.idf[term]
}

// DocumentFrequency returns the number of documents containing the term.
func (x *Index) DocumentFrequency(term string) int {
	return x.df[term]
}

// Stats returns index statistics.
func (x *Index) Stats() Stats {
	return Stats{
		DocumentCount: len(x.docs),
		TermCount:     len(x.df),
		AvgDocLength:  x.avgdl,
	}
}
