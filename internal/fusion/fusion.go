// Package fusion combines a lexical (BM25) ranking with a semantic
// (embedding distance) ranking into one ordered result set using
// weighted min-max score blending.
package fusion

import (
	"sort"
)

// Source tags which ranking produced a fused result.
type Source string

const (
	// SourceLexical marks results found only by the lexical ranking.
	SourceLexical Source = "lexical"
	// SourceSemantic marks results found only by the semantic ranking.
	SourceSemantic Source = "semantic"
	// SourceBoth marks results found by both rankings.
	SourceBoth Source = "both"
)

// LexicalHit is one entry of the BM25 ranking. Higher score is better.
type LexicalHit struct {
	DocID string
	Score float64
}

// SemanticHit is one entry of the semantic ranking. Distance semantics
// are "smaller is more similar"; no upper bound is assumed.
type SemanticHit struct {
	DocID    string
	Distance float64
}

// Result is a single fused ranking entry.
type Result struct {
	// DocID is the stable content identifier. Deduplication across the
	// two rankings happens on this ID, never on object identity.
	DocID string

	// Score is the weighted blend of the normalized per-source scores.
	Score float64

	// LexicalScore is the min-max normalized BM25 contribution [0,1].
	LexicalScore float64

	// SemanticScore is the min-max normalized similarity contribution [0,1].
	SemanticScore float64

	// Source tags which ranking(s) produced this result.
	Source Source
}

// Fuse merges the two rankings. Weight 0 trusts only the lexical ranking,
// weight 1 only the semantic ranking. A document found by a single method
// is not excluded, merely penalized: the missing side contributes zero.
//
// Steps: semantic distances become similarities via 1/(1+d); each side is
// normalized by its own maximum (a zero maximum leaves all scores at 0);
// the union of document IDs is blended, sorted descending by final score
// with a stable tie-break on document ID, and truncated to topK.
func Fuse(lex []LexicalHit, sem []SemanticHit, weight float64, topK int) []Result {
	if topK <= 0 || (len(lex) == 0 && len(sem) == 0) {
		return []Result{}
	}
	weight = clampWeight(weight)

	merged := make(map[string]*Result, len(lex)+len(sem))

	maxLex := 0.0
	for _, h := range lex {
		if h.Score > maxLex {
			maxLex = h.Score
		}
	}
	for _, h := range lex {
		r := getOrCreate(merged, h.DocID)
		if maxLex > 0 {
			r.LexicalScore = h.Score / maxLex
		}
		r.Source = SourceLexical
	}

	maxSim := 0.0
	sims := make([]float64, len(sem))
	for i, h := range sem {
		sims[i] = 1.0 / (1.0 + h.Distance)
		if sims[i] > maxSim {
			maxSim = sims[i]
		}
	}
	for i, h := range sem {
		r := getOrCreate(merged, h.DocID)
		if maxSim > 0 {
			r.SemanticScore = sims[i] / maxSim
		}
		if r.Source == SourceLexical {
			r.Source = SourceBoth
		} else {
			r.Source = SourceSemantic
		}
	}

	results := make([]Result, 0, len(merged))
	for _, r := range merged {
		r.Score = weight*r.SemanticScore + (1-weight)*r.LexicalScore
		results = append(results, *r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// getOrCreate returns the existing entry for id or inserts a new one.
// Duplicate hits for the same content ID collapse into the first-seen
// entry; later hits only contribute their score.
func getOrCreate(m map[string]*Result, id string) *Result {
	if r, ok := m[id]; ok {
		return r
	}
	r := &Result{DocID: id}
	m[id] = r
	return r
}

// clampWeight bounds the fusion weight to [0,1].
func clampWeight(w float64) float64 {
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
