package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexHits(ids []string, scores []float64) []LexicalHit {
	hits := make([]LexicalHit, len(ids))
	for i, id := range ids {
		hits[i] = LexicalHit{DocID: id, Score: scores[i]}
	}
	return hits
}

func semHits(ids []string, distances []float64) []SemanticHit {
	hits := make([]SemanticHit, len(ids))
	for i, id := range ids {
		hits[i] = SemanticHit{DocID: id, Distance: distances[i]}
	}
	return hits
}

func orderOf(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

func TestFuse_WeightZeroIsLexicalOrder(t *testing.T) {
	lex := lexHits([]string{"A", "B", "C"}, []float64{3.0, 2.0, 1.0})
	sem := semHits([]string{"C", "B", "A"}, []float64{0.1, 0.2, 0.3})

	results := Fuse(lex, sem, 0.0, 10)

	assert.Equal(t, []string{"A", "B", "C"}, orderOf(results))
}

func TestFuse_WeightOneIsSemanticOrder(t *testing.T) {
	lex := lexHits([]string{"A", "B", "C"}, []float64{3.0, 2.0, 1.0})
	sem := semHits([]string{"C", "B", "A"}, []float64{0.1, 0.2, 0.3})

	results := Fuse(lex, sem, 1.0, 10)

	assert.Equal(t, []string{"C", "B", "A"}, orderOf(results))
}

func TestFuse_DisjointRankingsReturnUnion(t *testing.T) {
	lex := lexHits([]string{"A", "B"}, []float64{2.0, 1.0})
	sem := semHits([]string{"C", "D"}, []float64{0.1, 0.2})

	results := Fuse(lex, sem, 0.5, 10)

	require.Len(t, results, 4)
	ids := orderOf(results)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, ids)
}

func TestFuse_DeduplicatesByContentID(t *testing.T) {
	// The same document retrieved through both paths fuses into one
	// entry with contributions from both sides.
	lex := lexHits([]string{"A", "B"}, []float64{2.0, 1.0})
	sem := semHits([]string{"A", "C"}, []float64{0.0, 0.5})

	results := Fuse(lex, sem, 0.5, 10)

	require.Len(t, results, 3)

	byID := make(map[string]Result)
	for _, r := range results {
		byID[r.DocID] = r
	}
	a := byID["A"]
	assert.Equal(t, SourceBoth, a.Source)
	assert.Equal(t, 1.0, a.LexicalScore, "top lexical hit normalizes to 1")
	assert.Equal(t, 1.0, a.SemanticScore, "closest semantic hit normalizes to 1")
	assert.Equal(t, 1.0, a.Score)

	assert.Equal(t, SourceLexical, byID["B"].Source)
	assert.Equal(t, SourceSemantic, byID["C"].Source)
}

func TestFuse_MissingSideContributesZero(t *testing.T) {
	lex := lexHits([]string{"A"}, []float64{2.0})
	sem := semHits([]string{"B"}, []float64{0.0})

	results := Fuse(lex, sem, 0.5, 10)
	require.Len(t, results, 2)

	for _, r := range results {
		switch r.DocID {
		case "A":
			assert.Zero(t, r.SemanticScore)
			assert.InDelta(t, 0.5, r.Score, 1e-12)
		case "B":
			assert.Zero(t, r.LexicalScore)
			assert.InDelta(t, 0.5, r.Score, 1e-12)
		}
	}
}

func TestFuse_ZeroMaxLeavesScoresAtZero(t *testing.T) {
	// All-zero BM25 scores (query matched nothing) must not divide by zero.
	lex := lexHits([]string{"A", "B"}, []float64{0.0, 0.0})

	results := Fuse(lex, nil, 0.0, 10)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Zero(t, r.Score)
		assert.Zero(t, r.LexicalScore)
	}
	// Zero-score ties break by document ID.
	assert.Equal(t, []string{"A", "B"}, orderOf(results))
}

func TestFuse_SimilarityTransform(t *testing.T) {
	// sim = 1/(1+distance): distance 0 → 1.0, distance 1 → 0.5.
	sem := semHits([]string{"near", "far"}, []float64{0.0, 1.0})

	results := Fuse(nil, sem, 1.0, 10)

	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].DocID)
	assert.Equal(t, 1.0, results[0].Score)
	assert.InDelta(t, 0.5, results[1].Score, 1e-12)
}

func TestFuse_TruncatesToTopK(t *testing.T) {
	lex := lexHits([]string{"A", "B", "C", "D"}, []float64{4, 3, 2, 1})

	results := Fuse(lex, nil, 0.0, 2)

	assert.Equal(t, []string{"A", "B"}, orderOf(results))
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil, 0.5, 10))
	assert.Empty(t, Fuse(lexHits([]string{"A"}, []float64{1}), nil, 0.5, 0))
}

func TestFuse_WeightClamped(t *testing.T) {
	lex := lexHits([]string{"A", "B"}, []float64{2.0, 1.0})
	sem := semHits([]string{"B", "A"}, []float64{0.0, 1.0})

	// Out-of-range weights behave as the nearest bound.
	assert.Equal(t, orderOf(Fuse(lex, sem, -3, 10)), orderOf(Fuse(lex, sem, 0, 10)))
	assert.Equal(t, orderOf(Fuse(lex, sem, 7, 10)), orderOf(Fuse(lex, sem, 1, 10)))
}

func TestFuse_Deterministic(t *testing.T) {
	lex := lexHits([]string{"A", "B", "C"}, []float64{1.0, 1.0, 1.0})
	sem := semHits([]string{"D", "E", "F"}, []float64{0.5, 0.5, 0.5})

	first := Fuse(lex, sem, 0.5, 10)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fuse(lex, sem, 0.5, 10))
	}
}
