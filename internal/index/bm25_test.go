package index

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secwise/kbsearch/internal/corpus"
	kerrors "github.com/secwise/kbsearch/internal/errors"
)

func buildTestCorpus() []*corpus.Document {
	return []*corpus.Document{
		corpus.New("firewall rules block inbound traffic", "kb/net.md", nil),
		corpus.New("phishing emails trick users", "kb/phish.md", nil),
		corpus.New("firewall logs show blocked connections", "kb/logs.md", nil),
	}
}

func TestBuild_EmptyCorpusFails(t *testing.T) {
	_, err := Build(nil, DefaultParams())

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, kerrors.EmptyCorpus()))
	assert.True(t, kerrors.IsFatal(err))
}

func TestBuild_CorpusStatistics(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)

	stats := x.Stats()
	assert.Equal(t, 3, stats.DocumentCount)

	// avgdl is the mean token length: (5 + 4 + 5) / 3.
	assert.InDelta(t, 14.0/3.0, x.AvgDocLength(), 1e-12)

	// "firewall" appears in 2 of 3 documents.
	assert.Equal(t, 2, x.DocumentFrequency("firewall"))
	assert.Equal(t, 1, x.DocumentFrequency("phishing"))
}

func TestBuild_IDFPositiveWhenTermNotUniversal(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)

	for _, term := range []string{"firewall", "phishing", "traffic", "connections"} {
		df := x.DocumentFrequency(term)
		require.Less(t, df, 3, "test corpus should not contain %q everywhere", term)
		assert.Greater(t, x.IDF(term), 0.0, "IDF(%q) must be positive when df < N", term)
	}
}

func TestScore_EmptyAndStopWordQueries(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)
	docID := x.Documents()[0].ID

	assert.Zero(t, x.Score("", docID))
	assert.Zero(t, x.Score("the and of", docID))
}

func TestScore_AbsentTermsContributeZero(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)
	docID := x.Documents()[0].ID

	withUnknown := x.Score("firewall zeroday", docID)
	known := x.Score("firewall", docID)

	assert.Equal(t, known, withUnknown, "terms absent from the index add nothing")
}

func TestScore_UnknownDocumentScoresZero(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)

	assert.Zero(t, x.Score("firewall", "no-such-id"))
}

func TestScore_MonotonicInTermFrequency(t *testing.T) {
	// Equal document lengths so only term frequency varies.
	docs := []*corpus.Document{
		corpus.New("alpha beta gamma delta", "d1", nil),
		corpus.New("alpha alpha beta gamma", "d2", nil),
		corpus.New("alpha alpha alpha beta", "d3", nil),
	}
	x, err := Build(docs, DefaultParams())
	require.NoError(t, err)

	s1 := x.Score("alpha", docs[0].ID)
	s2 := x.Score("alpha", docs[1].ID)
	s3 := x.Score("alpha", docs[2].ID)

	assert.Greater(t, s2, s1)
	assert.Greater(t, s3, s2)
}

func TestSearch_FirewallScenario(t *testing.T) {
	docs := buildTestCorpus()
	x, err := Build(docs, DefaultParams())
	require.NoError(t, err)

	results := x.Search("firewall", 3)
	require.Len(t, results, 3)

	// Documents 1 and 3 both mention "firewall" and rank above document 2.
	assert.Equal(t, docs[0].ID, results[0].DocID)
	assert.Equal(t, docs[2].ID, results[1].DocID)
	assert.Equal(t, docs[1].ID, results[2].DocID)

	assert.Greater(t, results[0].Score, 0.0)
	assert.Greater(t, results[1].Score, 0.0)
	assert.Zero(t, results[2].Score)

	// Equal term frequency and equal length mean equal scores; the tie
	// keeps corpus insertion order.
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSearch_TopKTruncation(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)

	assert.Len(t, x.Search("firewall", 2), 2)
	assert.Len(t, x.Search("firewall", 10), 3)
	assert.Empty(t, x.Search("firewall", 0))
}

func TestSearch_Deterministic(t *testing.T) {
	x, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)

	first := x.Search("firewall blocked traffic", 3)
	second := x.Search("firewall blocked traffic", 3)
	assert.Equal(t, first, second)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	docs := buildTestCorpus()

	built, err := Build(docs, Params{K1: 1.2, B: 0.6})
	require.NoError(t, err)
	require.NoError(t, built.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, built.Checksum(), loaded.Checksum())
	assert.Equal(t, built.Params(), loaded.Params())
	assert.Equal(t, built.Search("firewall logs", 3), loaded.Search("firewall logs", 3))
}

func TestSave_AtomicReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	first, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)
	require.NoError(t, first.Save(path))

	// Overwriting an existing bundle goes through a temp file and
	// rename, leaving no partial state behind.
	second, err := Build(buildTestCorpus()[:2], DefaultParams())
	require.NoError(t, err)
	require.NoError(t, second.Save(path))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive Save")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second.Checksum(), loaded.Checksum())
	assert.Equal(t, 2, loaded.Stats().DocumentCount)
}

func TestLoad_MissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrCodeIndexNotFound, kerrors.GetCode(err))
	assert.True(t, kerrors.IsRecoverable(err), "caller is expected to rebuild")
}

func TestLoad_CorruptBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrCodeSerialization, kerrors.GetCode(err))
}

func TestLoad_InconsistentTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	built, err := Build(buildTestCorpus(), DefaultParams())
	require.NoError(t, err)
	require.NoError(t, built.Save(path))

	// Tamper with the persisted document-length table so it no longer
	// matches the corpus in the same bundle.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["doc_len"] = json.RawMessage(`[99, 4, 5]`)
	tampered, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o644))

	_, err = Load(path)

	require.Error(t, err)
	assert.Equal(t, kerrors.ErrCodeInconsistentIndex, kerrors.GetCode(err))
	assert.True(t, kerrors.IsRecoverable(err), "caller is expected to force a rebuild")
}
