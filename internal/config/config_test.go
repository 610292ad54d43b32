package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Search.SemanticWeight)
	assert.Equal(t, 1.5, cfg.Search.BM25.K1)
	assert.Equal(t, 0.75, cfg.Search.BM25.B)
	assert.Equal(t, 1000, cfg.Cache.Capacity)
	assert.Equal(t, 86400, cfg.Cache.TTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yaml := `
search:
  semantic_weight: 0.7
  default_top_k: 10
  max_top_k: 50
cache:
  capacity: 200
  ttl_seconds: 600
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Search.SemanticWeight)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
	assert.Equal(t, 200, cfg.Cache.Capacity)
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
	// Untouched sections keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("search:\n  semantic_weight: 0.2\n"), 0o644))

	t.Setenv("KBSEARCH_SEMANTIC_WEIGHT", "0.9")
	t.Setenv("KBSEARCH_CACHE_CAPACITY", "42")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Search.SemanticWeight)
	assert.Equal(t, 42, cfg.Cache.Capacity)
}

func TestLoad_InvalidWeightRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("search:\n  semantic_weight: 1.5\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic_weight")
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName),
		[]byte("search: [not a mapping"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestValidate_BM25Params(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.BM25.K1 = 0
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Search.BM25.B = 1.2
	assert.Error(t, cfg.Validate())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Search.SemanticWeight = 0.3
	cfg.Corpus.Name = "secops"

	require.NoError(t, cfg.Save(filepath.Join(dir, DefaultFileName)))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.3, loaded.Search.SemanticWeight)
	assert.Equal(t, "secops", loaded.Corpus.Name)
}

func TestArtifactPaths(t *testing.T) {
	cfg := NewConfig()
	cfg.Corpus.Name = "kb"
	cfg.Corpus.DataDir = "/var/lib/kbsearch"

	assert.Equal(t, filepath.Join("/var/lib/kbsearch", "kb.index.json"), cfg.IndexPath())
	assert.Equal(t, filepath.Join("/var/lib/kbsearch", "kb.cache.json"), cfg.CachePath())
	assert.Equal(t, filepath.Join("/var/lib/kbsearch", "kb.vectors.hnsw"), cfg.VectorPath())
}
