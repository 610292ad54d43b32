// Package config holds the engine configuration: corpus location, BM25
// parameters, cache sizing, fusion weight, and logging. Configuration is
// applied in order of increasing precedence: hardcoded defaults, the
// YAML config file, then KBSEARCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/secwise/kbsearch/internal/index"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".kbsearch.yaml"

// Config is the complete engine configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Corpus  CorpusConfig `yaml:"corpus" json:"corpus"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Cache   CacheConfig  `yaml:"cache" json:"cache"`
	Logging LogConfig    `yaml:"logging" json:"logging"`
}

// CorpusConfig locates the knowledge base and its persisted artifacts.
type CorpusConfig struct {
	// Name identifies the knowledge base; artifact files are derived
	// from it.
	Name string `yaml:"name" json:"name"`

	// Path is the JSON corpus file to index.
	Path string `yaml:"path" json:"path"`

	// DataDir is where index and cache artifacts are written.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// SearchConfig configures ranking behavior.
type SearchConfig struct {
	// BM25 carries the k1/b term saturation and length normalization
	// parameters.
	BM25 index.Params `yaml:"bm25" json:"bm25"`

	// SemanticWeight is the fusion weight in [0,1]: 0 is purely
	// lexical, 1 purely semantic.
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// DefaultTopK is the result count used when a query does not
	// specify one.
	DefaultTopK int `yaml:"default_top_k" json:"default_top_k"`

	// MaxTopK caps the per-query result count.
	MaxTopK int `yaml:"max_top_k" json:"max_top_k"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached query results.
	Capacity int `yaml:"capacity" json:"capacity"`

	// TTLSeconds is the entry lifetime measured from creation.
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`

	// Persist enables saving the cache to disk on shutdown.
	Persist bool `yaml:"persist" json:"persist"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// File is the log destination; empty logs to stderr.
	File string `yaml:"file" json:"file"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Corpus: CorpusConfig{
			Name:    "default",
			Path:    "corpus.json",
			DataDir: ".kbsearch",
		},
		Search: SearchConfig{
			BM25:           index.DefaultParams(),
			SemanticWeight: 0.5,
			DefaultTopK:    5,
			MaxTopK:        100,
		},
		Cache: CacheConfig{
			Capacity:   1000,
			TTLSeconds: 86400,
			Persist:    true,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// IndexPath returns the lexical index artifact path for the named corpus.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Corpus.DataDir, c.Corpus.Name+".index.json")
}

// CachePath returns the cache artifact path for the named corpus.
func (c *Config) CachePath() string {
	return filepath.Join(c.Corpus.DataDir, c.Corpus.Name+".cache.json")
}

// VectorPath returns the vector store artifact path for the named corpus.
func (c *Config) VectorPath() string {
	return filepath.Join(c.Corpus.DataDir, c.Corpus.Name+".vectors.hnsw")
}

// Load reads configuration from dir. A missing config file is not an
// error; defaults plus environment overrides apply.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML merges values from a YAML file over the current config.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies KBSEARCH_* environment variables, the
// highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KBSEARCH_CORPUS_PATH"); v != "" {
		c.Corpus.Path = v
	}
	if v := os.Getenv("KBSEARCH_DATA_DIR"); v != "" {
		c.Corpus.DataDir = v
	}
	if v := os.Getenv("KBSEARCH_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.SemanticWeight = f
		}
	}
	if v := os.Getenv("KBSEARCH_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Capacity = n
		}
	}
	if v := os.Getenv("KBSEARCH_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("KBSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return fmt.Errorf("semantic_weight must be between 0 and 1, got %f", c.Search.SemanticWeight)
	}
	if c.Search.BM25.K1 <= 0 {
		return fmt.Errorf("bm25.k1 must be positive, got %f", c.Search.BM25.K1)
	}
	if c.Search.BM25.B < 0 || c.Search.BM25.B > 1 {
		return fmt.Errorf("bm25.b must be between 0 and 1, got %f", c.Search.BM25.B)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be positive, got %d", c.Search.DefaultTopK)
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		return fmt.Errorf("max_top_k (%d) must be at least default_top_k (%d)", c.Search.MaxTopK, c.Search.DefaultTopK)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive, got %d", c.Cache.TTLSeconds)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	return nil
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
