// Package cmd provides the CLI commands for kbsearch.
package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/secwise/kbsearch/internal/config"
	"github.com/secwise/kbsearch/internal/index"
	"github.com/secwise/kbsearch/internal/logging"
	"github.com/secwise/kbsearch/internal/search"
	"github.com/secwise/kbsearch/pkg/version"
)

var (
	workDir        string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the kbsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kbsearch",
		Short: "Hybrid lexical + semantic search over a knowledge base",
		Long: `kbsearch indexes a JSON document corpus and answers queries with a
weighted blend of BM25 keyword ranking and semantic similarity.

Run 'kbsearch index' once, then 'kbsearch search "your query"'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("kbsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Project directory holding the config and corpus")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newWeightCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// Config errors surface in the command itself; fall back to
		// default logging here.
		cfg = config.NewConfig()
	}

	logCfg := logging.Config{
		Level:         cfg.Logging.Level,
		FilePath:      cfg.Logging.File,
		WriteToStderr: cfg.Logging.File == "",
	}
	if debugMode {
		logCfg.Level = "debug"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}

// loadConfig loads the configuration from the working directory.
func loadConfig() (*config.Config, error) {
	return config.Load(workDir)
}

// resolvePath anchors relative config paths at the working directory.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}

// loadEngine opens the persisted index and assembles an engine around it.
// Weight adjustments are written through to the config file.
func loadEngine(cfg *config.Config) (*search.Engine, error) {
	idx, err := index.Load(resolvePath(cfg.IndexPath()))
	if err != nil {
		return nil, fmt.Errorf("load index (run 'kbsearch index' first): %w", err)
	}

	engine, err := search.NewEngine(idx, search.Config{
		SemanticWeight: cfg.Search.SemanticWeight,
		DefaultTopK:    cfg.Search.DefaultTopK,
		MaxTopK:        cfg.Search.MaxTopK,
		CacheCapacity:  cfg.Cache.Capacity,
		CacheTTL:       cfg.CacheTTL(),
	}, search.WithWeightPersistence(func(w float64) error {
		cfg.Search.SemanticWeight = w
		return cfg.Save(filepath.Join(workDir, config.DefaultFileName))
	}))
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Persist {
		if n, err := engine.LoadCache(resolvePath(cfg.CachePath())); err != nil {
			slog.Warn("could not restore result cache", "error", err)
		} else if n > 0 {
			slog.Debug("restored result cache", "entries", n)
		}
	}
	return engine, nil
}

// saveEngineCache persists the result cache if persistence is enabled.
func saveEngineCache(cfg *config.Config, engine *search.Engine) {
	if cfg.Cache.Persist {
		_ = engine.SaveCache(resolvePath(cfg.CachePath()))
	}
}
