package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/secwise/kbsearch/internal/corpus"
	"github.com/secwise/kbsearch/internal/index"
)

func newIndexCmd() *cobra.Command {
	var corpusPath string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the lexical index from the corpus file",
		Long: `Reads the JSON corpus, tokenizes every document, computes the BM25
statistics tables, and persists the index artifact.

Examples:
  kbsearch index
  kbsearch index --corpus ./playbooks.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if corpusPath != "" {
				cfg.Corpus.Path = corpusPath
			}

			docs, err := corpus.LoadFile(resolvePath(cfg.Corpus.Path))
			if err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}

			idx, err := index.Build(docs, cfg.Search.BM25)
			if err != nil {
				return err
			}
			if err := idx.Save(resolvePath(cfg.IndexPath())); err != nil {
				return err
			}

			slog.Info("index built",
				"documents", len(docs),
				"terms", idx.Stats().TermCount,
				"path", cfg.IndexPath())
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents (%d terms)\n",
				len(docs), idx.Stats().TermCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Corpus file (overrides config)")
	return cmd
}
