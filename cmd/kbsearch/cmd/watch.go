package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/secwise/kbsearch/internal/corpus"
	"github.com/secwise/kbsearch/internal/index"
	"github.com/secwise/kbsearch/internal/search"
	"github.com/secwise/kbsearch/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	var sweep time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the corpus file and rebuild the index on change",
		Long: `Keeps the index in sync with the corpus file. Edits are debounced so
a burst of writes triggers a single rebuild. Expired cache entries are
swept in the background. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := loadEngine(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rebuild := func() {
				docs, err := corpus.LoadFile(resolvePath(cfg.Corpus.Path))
				if err != nil {
					slog.Error("corpus reload failed", "error", err)
					return
				}
				idx, err := index.Build(docs, cfg.Search.BM25)
				if err != nil {
					slog.Error("index rebuild failed", "error", err)
					return
				}
				if err := idx.Save(resolvePath(cfg.IndexPath())); err != nil {
					slog.Error("index save failed", "error", err)
					return
				}
				if err := engine.SetIndex(idx); err != nil {
					slog.Error("index swap failed", "error", err)
					return
				}
				slog.Info("index rebuilt", "documents", len(docs))
			}

			w, err := watcher.New(resolvePath(cfg.Corpus.Path), debounce, rebuild, slog.Default())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl-c to stop)\n", cfg.Corpus.Path)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return w.Run(gctx) })
			g.Go(func() error {
				search.NewMaintainer(engine, sweep, slog.Default()).Run(gctx)
				return nil
			})

			err = g.Wait()
			saveEngineCache(cfg, engine)
			return err
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before a rebuild")
	cmd.Flags().DurationVar(&sweep, "sweep-interval", 5*time.Minute, "Expired cache entry sweep interval")
	return cmd
}
