package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secwise/kbsearch/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	weight float64
	format string
}

func newSearchCmd() *cobra.Command {
	opts := searchOptions{weight: -1}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid query against the indexed corpus",
		Long: `Runs the query through both the BM25 ranking and the semantic
backend (when configured) and blends the two by the fusion weight.

Examples:
  kbsearch search "firewall misconfiguration"
  kbsearch search "ransomware response" --limit 3
  kbsearch search "phishing indicators" --weight 0.8 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.weight >= 0 {
				// Per-query override, not written back to the config.
				cfg.Search.SemanticWeight = min(opts.weight, 1)
			}
			engine, err := loadEngine(cfg)
			if err != nil {
				return err
			}

			results, err := engine.Search(cmd.Context(), query, opts.limit)
			if err != nil {
				return err
			}
			saveEngineCache(cfg, engine)

			switch opts.format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "text":
				ui.NewRenderer(cmd.OutOrStdout()).Results(query, results)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text or json)", opts.format)
			}
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 uses the configured default)")
	cmd.Flags().Float64VarP(&opts.weight, "weight", "w", -1, "Fusion weight override for this query [0,1]")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}
