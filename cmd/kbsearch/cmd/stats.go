package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/secwise/kbsearch/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := loadEngine(cfg)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Engine interface{} `json:"engine"`
					Cache  interface{} `json:"cache"`
				}{engine.Stats(), engine.CacheStats()})
			}

			ui.NewRenderer(cmd.OutOrStdout()).Stats(engine.Stats(), engine.CacheStats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	return cmd
}
