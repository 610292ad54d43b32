package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWeightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weight [value]",
		Short: "Show or set the fusion weight",
		Long: `Shows the configured fusion weight, or sets it when a value is given.
0 ranks purely by keywords, 1 purely by semantic similarity.
Out-of-range values are clamped. The new weight is written back to the
config file and applies to every later query.

Examples:
  kbsearch weight
  kbsearch weight 0.3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", cfg.Search.SemanticWeight)
				return nil
			}

			engine, err := loadEngine(cfg)
			if err != nil {
				return err
			}

			requested, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("weight must be a number, got %q", args[0])
			}

			effective := engine.AdjustWeight(requested)
			if effective != requested {
				fmt.Fprintf(cmd.OutOrStdout(), "weight clamped to %.2f\n", effective)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "weight set to %.2f\n", effective)
			}
			return nil
		},
	}
}
