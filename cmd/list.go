package cmd

import (
	"fmt"

	"github.com/qecbench/montesweep/internal/config"
	"github.com/qecbench/montesweep/internal/sweep"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured sweeps and their point counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Simulator: %s\n\nSweeps:\n", cfg.Simulator.Binary)
			for i := range cfg.Sweeps {
				s := &cfg.Sweeps[i]
				points, err := sweep.Expand(s.Axes(), s.ErasureAxis)
				if err != nil {
					return fmt.Errorf("sweep %q: %w", s.Name, err)
				}
				c := s.Criteria()
				fmt.Printf("  - %s: %d points (decoder %s, min errors %d, max trials %d, budget %s)\n",
					s.Name, len(points), s.Decoder, c.MinErrorCases, c.MaxTrials, c.TimeBudget)
			}
			return nil
		},
	}
}
