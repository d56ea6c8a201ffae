package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/qecbench/montesweep/internal/config"
	"github.com/qecbench/montesweep/internal/consolidate"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [root]",
		Short: "Report directories eligible for result consolidation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scanRoot(args)
			if err != nil {
				return err
			}
			counts, err := consolidate.Scan(root)
			if err != nil {
				return err
			}
			dirs, reduction := consolidate.Eligible(counts)
			if len(dirs) == 0 {
				fmt.Println("No directories eligible for consolidation.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DIRECTORY\tFILES")
			fmt.Fprintln(tw, strings.Repeat("-", 40))
			for _, d := range dirs {
				fmt.Fprintf(tw, "%s\t%d\n", d, counts[d])
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d directorie(s) eligible; consolidation removes %d file(s)\n", len(dirs), reduction)
			return nil
		},
	}
}

func newConsolidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate [root]",
		Short: "Collapse fine-grained result files into consolidated files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scanRoot(args)
			if err != nil {
				return err
			}
			counts, err := consolidate.Scan(root)
			if err != nil {
				return err
			}
			dirs, _ := consolidate.Eligible(counts)
			total := 0
			for _, d := range dirs {
				n, err := consolidate.Consolidate(d)
				if err != nil {
					return fmt.Errorf("consolidating %s: %w", d, err)
				}
				fmt.Printf("%s: merged %d file(s)\n", d, n)
				total += n
			}
			fmt.Printf("Consolidated %d file(s) across %d directorie(s)\n", total, len(dirs))
			return nil
		},
	}
}

func scanRoot(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", err
	}
	return cfg.Results.Dir, nil
}
