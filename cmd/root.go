package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "montesweep",
		Short: "Parameter-sweep orchestrator for Monte-Carlo decoder benchmarks",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "montesweep.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newCollectCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newConsolidateCmd())
	return root
}
