package cmd

import (
	"context"
	"fmt"

	"github.com/qecbench/montesweep/internal/config"
	"github.com/qecbench/montesweep/internal/dispatch"
	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/slurm"
	"github.com/qecbench/montesweep/internal/sweep"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit sweeps to the cluster as job arrays",
		Long: "Collect every pending unit of work instead of executing it, then submit " +
			"the batch as one job array per sweep. Submission is fire-and-forget: run " +
			"`montesweep collect` once the jobs have finished to gather results.",
		RunE: submitSweeps,
	}
	cmd.Flags().StringVar(&flagSweep, "sweep", "", "filter to a single sweep")
	cmd.Flags().BoolVar(&flagRerun, "rerun", false, "ignore satisfied existing results and resubmit every point")
	return cmd
}

func submitSweeps(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	sweeps := filterSweeps(cfg.Sweeps, flagSweep)
	if len(sweeps) == 0 {
		return fmt.Errorf("no sweep matches %q", flagSweep)
	}

	ctx := context.Background()
	for i := range sweeps {
		if err := submitOne(ctx, cfg, &sweeps[i]); err != nil {
			return fmt.Errorf("sweep %q: %w", sweeps[i].Name, err)
		}
	}
	return nil
}

func submitOne(ctx context.Context, cfg *config.Config, sw *config.Sweep) error {
	// Each array task owns a whole node share, so the unit gets the full
	// per-task CPU allocation as simulator threads.
	units, err := sweep.Build(sw.Axes(), sw.Criteria(), buildOpts(cfg, sw, cfg.Slurm.CPUsPerTask))
	if err != nil {
		return err
	}

	pointsDir := result.PointsDir(result.SweepDir(cfg.Results.Dir, sw.Name))
	existing, err := result.LoadPoints(pointsDir)
	if err != nil {
		return err
	}
	if flagRerun {
		existing = nil
	}

	sink := &dispatch.CollectingSink{}
	stats, err := dispatch.Dispatch(ctx, units, existing, sink, dispatch.Options{Workers: 1, FailFast: true})
	if err != nil {
		return err
	}
	pending := sink.Units()
	if len(pending) == 0 {
		fmt.Printf("Sweep %s: all %d point(s) satisfied by existing data, nothing to submit\n", sw.Name, stats.Total)
		return nil
	}

	sub, err := slurm.Submit(cfg.Results.JobsDir, sw.Name, pending, cfg.Resources())
	if err != nil {
		return err
	}
	fmt.Printf("Sweep %s: submitted job %s (%d task(s), %d reused)\n", sw.Name, sub.JobID, sub.NumTasks, stats.Reused)
	fmt.Printf("  batch dir: %s\n", sub.BatchDir)
	return nil
}
