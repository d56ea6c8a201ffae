package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/qecbench/montesweep/internal/config"
	"github.com/qecbench/montesweep/internal/dispatch"
	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/runner"
	"github.com/qecbench/montesweep/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	flagSweep     string
	flagParallel  int
	flagKeepGoing bool
	flagRerun     bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute sweeps locally and aggregate results",
		RunE:  runSweeps,
	}
	cmd.Flags().StringVar(&flagSweep, "sweep", "", "filter to a single sweep")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent units (0 = CPUs minus reservation)")
	cmd.Flags().BoolVar(&flagKeepGoing, "keep-going", false, "continue past failing units and report all failures at the end")
	cmd.Flags().BoolVar(&flagRerun, "rerun", false, "ignore satisfied existing results and recompute every point")
	return cmd
}

func runSweeps(cmd *cobra.Command, args []string) error {
	// The migration tooling from the file-count cleanup emits rerun
	// command lines carrying this variable; honor it as collect mode.
	if os.Getenv("SWEEP_USE_EXISTING_DATA") == "1" {
		return collectSweeps(cmd, args)
	}

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
		if err := runOne(ctx, cfg, &sweeps[i]); err != nil {
			return fmt.Errorf("sweep %q: %w", sweeps[i].Name, err)
		}
	}
	return nil
}

func runOne(ctx context.Context, cfg *config.Config, sw *config.Sweep) error {
	workers := runner.Workers(localWorkers(cfg), cfg.Local.ReservedCPUs)
	units, err := sweep.Build(sw.Axes(), sw.Criteria(), buildOpts(cfg, sw, unitThreads(cfg, workers)))
	if err != nil {
		return err
	}

	sweepDir := result.SweepDir(cfg.Results.Dir, sw.Name)
	pointsDir := result.PointsDir(sweepDir)
	existing, err := result.LoadPoints(pointsDir)
	if err != nil {
		return err
	}
	if flagRerun {
		existing = nil
	}

	fmt.Printf("Sweep %s: %d point(s), %d worker(s)\n", sw.Name, len(units), workers)
	sink := dispatch.NewExecutingSink(pointsDir, sw.ErasureAxis)
	stats, err := dispatch.Dispatch(ctx, units, existing, sink, dispatch.Options{
		Workers:  workers,
		FailFast: !keepGoing(cfg),
	})
	if stats != nil {
		fmt.Printf("  reused %d, executed %d of %d\n", stats.Reused, stats.Dispatched, stats.Total)
	}
	if err != nil {
		return err
	}

	all := sink.Results()
	for k, r := range existing {
		if _, ok := all[k]; !ok {
			all[k] = r
		}
	}
	if err := result.WriteAggregates(sweepDir, sw.Name, sw.Axes(), sw.ErasureAxis, all); err != nil {
		return err
	}
	fmt.Printf("  aggregated into %s\n", sweepDir)
	return nil
}

func localWorkers(cfg *config.Config) int {
	if flagParallel > 0 {
		return flagParallel
	}
	return cfg.Local.Workers
}

func keepGoing(cfg *config.Config) bool {
	return flagKeepGoing || cfg.Local.KeepGoing
}

// unitThreads picks the simulator's own thread count. A parallel pool
// gets single-threaded units; a sequential run hands the spare CPUs to
// the simulator instead.
func unitThreads(cfg *config.Config, workers int) int {
	if workers > 1 {
		return 1
	}
	return runner.Workers(0, cfg.Local.ReservedCPUs)
}

func buildOpts(cfg *config.Config, sw *config.Sweep, threads int) sweep.BuildOpts {
	extra := append([]string(nil), cfg.Simulator.ExtraArgs...)
	extra = append(extra, sw.DecoderArgs...)
	return sweep.BuildOpts{
		Binary:          cfg.Simulator.Binary,
		Decoder:         sw.Decoder,
		ErrorModel:      sw.ErrorModel,
		ErasureAxis:     sw.ErasureAxis,
		Threads:         threads,
		RuntimeStatsLog: sw.RuntimeStatsLog,
		ExtraArgs:       extra,
	}
}

func filterSweeps(sweeps []config.Sweep, name string) []config.Sweep {
	if name == "" {
		return sweeps
	}
	var filtered []config.Sweep
	for _, s := range sweeps {
		if s.Name == name {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
