package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/qecbench/montesweep/internal/config"
	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/reuse"
	"github.com/qecbench/montesweep/internal/sweep"
	"github.com/spf13/cobra"
)

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Gather finished cluster job output into the result store",
		Long: "Parse the jobout files a previous `montesweep submit` produced, record " +
			"them as result points, and write the aggregated per-distance files. Fails " +
			"with a missing-point report when jobs have not all finished.",
		RunE: collectSweeps,
	}
	cmd.Flags().StringVar(&flagSweep, "sweep", "", "filter to a single sweep")
	return cmd
}

func collectSweeps(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	sweeps := filterSweeps(cfg.Sweeps, flagSweep)
	if len(sweeps) == 0 {
		return fmt.Errorf("no sweep matches %q", flagSweep)
	}

	for i := range sweeps {
		if err := collectOne(cfg, &sweeps[i]); err != nil {
			return fmt.Errorf("sweep %q: %w", sweeps[i].Name, err)
		}
	}
	return nil
}

func collectOne(cfg *config.Config, sw *config.Sweep) error {
	units, err := sweep.Build(sw.Axes(), sw.Criteria(), buildOpts(cfg, sw, cfg.Slurm.CPUsPerTask))
	if err != nil {
		return err
	}

	sweepDir := result.SweepDir(cfg.Results.Dir, sw.Name)
	pointsDir := result.PointsDir(sweepDir)
	existing, err := result.LoadPoints(pointsDir)
	if err != nil {
		return err
	}

	_, pending := reuse.Filter(units, existing)
	collected := 0
	for _, u := range pending {
		path, ok := findJobout(cfg.Results.JobsDir, sw.Name, u.Key())
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading jobout: %w", err)
		}
		r, err := result.Parse(string(data))
		if err != nil {
			// A short or garbled jobout usually means the job died
			// mid-run; the point stays missing and the aggregation
			// step reports it.
			log.Printf("warning: skipping %s: %v", path, err)
			continue
		}
		if got := r.Point.Key(); got != u.Key() {
			// A jobout filed under the wrong point would poison the
			// result tree; leave the point missing instead.
			log.Printf("warning: skipping %s: summary line reports point %s, expected %s", path, got, u.Key())
			continue
		}
		criteria := u.Criteria
		r.Criteria = &criteria
		if err := result.WritePoint(pointsDir, r); err != nil {
			return err
		}
		existing[u.Key()] = r
		collected++
	}
	fmt.Printf("Sweep %s: collected %d new point(s), %d total recorded\n", sw.Name, collected, len(existing))

	if err := result.WriteAggregates(sweepDir, sw.Name, sw.Axes(), sw.ErasureAxis, existing); err != nil {
		return err
	}
	fmt.Printf("  aggregated into %s\n", sweepDir)
	return nil
}

// findJobout locates a point's jobout across this sweep's batch dirs,
// preferring the most recently written when resubmissions left several.
func findJobout(jobsDir, sweepName, key string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(jobsDir, sweepName+"-*", "out", key+".jobout"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	best := ""
	var bestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().UnixNano() > bestMod {
			best = m
			bestMod = info.ModTime().UnixNano()
		}
	}
	return best, best != ""
}
