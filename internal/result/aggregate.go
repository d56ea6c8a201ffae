package result

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qecbench/montesweep/internal/sweep"
)

// MissingPointsError fails an aggregation whose result set does not cover
// the full sweep. Aggregates are never written partial.
type MissingPointsError struct {
	Sweep string
	Keys  []string
}

func (e *MissingPointsError) Error() string {
	return fmt.Sprintf("sweep %q missing %d result point(s): %s", e.Sweep, len(e.Keys), strings.Join(e.Keys, ", "))
}

// DistanceFileName is the per-distance aggregated output, one line per
// noise rate.
func DistanceFileName(d sweep.Distance) string {
	return fmt.Sprintf("d_%d_%d_%d.txt", d.Di, d.Dj, d.T)
}

// WriteAggregates writes one aggregated file per distance triple under
// sweepDir. Lines appear in the declared axis order regardless of the
// order results completed in: each line is "<rate> <summary-line>". The
// whole sweep must be covered; otherwise nothing is written and the
// missing points are reported.
func WriteAggregates(sweepDir, sweepName string, axes sweep.Axes, erasure bool, results map[string]*RunResult) error {
	points, err := sweep.Expand(axes, erasure)
	if err != nil {
		return err
	}
	var missing []string
	for _, pt := range points {
		if _, ok := results[pt.Key()]; !ok {
			missing = append(missing, pt.Key())
		}
	}
	if len(missing) > 0 {
		return &MissingPointsError{Sweep: sweepName, Keys: missing}
	}

	distances, err := axes.Distances()
	if err != nil {
		return err
	}
	for _, d := range distances {
		var b strings.Builder
		for _, rate := range axes.Rates {
			pt := sweep.Point{Distance: d}
			if erasure {
				pt.Pe = rate
			} else {
				pt.P = rate
			}
			r := results[pt.Key()]
			fmt.Fprintf(&b, "%g %s\n", rate, r.SummaryLine)
		}
		path := filepath.Join(sweepDir, DistanceFileName(d))
		if err := WriteFileAtomic(path, []byte(b.String())); err != nil {
			return fmt.Errorf("writing aggregate %s: %w", path, err)
		}
	}
	return nil
}
