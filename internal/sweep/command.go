package sweep

import (
	"strconv"
	"strings"
)

// Unit is one fully resolved simulator invocation for a single
// configuration point. Immutable after Build; consumed exactly once by an
// execution backend.
type Unit struct {
	Point    Point
	Argv     []string
	Threads  int
	Criteria Criteria
}

// Key returns the unit's stable identity, shared with its result files.
func (u Unit) Key() string { return u.Point.Key() }

// BuildOpts carries the per-sweep invocation parameters that do not vary
// across configuration points.
type BuildOpts struct {
	Binary          string
	Decoder         string
	ErrorModel      string
	ErasureAxis     bool
	Threads         int
	RuntimeStatsLog string
	ExtraArgs       []string
}

// Build expands the axes into one Unit per configuration point. Each unit
// invokes the simulator on a single point: the distance and rate vectors
// in its argv are singletons, so every unit is independently re-runnable
// and addressable by its point key.
func Build(axes Axes, c Criteria, opts BuildOpts) ([]Unit, error) {
	points, err := Expand(axes, opts.ErasureAxis)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, len(points))
	for _, pt := range points {
		argv := []string{
			opts.Binary, "benchmark",
			intVec([]int{pt.Di}),
			intVec([]int{pt.Dj}),
			intVec([]int{pt.T}),
			rateVec([]float64{pt.P}),
			"-p" + strconv.Itoa(opts.Threads),
		}
		argv = append(argv, c.Flags()...)
		argv = append(argv, "--decoder", opts.Decoder)
		if opts.ErrorModel != "" {
			argv = append(argv, "--error_model", opts.ErrorModel)
		}
		if opts.ErasureAxis {
			argv = append(argv, "--pes", rateVec([]float64{pt.Pe}))
		}
		if opts.RuntimeStatsLog != "" {
			argv = append(argv, "--log_runtime_statistics", opts.RuntimeStatsLog)
		}
		argv = append(argv, opts.ExtraArgs...)
		units = append(units, Unit{
			Point:    pt,
			Argv:     argv,
			Threads:  opts.Threads,
			Criteria: c,
		})
	}
	return units, nil
}

func intVec(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func rateVec(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatRate(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
