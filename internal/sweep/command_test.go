package sweep_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qecbench/montesweep/internal/sweep"
)

func TestBuildOneUnitPerPoint(t *testing.T) {
	axes := sweep.Axes{Di: []int{3, 5}, Rates: []float64{0.01, 0.02}}
	c := sweep.Criteria{MinErrorCases: 10}
	units, err := sweep.Build(axes, c, sweep.BuildOpts{Binary: "qecsim", Decoder: "UF", Threads: 1})
	require.NoError(t, err)
	require.Len(t, units, 4)

	for _, u := range units {
		assert.Equal(t, c, u.Criteria)
		assert.Equal(t, "qecsim", u.Argv[0])
		assert.Equal(t, "benchmark", u.Argv[1])
	}
	// Unit order matches expansion order.
	assert.Equal(t, "d3_3_3-p0.01", units[0].Key())
	assert.Equal(t, "d5_5_5-p0.01", units[2].Key())
}

func TestBuildArgv(t *testing.T) {
	axes := sweep.Axes{Di: []int{3}, Dj: []int{9}, T: []int{9}, Rates: []float64{0.008}}
	units, err := sweep.Build(axes, sweep.Criteria{MinErrorCases: 2000, MaxTrials: 100000000}, sweep.BuildOpts{
		Binary:          "qecsim",
		Decoder:         "UF",
		ErrorModel:      "GenericBiasedWithBiasedCX",
		Threads:         12,
		RuntimeStatsLog: "target/decoding_time_UF.txt",
		ExtraArgs:       []string{"--max_half_weight", "10", "--bias_eta", "100"},
	})
	require.NoError(t, err)
	require.Len(t, units, 1)

	cmd := strings.Join(units[0].Argv, " ")
	assert.Equal(t,
		"qecsim benchmark [3] [9] [9] [0.008] -p12 -m100000000 -e2000 --time_budget 0 "+
			"--decoder UF --error_model GenericBiasedWithBiasedCX "+
			"--log_runtime_statistics target/decoding_time_UF.txt "+
			"--max_half_weight 10 --bias_eta 100",
		cmd)

	// The embedded stopping flags round-trip to the original bounds.
	got, err := sweep.ParseFlags(units[0].Argv)
	require.NoError(t, err)
	assert.Equal(t, units[0].Criteria, got)
}

func TestBuildErasureArgv(t *testing.T) {
	axes := sweep.Axes{Di: []int{5}, Rates: []float64{0.05}}
	units, err := sweep.Build(axes, sweep.Criteria{TimeBudget: 15 * time.Minute}, sweep.BuildOpts{
		Binary:      "qecsim",
		Decoder:     "UF",
		ErasureAxis: true,
		Threads:     1,
	})
	require.NoError(t, err)
	require.Len(t, units, 1)

	cmd := strings.Join(units[0].Argv, " ")
	// Pauli rate pinned at zero, erasure rate on the --pes flag.
	assert.Contains(t, cmd, " [0] ")
	assert.Contains(t, cmd, "--pes [0.05]")
	assert.Contains(t, cmd, "--time_budget 900")
}

func TestBuildMalformedAxes(t *testing.T) {
	_, err := sweep.Build(sweep.Axes{Di: []int{3, 5}, Dj: []int{9}}, sweep.Criteria{MinErrorCases: 1}, sweep.BuildOpts{Binary: "qecsim", Decoder: "UF"})
	var mse *sweep.MalformedSweepError
	assert.ErrorAs(t, err, &mse)
}
