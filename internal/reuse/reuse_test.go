package reuse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/reuse"
	"github.com/qecbench/montesweep/internal/sweep"
)

func TestSatisfied(t *testing.T) {
	criteria := sweep.Criteria{MinErrorCases: 100, MaxTrials: 100000}

	tests := []struct {
		name     string
		c        sweep.Criteria
		existing *result.RunResult
		want     bool
	}{
		{"no existing result", criteria, nil, false},
		{"both bounds unmet", criteria, &result.RunResult{Trials: 50000, Errors: 40, Criteria: &criteria}, false},
		{"error bound met", criteria, &result.RunResult{Trials: 50000, Errors: 100, Criteria: &criteria}, true},
		{"error bound exceeded", criteria, &result.RunResult{Trials: 50000, Errors: 250, Criteria: &criteria}, true},
		{"trial bound met", criteria, &result.RunResult{Trials: 100000, Errors: 40, Criteria: &criteria}, true},
		{"failed run never reused", criteria, &result.RunResult{Trials: 100000, Errors: 250, ExitCode: 1, Criteria: &criteria}, false},
		{"unrecorded criteria never reused", criteria, &result.RunResult{Trials: 100000, Errors: 250}, false},
		{"time-only criteria are ambiguous", sweep.Criteria{TimeBudget: 15 * time.Minute}, &result.RunResult{Trials: 1 << 40, Errors: 1 << 30, Criteria: &criteria}, false},
		{"unbounded errors ignored", sweep.Criteria{MaxTrials: 1000}, &result.RunResult{Trials: 999, Errors: 1 << 30, Criteria: &criteria}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reuse.Satisfied(tt.c, tt.existing))
		})
	}
}

func TestFilter(t *testing.T) {
	c := sweep.Criteria{MinErrorCases: 10}
	units, err := sweep.Build(sweep.Axes{Di: []int{3, 5, 7}, Rates: []float64{0.01}}, c, sweep.BuildOpts{Binary: "sim", Decoder: "UF"})
	assert.NoError(t, err)

	existing := map[string]*result.RunResult{
		units[0].Key(): {Trials: 1000, Errors: 50, Criteria: &c},
	}
	satisfied, pending := reuse.Filter(units, existing)
	assert.Len(t, satisfied, 1)
	assert.Len(t, pending, 2)
	assert.Equal(t, units[0].Key(), satisfied[0].Key())
}
