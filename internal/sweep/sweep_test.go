package sweep_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qecbench/montesweep/internal/sweep"
)

func TestDistancesZip(t *testing.T) {
	a := sweep.Axes{
		Di: []int{3, 4, 5},
		Dj: []int{9, 12, 15},
		T:  []int{9, 12, 15},
	}
	ds, err := a.Distances()
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, sweep.Distance{Di: 4, Dj: 12, T: 12}, ds[1])
}

func TestDistancesBroadcast(t *testing.T) {
	a := sweep.Axes{Di: []int{3, 5, 7}}
	ds, err := a.Distances()
	require.NoError(t, err)
	assert.Equal(t, sweep.Distance{Di: 5, Dj: 5, T: 5}, ds[1])
}

func TestDistancesMismatch(t *testing.T) {
	tests := []struct {
		name string
		axes sweep.Axes
		axis string
	}{
		{"dj too short", sweep.Axes{Di: []int{3, 5}, Dj: []int{9}}, "dj"},
		{"t too long", sweep.Axes{Di: []int{3}, T: []int{3, 5}}, "t"},
		{"empty di", sweep.Axes{}, "di"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.axes.Distances()
			var mse *sweep.MalformedSweepError
			require.ErrorAs(t, err, &mse)
			assert.Equal(t, tt.axis, mse.Axis)
		})
	}
}

func TestExpandCartesian(t *testing.T) {
	a := sweep.Axes{
		Di:    []int{3, 5},
		Rates: []float64{0.01, 0.02, 0.03},
	}
	points, err := sweep.Expand(a, false)
	require.NoError(t, err)
	require.Len(t, points, 6)

	// Distance-major order: all rates of d=3 first.
	assert.Equal(t, 3, points[0].Di)
	assert.Equal(t, 0.01, points[0].P)
	assert.Equal(t, 3, points[2].Di)
	assert.Equal(t, 0.03, points[2].P)
	assert.Equal(t, 5, points[3].Di)
	assert.Equal(t, 0.01, points[3].P)
}

func TestExpandErasureAxis(t *testing.T) {
	a := sweep.Axes{Di: []int{3}, Rates: []float64{0.04}}
	points, err := sweep.Expand(a, true)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].P)
	assert.Equal(t, 0.04, points[0].Pe)
	assert.Equal(t, 0.04, points[0].Rate(true))
}

func TestExpandNoRates(t *testing.T) {
	_, err := sweep.Expand(sweep.Axes{Di: []int{3}}, false)
	var mse *sweep.MalformedSweepError
	require.ErrorAs(t, err, &mse)
	assert.Equal(t, "rates", mse.Axis)
}

func TestPointKey(t *testing.T) {
	p := sweep.Point{Distance: sweep.Distance{Di: 3, Dj: 9, T: 9}, P: 0.008}
	assert.Equal(t, "d3_9_9-p0.008", p.Key())

	e := sweep.Point{Distance: sweep.Distance{Di: 5, Dj: 5, T: 5}, Pe: 0.05}
	assert.Equal(t, "d5_5_5-p0-pe0.05", e.Key())

	// Keys are stable across expansions of the same axes.
	a := sweep.Axes{Di: []int{3}, Rates: []float64{0.008}}
	p1, err := sweep.Expand(a, false)
	require.NoError(t, err)
	p2, err := sweep.Expand(a, false)
	require.NoError(t, err)
	assert.Equal(t, p1[0].Key(), p2[0].Key())
}
