package result_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/sweep"
)

func makeResult(di int, p float64, trials, errCount int64) *result.RunResult {
	return &result.RunResult{
		Point:              sweep.Point{Distance: sweep.Distance{Di: di, Dj: di, T: di}, P: p},
		Trials:             trials,
		Errors:             errCount,
		ErrorRate:          float64(errCount) / float64(trials),
		ConfidenceInterval: 0.001,
		SummaryLine:        "summary",
		Criteria:           &sweep.Criteria{MinErrorCases: 10},
	}
}

func TestWriteAndReadPoint(t *testing.T) {
	dir := t.TempDir()
	r := makeResult(3, 0.01, 1000, 12)
	require.NoError(t, result.WritePoint(dir, r))

	got, err := result.ReadPoint(filepath.Join(dir, r.Point.Key()+".json"))
	require.NoError(t, err)
	assert.Equal(t, r, got)
	require.NotNil(t, got.Criteria)
	assert.Equal(t, 10, got.Criteria.MinErrorCases)
}

func TestLoadPointsMissingDir(t *testing.T) {
	got, err := result.LoadPoints(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadPointsMixed(t *testing.T) {
	dir := t.TempDir()
	fine := makeResult(3, 0.01, 1000, 12)
	require.NoError(t, result.WritePoint(dir, fine))

	consolidated := []*result.RunResult{
		makeResult(5, 0.01, 1000, 30),
		makeResult(7, 0.01, 1000, 55),
	}
	require.NoError(t, result.WriteConsolidated(filepath.Join(dir, result.ConsolidatedName), consolidated))

	got, err := result.LoadPoints(dir)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got, fine.Point.Key())
	assert.Contains(t, got, consolidated[0].Point.Key())
	assert.Contains(t, got, consolidated[1].Point.Key())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, result.WriteFileAtomic(path, []byte("first\n")))
	require.NoError(t, result.WriteFileAtomic(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	// No temp leftovers.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
