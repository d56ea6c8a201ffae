// Package result parses simulator output and manages the on-disk result
// store: fine-grained per-point files, consolidated files, and the
// human-readable per-distance aggregates.
package result

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qecbench/montesweep/internal/sweep"
)

// Summary-line field positions. The simulator's final stdout line is
// space-separated: p di dj t pe total_trials error_count error_rate
// confidence_interval [extra fields...].
const (
	fieldP = iota
	fieldDi
	fieldDj
	fieldT
	fieldPe
	fieldTrials
	fieldErrors
	fieldErrorRate
	fieldConfidence
	summaryFields
)

// RunResult records one completed invocation. Criteria holds the stopping
// bounds that produced it, so later runs can judge whether the data is
// reusable without guessing.
type RunResult struct {
	Point              sweep.Point     `json:"point"`
	Trials             int64           `json:"trials"`
	Errors             int64           `json:"errors"`
	ErrorRate          float64         `json:"error_rate"`
	ConfidenceInterval float64         `json:"confidence_interval"`
	DurationS          int             `json:"duration_s"`
	ExitCode           int             `json:"exit_code"`
	SummaryLine        string          `json:"summary_line"`
	Criteria           *sweep.Criteria `json:"criteria,omitempty"`
}

// MalformedOutputError reports simulator output whose trailing summary
// line is absent or not numeric at the expected positions.
type MalformedOutputError struct {
	Line   string
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed simulator output (%s): %q", e.Reason, e.Line)
}

// Parse extracts a RunResult from one invocation's combined stdout. Only
// the last non-empty line is inspected; everything before it is progress
// output.
func Parse(stdout string) (*RunResult, error) {
	line := lastLine(stdout)
	if line == "" {
		return nil, &MalformedOutputError{Reason: "no summary line"}
	}
	fields := strings.Fields(line)
	if len(fields) < summaryFields {
		return nil, &MalformedOutputError{Line: line, Reason: fmt.Sprintf("want >= %d fields, got %d", summaryFields, len(fields))}
	}

	floats := make([]float64, summaryFields)
	for i := range floats {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, &MalformedOutputError{Line: line, Reason: fmt.Sprintf("field %d not numeric", i)}
		}
		floats[i] = v
	}
	trials, err := strconv.ParseInt(fields[fieldTrials], 10, 64)
	if err != nil {
		return nil, &MalformedOutputError{Line: line, Reason: "trial count not an integer"}
	}
	errCount, err := strconv.ParseInt(fields[fieldErrors], 10, 64)
	if err != nil {
		return nil, &MalformedOutputError{Line: line, Reason: "error count not an integer"}
	}
	rate := floats[fieldErrorRate]
	if rate < 0 || rate > 1 {
		return nil, &MalformedOutputError{Line: line, Reason: "error rate outside [0,1]"}
	}
	if floats[fieldConfidence] < 0 {
		return nil, &MalformedOutputError{Line: line, Reason: "negative confidence interval"}
	}

	return &RunResult{
		Point: sweep.Point{
			Distance: sweep.Distance{
				Di: int(floats[fieldDi]),
				Dj: int(floats[fieldDj]),
				T:  int(floats[fieldT]),
			},
			P:  floats[fieldP],
			Pe: floats[fieldPe],
		},
		Trials:             trials,
		Errors:             errCount,
		ErrorRate:          rate,
		ConfidenceInterval: floats[fieldConfidence],
		SummaryLine:        line,
	}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, " \r\n"), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
