// Package reuse decides whether previously recorded results already
// satisfy a sweep point's stopping criteria, so resumed sweeps skip
// satisfied points instead of recomputing them.
package reuse

import (
	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/sweep"
)

// Satisfied reports whether an existing result makes a fresh run for its
// point unnecessary under the given criteria. A point is satisfied once
// either finite count bound is met: the recorded error count reached
// min_error_cases, or the recorded trial count reached max_trials.
//
// The check is conservative. A nil or failed result, a result with no
// recorded criteria (unknown provenance), or criteria bounded only by a
// time budget (a recorded duration says nothing about the budget the
// data was collected under), means rerun.
func Satisfied(c sweep.Criteria, existing *result.RunResult) bool {
	if existing == nil || existing.ExitCode != 0 || existing.Criteria == nil {
		return false
	}
	if c.MinErrorCases > 0 && existing.Errors >= int64(c.MinErrorCases) {
		return true
	}
	if c.MaxTrials > 0 && existing.Trials >= c.MaxTrials {
		return true
	}
	return false
}

// Filter splits units into those whose points are already satisfied by
// existing results and those still pending.
func Filter(units []sweep.Unit, existing map[string]*result.RunResult) (satisfied, pending []sweep.Unit) {
	for _, u := range units {
		if Satisfied(u.Criteria, existing[u.Key()]) {
			satisfied = append(satisfied, u)
		} else {
			pending = append(pending, u)
		}
	}
	return satisfied, pending
}
