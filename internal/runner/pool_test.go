package runner_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/qecbench/montesweep/internal/runner"
)

func TestPool(t *testing.T) {
	var count atomic.Int32
	jobs := make([]runner.Job, 10)
	for i := range jobs {
		jobs[i] = func() error {
			count.Add(1)
			return nil
		}
	}
	errs := runner.RunPool(3, false, jobs)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if count.Load() != 10 {
		t.Errorf("expected 10 jobs, got %d", count.Load())
	}
}

func TestPoolKeepGoing(t *testing.T) {
	jobs := []runner.Job{
		func() error { return nil },
		func() error { return fmt.Errorf("fail one") },
		func() error { return fmt.Errorf("fail two") },
		func() error { return nil },
	}
	errs := runner.RunPool(1, false, jobs)
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %d", len(errs))
	}
}

func TestPoolFailFast(t *testing.T) {
	var ran atomic.Int32
	jobs := make([]runner.Job, 20)
	for i := range jobs {
		i := i
		jobs[i] = func() error {
			ran.Add(1)
			if i == 0 {
				return fmt.Errorf("first job fails")
			}
			return nil
		}
	}
	// Single worker makes dispatch strictly sequential, so the first
	// failure must stop everything after it.
	errs := runner.RunPool(1, true, jobs)
	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %d", len(errs))
	}
	if ran.Load() != 1 {
		t.Errorf("expected only the failing job to run, got %d", ran.Load())
	}
}

func TestPoolZeroWorkers(t *testing.T) {
	errs := runner.RunPool(0, false, []runner.Job{func() error { return nil }})
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}
