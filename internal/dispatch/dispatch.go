// Package dispatch routes a sweep's units of work to an execution
// strategy. One sweep definition drives both strategies through the
// CommandSink interface: an ExecutingSink runs units locally and records
// results, a CollectingSink gathers them for cluster submission. The
// sweep logic itself never branches on which one it was given.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/qecbench/montesweep/internal/result"
	"github.com/qecbench/montesweep/internal/reuse"
	"github.com/qecbench/montesweep/internal/runner"
	"github.com/qecbench/montesweep/internal/sweep"
)

// CommandSink consumes one unit of work at a time.
type CommandSink interface {
	Handle(ctx context.Context, u sweep.Unit) error
}

// CollectingSink buffers units instead of executing them. Safe for
// concurrent Handle calls, though collection normally runs sequentially.
type CollectingSink struct {
	mu    sync.Mutex
	units []sweep.Unit
}

func (s *CollectingSink) Handle(_ context.Context, u sweep.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, u)
	return nil
}

// Units returns the buffered units in handling order.
func (s *CollectingSink) Units() []sweep.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sweep.Unit(nil), s.units...)
}

// ExecutingSink runs each unit as a local subprocess, parses its summary
// line, and records the result both in memory and as a point file.
type ExecutingSink struct {
	pointsDir string
	erasure   bool

	mu      sync.Mutex
	results map[string]*result.RunResult
}

func NewExecutingSink(pointsDir string, erasureAxis bool) *ExecutingSink {
	return &ExecutingSink{
		pointsDir: pointsDir,
		erasure:   erasureAxis,
		results:   make(map[string]*result.RunResult),
	}
}

func (s *ExecutingSink) Handle(ctx context.Context, u sweep.Unit) error {
	fmt.Println(strings.Join(u.Argv, " "))
	out, err := runner.Run(ctx, u)
	if err != nil {
		return err
	}
	r, err := result.Parse(out.Stdout)
	if err != nil {
		return fmt.Errorf("unit %s: %w", u.Key(), err)
	}
	if got := r.Point.Key(); got != u.Key() {
		return fmt.Errorf("unit %s: summary line reports point %s", u.Key(), got)
	}
	r.DurationS = int(out.Duration.Seconds())
	r.ExitCode = out.ExitCode
	criteria := u.Criteria
	r.Criteria = &criteria
	if err := result.WritePoint(s.pointsDir, r); err != nil {
		return fmt.Errorf("unit %s: %w", u.Key(), err)
	}
	s.mu.Lock()
	s.results[u.Key()] = r
	s.mu.Unlock()
	fmt.Printf("%g %s\n", u.Point.Rate(s.erasure), r.SummaryLine)
	return nil
}

// Results returns everything executed so far, keyed by point.
func (s *ExecutingSink) Results() map[string]*result.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*result.RunResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Options controls how pending units are dispatched to the sink.
type Options struct {
	Workers  int
	FailFast bool
}

// Stats summarizes one sweep dispatch.
type Stats struct {
	Total      int
	Reused     int
	Dispatched int
}

// Dispatch filters units against existing results and hands the pending
// ones to the sink. With one worker, dispatch is strictly sequential;
// otherwise a bounded pool runs units concurrently. Under fail-fast the
// first failure halts further dispatch.
func Dispatch(ctx context.Context, units []sweep.Unit, existing map[string]*result.RunResult, sink CommandSink, opts Options) (*Stats, error) {
	satisfied, pending := reuse.Filter(units, existing)
	stats := &Stats{Total: len(units), Reused: len(satisfied), Dispatched: len(pending)}

	if opts.Workers <= 1 {
		var errs []error
		for _, u := range pending {
			if err := sink.Handle(ctx, u); err != nil {
				if opts.FailFast {
					return stats, err
				}
				errs = append(errs, err)
			}
		}
		return stats, errors.Join(errs...)
	}

	jobs := make([]runner.Job, len(pending))
	for i, u := range pending {
		u := u
		jobs[i] = func() error { return sink.Handle(ctx, u) }
	}
	if errs := runner.RunPool(opts.Workers, opts.FailFast, jobs); len(errs) > 0 {
		return stats, errors.Join(errs...)
	}
	return stats, nil
}
