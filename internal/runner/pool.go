package runner

import (
	"sync"
	"sync/atomic"
)

type Job func() error

// RunPool executes jobs with at most maxWorkers concurrently and returns
// all errors. Under failFast, no new job is dispatched after the first
// failure; jobs already in flight run to completion and are never
// cancelled.
func RunPool(maxWorkers int, failFast bool, jobs []Job) []error {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var (
		mu     sync.Mutex
		errs   []error
		wg     sync.WaitGroup
		failed atomic.Bool
	)
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		// Acquire before checking the failure flag so a single-worker
		// pool observes the previous job's outcome before dispatching.
		sem <- struct{}{}
		if failFast && failed.Load() {
			<-sem
			break
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := j(); err != nil {
				failed.Store(true)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}
	wg.Wait()
	return errs
}
