package pkg

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// workerCount sizes the worker pool for one operation: one worker per
// file up to the machine's parallelism when multithreading is enabled,
// exactly one otherwise. Sizing is per call, never process-global.
func workerCount(multithreaded bool, fileCount int) int {
	if !multithreaded {
		return 1
	}
	n := runtime.NumCPU()
	if fileCount < n {
		n = fileCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

// runLimited runs tasks on a bounded pool and returns the first
// failure, if any. Tasks must not share mutable state.
func runLimited(workers int, tasks []func() error) error {
	var eg errgroup.Group
	eg.SetLimit(workers)
	for _, task := range tasks {
		eg.Go(task)
	}
	return eg.Wait()
}
