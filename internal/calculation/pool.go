package calculation

import (
	"context"
	"runtime"
	"sync"
)

// defaultWorkers is the fan-out used when no worker count is configured
func defaultWorkers() int {
	return runtime.NumCPU()
}

// runParallel calls fn for every index in [0, n) with at most workers calls in flight.
// Indexes not yet started when ctx is done are skipped; fn must record its own result.
func runParallel(ctx context.Context, workers, n int, fn func(i int)) {
	if workers <= 0 {
		workers = defaultWorkers()
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				return
			}
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case semaphore <- struct{}{}: // Acquire semaphore
		}
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-semaphore }() // Release semaphore
			if ctx.Err() != nil {
				return
			}
			fn(index)
		}(i)
	}

	wg.Wait()
}
