package utils

import (
	"context"
	"sync"
)

// ParallelForEach executes a function for each item in parallel with a
// bounded number of workers. Per-file conversion is embarrassingly parallel:
// there is no ordering dependency between items and no shared state beyond
// the returned error slice, which is indexed like items.
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []error {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	errors := make([]error, len(items))
	done := make([]bool, len(items))
	taskChan := make(chan int, len(items))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskChan:
					if !ok {
						return
					}
					var err error
					if err = ctx.Err(); err == nil {
						err = fn(ctx, items[idx])
					}
					mu.Lock()
					errors[idx] = err
					done[idx] = true
					mu.Unlock()
				}
			}
		}()
	}

	for i := range items {
		taskChan <- i
	}
	close(taskChan)
	wg.Wait()

	// Items the workers never reached report the cancellation instead of
	// a silent nil.
	if err := ctx.Err(); err != nil {
		for i := range errors {
			if !done[i] && errors[i] == nil {
				errors[i] = err
			}
		}
	}
	return errors
}

// FirstError returns the first non-nil error from a slice of errors
func FirstError(errors []error) error {
	for _, err := range errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// CollectErrors collects all non-nil errors from a slice
func CollectErrors(errors []error) []error {
	var result []error
	for _, err := range errors {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}
