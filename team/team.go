package team

import (
	"sync"
)

// WorkerFunc processes a job of type T and returns a result of type U.
type WorkerFunc[T any, U any] func(T) (U, error)

// Team is a generic worker pool. WorkerCount goroutines drain the job
// slice; results and errors are collected separately so a failed job does
// not hide the others.
type Team[T any, U any] struct {
	WorkerCount int
	Worker      WorkerFunc[T, U]
}

// Run feeds jobs to the workers and returns the successful results plus
// every error encountered. Result order is not guaranteed.
func (t *Team[T, U]) Run(jobs []T) ([]U, []error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	workers := t.WorkerCount
	if workers <= 0 || workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan T, len(jobs))
	resultChan := make(chan U, len(jobs))
	errChan := make(chan error, len(jobs))
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				result, err := t.Worker(job)
				if err != nil {
					errChan <- err
					continue
				}
				resultChan <- result
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()
	close(resultChan)
	close(errChan)

	var results []U
	for r := range resultChan {
		results = append(results, r)
	}
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	return results, errs
}
