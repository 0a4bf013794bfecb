// Package async provides utilities for parallel task execution.
//
// This package contains generic helpers for running multiple operations concurrently,
// collecting results, and handling errors. It's used to start the orchestrator's
// readiness watches concurrently and for other independent, fan-out work.
package async

import (
	"context"
	"errors"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes multiple tasks in parallel and waits for all of them
// to finish, joining every error encountered into a single error.
//
// If failFast is true, RunParallel returns as soon as the first task fails
// without waiting for the remaining tasks to complete; their results are
// discarded.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "pod watch", Func: startPodWatch},
//	    {Name: "service watch", Func: startServiceWatch},
//	}
//	if err := RunParallel(ctx, tasks, false); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task, failFast bool) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		task := task
		go func() {
			err := task.Func(ctx)
			resultChan <- result{name: task.Name, err: err}
		}()
	}

	var errs []error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			errs = append(errs, fmt.Errorf("task %s failed: %w", res.name, res.err))
			if failFast {
				return errors.Join(errs...)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(errs...)
}
