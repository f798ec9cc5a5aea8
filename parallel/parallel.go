// Package parallel runs functions concurrently without losing the
// diagnostic context. A store attached to a context is not safe for
// concurrent use, so each spawned goroutine receives its own copy of the
// caller's store: entries set by the caller are visible in every branch,
// and entries set inside a branch stay in that branch.
package parallel

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/go-mdc"
)

// branchContexts snapshots the caller's store once per branch. Copies are
// taken up front, in the caller's goroutine, so the caller may keep
// mutating its store after the branches start.
func branchContexts(ctx context.Context, n int) []context.Context {
	parent := mdc.FromContext(ctx)

	ctxs := make([]context.Context, n)
	for i := range ctxs {
		if parent == nil {
			ctxs[i] = ctx
			continue
		}
		ctxs[i] = mdc.WithStore(ctx, parent.Copy())
	}
	return ctxs
}

// rebase swaps the store attached to branch onto ctx. errgroup derives a
// cancelable context from the original; the branch must observe that
// cancellation while keeping its own store.
func rebase(ctx context.Context, branch context.Context) context.Context {
	if s := mdc.FromContext(branch); s != nil {
		return mdc.WithStore(ctx, s)
	}
	return ctx
}

// Parallel executes the functions concurrently and returns on first error.
// All goroutines are canceled when any function returns an error.
func Parallel[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	branches := branchContexts(ctx, len(fns))

	g, gctx := errgroup.WithContext(ctx)
	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(rebase(gctx, branches[i]))
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("parallel execution failed: %w", err)
	}

	return results, nil
}

// Parallel2 executes two functions concurrently and returns both results or
// the first error.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (result1 T1, result2 T2, err error) {
	branches := branchContexts(ctx, 2)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error

		result1, fnErr = fn1(rebase(gctx, branches[0]))

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		result2, fnErr = fn2(rebase(gctx, branches[1]))

		return fnErr
	})

	err = g.Wait()
	if err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, nil
}

// Parallel3 executes three functions concurrently and returns all results or
// the first error.
func Parallel3[T1, T2, T3 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
	fn3 func(context.Context) (T3, error),
) (result1 T1, result2 T2, result3 T3, err error) {
	branches := branchContexts(ctx, 3)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error

		result1, fnErr = fn1(rebase(gctx, branches[0]))

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		result2, fnErr = fn2(rebase(gctx, branches[1]))

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		result3, fnErr = fn3(rebase(gctx, branches[2]))

		return fnErr
	})

	err = g.Wait()
	if err != nil {
		var (
			zero1 T1
			zero2 T2
			zero3 T3
		)

		return zero1, zero2, zero3, fmt.Errorf("parallel execution failed: %w", err)
	}

	return result1, result2, result3, nil
}

// ParallelLimit executes functions with bounded concurrency.
// At most limit goroutines run simultaneously.
func ParallelLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) ([]T, error) {
	branches := branchContexts(ctx, len(fns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(rebase(gctx, branches[i]))
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("parallel execution failed: %w", err)
	}

	return results, nil
}

// PartialResult holds a result or an error for partial success patterns.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial executes functions and collects all results, even on
// partial failure. Unlike Parallel, this does not cancel on first error.
func ParallelPartial[T any](
	ctx context.Context,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	branches := branchContexts(ctx, len(fns))
	results := make([]PartialResult[T], len(fns))

	var wg sync.WaitGroup

	for i, fn := range fns {
		wg.Go(func() {
			value, err := fn(branches[i])
			results[i] = PartialResult[T]{Value: value, Err: err}
		})
	}

	wg.Wait()

	return results
}

// ParallelPartialLimit executes functions with bounded concurrency,
// collecting all results.
func ParallelPartialLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	branches := branchContexts(ctx, len(fns))
	results := make([]PartialResult[T], len(fns))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, fn := range fns {
		wg.Go(func() {
			sem <- struct{}{}

			defer func() { <-sem }()

			value, err := fn(branches[i])
			results[i] = PartialResult[T]{Value: value, Err: err}
		})
	}

	wg.Wait()

	return results
}

// FanOut distributes work items across a fixed number of workers. Each
// worker owns one copy of the caller's store for its whole lifetime, so
// entries it inserts are visible across the items it processes.
func FanOut[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	branches := branchContexts(ctx, workers)

	g, gctx := errgroup.WithContext(ctx)
	itemChan := make(chan T)

	// Start workers.
	for i := range workers {
		g.Go(func() error {
			wctx := rebase(gctx, branches[i])

			for item := range itemChan {
				err := fn(wctx, item)
				if err != nil {
					return err
				}
			}

			return nil
		})
	}

	// Feed items to workers.
	g.Go(func() error {
		defer close(itemChan)

		for _, item := range items {
			select {
			case itemChan <- item:
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	})

	err := g.Wait()
	if err != nil {
		return fmt.Errorf("fan out failed: %w", err)
	}

	return nil
}
