// Package fileproc provides concurrent file processing utilities.
//
// All mapping functions return result slices aligned with the input: the
// value at index i belongs to files[i], and a failed file leaves the zero
// value in its slot. Alignment is what keeps downstream aggregation
// deterministic regardless of worker scheduling.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/recluselabs/recluse/pkg/extract"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed, success or not.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
// Receives the file path and the error. If nil, errors are silently skipped.
type ErrorFunc func(path string, err error)

// UnitFunc processes one file with a worker-local extraction registry.
type UnitFunc[T any] func(reg *extract.Registry, path string) (T, error)

// MapUnits processes files in parallel, calling fn for each file with a
// per-worker registry. Individual file errors leave a zero-value slot; use
// MapUnitsCollectErrors or an ErrorFunc to observe them.
// Uses 2x NumCPU workers.
func MapUnits[T any](files []string, fn UnitFunc[T]) []T {
	return MapUnitsN(context.Background(), files, 0, fn, nil, nil)
}

// MapUnitsWithProgress processes files in parallel with a progress callback.
func MapUnitsWithProgress[T any](files []string, fn UnitFunc[T], onProgress ProgressFunc) []T {
	return MapUnitsN(context.Background(), files, 0, fn, onProgress, nil)
}

// MapUnitsCollectErrors processes files in parallel and collects all errors.
func MapUnitsCollectErrors[T any](files []string, fn UnitFunc[T]) ([]T, *ProcessingErrors) {
	errs := &ProcessingErrors{}
	results := MapUnitsN(context.Background(), files, 0, fn, nil, errs.Add)
	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// MapUnitsN processes files with configurable worker count and callbacks.
// If maxWorkers is <= 0, defaults to 2x NumCPU. Registries are created once
// per worker slot and closed after the pool drains; tree-sitter parsers are
// not goroutine-safe, so a registry is only ever held by one task at a time.
// Files submitted after ctx is cancelled fail with ctx.Err().
func MapUnitsN[T any](ctx context.Context, files []string, maxWorkers int, fn UnitFunc[T], onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}
	if maxWorkers > len(files) {
		maxWorkers = len(files)
	}

	registries := make(chan *extract.Registry, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		registries <- extract.NewRegistry()
	}

	results := make([]T, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				if onError != nil {
					onError(path, ctx.Err())
				}
				if onProgress != nil {
					onProgress()
				}
				return ctx.Err()
			default:
			}

			reg := <-registries
			defer func() { registries <- reg }()

			result, err := fn(reg, path)

			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				if onProgress != nil {
					onProgress()
				}
				return nil
			}

			if onProgress != nil {
				onProgress()
			}

			// Each task owns exactly one slot, so no lock is needed.
			results[i] = result
			return nil
		})
	}
	_ = p.Wait()

	close(registries)
	for reg := range registries {
		reg.Close()
	}

	return results
}

// ForEachFile processes files in parallel, calling fn for each file.
// No registry is provided; use this for non-extraction work such as
// content hashing.
// Uses 2x NumCPU workers.
func ForEachFile[T any](files []string, fn func(string) (T, error)) []T {
	return ForEachFileN(files, 0, fn, nil, nil)
}

// ForEachFileN processes files with configurable worker count and callbacks.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func ForEachFileN[T any](files []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			result, err := fn(path)

			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				if onProgress != nil {
					onProgress()
				}
				return
			}

			if onProgress != nil {
				onProgress()
			}

			results[i] = result
		})
	}
	p.Wait()

	return results
}
