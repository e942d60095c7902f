package digest

import (
	"context"
	"sync"

	coreerr "github.com/mrz1836/cryptocore/pkg/errors"
)

// DefaultWorkers is the number of files MakeFileHashes digests concurrently
// when no worker count is given.
const DefaultWorkers = 4

// FileResult is the outcome of digesting one file.
type FileResult struct {
	Path string
	Sum  []byte
	Err  error
}

type fileJob struct {
	path  string
	index int
}

// MakeFileHashes digests every path with alg using up to workers goroutines,
// each with its own Engine. Results are returned in the order of paths; a
// failure on one file does not stop the others. Files not yet started when
// ctx is cancelled report the context error. An unsupported algorithm fails
// the whole call before any file is opened.
func MakeFileHashes(ctx context.Context, paths []string, alg Algorithm, workers int) ([]FileResult, error) {
	if !IsSupported(alg) {
		_, _, err := newBackend(alg)
		return nil, err
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, len(paths))

	results := make([]FileResult, len(paths))
	jobs := make(chan fileJob, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = hashFileJob(ctx, job.path, alg)
			}
		}()
	}

	for i, path := range paths {
		jobs <- fileJob{path: path, index: i}
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func hashFileJob(ctx context.Context, path string, alg Algorithm) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{
			Path: path,
			Err:  coreerr.WithDetails(coreerr.WithCause(coreerr.ErrIO, err), map[string]string{"path": path}),
		}
	}

	sum, err := MakeFileHash(path, alg)
	return FileResult{Path: path, Sum: sum, Err: err}
}
