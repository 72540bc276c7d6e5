package bindgen

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/bindgen/internal/store"
)

// digestFiles hashes every input file with a worker pool. Any read error
// fails the whole call.
func (e *Engine) digestFiles(ctx context.Context, paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	numWorkers := min(runtime.NumCPU(), len(paths))
	workCh := make(chan string, len(paths))
	for _, p := range paths {
		workCh <- p
	}
	close(workCh)

	type result struct {
		path   string
		digest string
		err    error
	}
	resultCh := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range workCh {
				if err := ctx.Err(); err != nil {
					resultCh <- result{path: p, err: err}
					continue
				}
				data, err := e.readFile(p)
				if err != nil {
					resultCh <- result{path: p, err: fmt.Errorf("read %s: %w", p, err)}
					continue
				}
				resultCh <- result{path: p, digest: store.FileDigest(data)}
			}
		}()
	}
	wg.Wait()
	close(resultCh)

	digests := make(map[string]string, len(paths))
	var firstErr error
	for r := range resultCh {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		digests[r.path] = r.digest
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return digests, nil
}
