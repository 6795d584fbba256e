package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/budgetsim/internal/source"
)

// LoadResult holds the output of the catalog loading pipeline.
type LoadResult struct {
	Entries      []source.Entry
	Invalid      []*source.EntryError
	FileErrs     []error
	Parsed       []source.DiscoveredFile
	TotalFiles   int
	ParsedFiles  int
	TotalEntries int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every catalog under root.
// It uses a bounded worker pool for parallel parsing.
func Load(root string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})
	result.collect(files, results)
	return result, nil
}

// parseAll parses files with a bounded worker pool. Results keep the order
// of files; done receives the running count of finished files.
func parseAll(files []source.DiscoveredFile, done func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if done != nil {
					done(int(n))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func (r *LoadResult) collect(files []source.DiscoveredFile, results []source.ParseResult) {
	for i, pr := range results {
		if pr.Err != nil {
			r.FileErrs = append(r.FileErrs, pr.Err)
			continue
		}
		r.ParsedFiles++
		r.TotalEntries += pr.Total
		r.Entries = append(r.Entries, pr.Entries...)
		r.Invalid = append(r.Invalid, pr.Invalid...)
		r.Parsed = append(r.Parsed, files[i])
	}
}
