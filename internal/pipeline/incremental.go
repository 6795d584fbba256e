package pipeline

import (
	"fmt"
	"os"

	"github.com/theirongolddev/budgetsim/internal/source"
	"github.com/theirongolddev/budgetsim/internal/store"
)

// CachedLoadResult extends LoadResult with file-tracking metadata.
type CachedLoadResult struct {
	LoadResult
	Unchanged int
	Reparsed  int
}

// LoadChanged discovers catalogs under root and parses only the files whose
// mtime or size differ from the last successful import.
func LoadChanged(root string, st *store.Store, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == info.ModTime().UnixNano() && prev.SizeBytes == info.Size() {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, f)
	}
	result.Reparsed = len(toParse)

	if len(toParse) == 0 {
		return result, nil
	}

	results := parseAll(toParse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.Unchanged, result.TotalFiles)
		}
	})
	result.collect(toParse, results)
	return result, nil
}

// TrackFiles records the current mtime and size of imported catalogs.
func TrackFiles(st *store.Store, files []source.DiscoveredFile) error {
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if err := st.TrackFile(f.Path, fi); err != nil {
			return fmt.Errorf("tracking %s: %w", f.Path, err)
		}
	}
	return nil
}
