package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/gnana997/uisync/pkg/scanner"
)

// IndexWorkspace discovers every component and module file with sc,
// registers them and parses them in parallel.
//
// **Pipeline:**
//  1. Discovery through the scanner's doublestar globs
//  2. Registration, so every name resolves before any file is parsed
//  3. Parallel parsing on a worker pool, results cached as they arrive
//
// Files that fail to parse stay registered and are listed in the stats.
func (ix *Indexer) IndexWorkspace(ctx context.Context, sc *scanner.Scanner, progress ProgressCallback) (*ScanStats, error) {
	start := time.Now()
	found, _, err := sc.Run()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	var files []string
	for _, kind := range []scanner.FileKind{scanner.KindComponent, scanner.KindModule} {
		for _, path := range found.Files(kind) {
			if ix.Register(path) {
				files = append(files, path)
			}
		}
	}

	stats := &ScanStats{FilesDiscovered: len(files)}
	if len(files) == 0 {
		ix.logger.Warn("no component files found", "components", sc.Paths().Components, "modules", sc.Paths().Modules)
		return stats, nil
	}

	pool := NewWorkerPool(ix.config.Workers, ix.Refresh, ix.logger)
	stats.WorkerCount = pool.GetStats().NumWorkers
	pool.Start()
	defer pool.Stop()

	// The collector must run before submission: a full queue blocks Submit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		handled := 0
		for handled < len(files) {
			select {
			case <-ctx.Done():
				pool.Cancel()
				return
			case res := <-pool.Results():
				handled++
				if res.Record.Err != nil {
					stats.FilesFailed++
					stats.Errors = append(stats.Errors, FileError{FilePath: res.FilePath, Error: res.Record.Err})
				} else {
					stats.FilesIndexed++
				}
				if progress != nil {
					progress(handled, len(files), res.FilePath)
				}
			case fileErr := <-pool.Errors():
				handled++
				stats.FilesFailed++
				stats.Errors = append(stats.Errors, fileErr)
				ix.logger.Warn("file processing failed", "file", fileErr.FilePath, "error", fileErr.Error)
				if progress != nil {
					progress(handled, len(files), fileErr.FilePath)
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
			break
		}
	}
	pool.FinishSubmitting()
	<-done

	stats.Cancelled = ctx.Err() != nil
	stats.TotalTimeMs = time.Since(start).Milliseconds()
	ix.logger.Info("index complete",
		"files_indexed", stats.FilesIndexed,
		"files_failed", stats.FilesFailed,
		"cancelled", stats.Cancelled,
		"duration_ms", stats.TotalTimeMs)
	if stats.Cancelled {
		return stats, ctx.Err()
	}
	return stats, nil
}
