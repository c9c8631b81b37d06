package indexer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/uisync/pkg/scanner"
)

// FileWatcher keeps the indexer in step with the project's files.
//
// **Features:**
//   - Debouncing - rapid saves of one file trigger a single reparse
//   - Selective - only files the scanner accepts are handled
//   - New directories are watched as they appear
//
// **Usage:**
//
//	watcher, err := NewFileWatcher(indexer, scanner, DefaultWatchOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type FileWatcher struct {
	watcher *fsnotify.Watcher
	indexer *Indexer
	scanner *scanner.Scanner
	logger  *slog.Logger
	options WatchOptions

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewFileWatcher creates a file watcher.
func NewFileWatcher(ix *Indexer, sc *scanner.Scanner, options WatchOptions, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = DefaultWatchOptions().DebounceMs
	}

	return &FileWatcher{
		watcher:        watcher,
		indexer:        ix,
		scanner:        sc,
		logger:         logger,
		options:        options,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches the project's source directory and returns immediately.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	stopped := fw.stopped
	fw.mu.Unlock()
	if stopped {
		return fmt.Errorf("watcher already stopped")
	}

	root := fw.scanner.Paths().Src
	if err := fw.watchTree(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	fw.logger.Info("file watcher started", "root", root)

	go fw.eventLoop()
	return nil
}

// watchTree adds dir and every directory below it.
func (fw *FileWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && fw.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the file watcher. Safe to call multiple times.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return nil
	}
	fw.stopped = true
	close(fw.stopChan)

	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceTimers = make(map[string]*time.Timer)
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.logger.Info("file watcher stopped")
	return err
}

func (fw *FileWatcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fw.shouldIgnore(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if isDir(path) {
			if err := fw.watchTree(path); err != nil {
				fw.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}
	if !fw.scanner.Accepts(path) {
		return
	}

	fw.logger.Debug("file event", "op", event.Op.String(), "file", path)
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		fw.debounce(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		fw.cancelPending(path)
		fw.remove(path)
	}
}

// debounce schedules a reparse after the debounce delay. Only the last of
// several events within the window triggers it.
func (fw *FileWatcher) debounce(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
	}
	fw.debounceTimers[path] = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		func() {
			fw.debounceMu.Lock()
			delete(fw.debounceTimers, path)
			fw.debounceMu.Unlock()
			fw.reindex(path)
		},
	)
}

func (fw *FileWatcher) cancelPending(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()
	if timer, exists := fw.debounceTimers[path]; exists {
		timer.Stop()
		delete(fw.debounceTimers, path)
	}
}

func (fw *FileWatcher) reindex(path string) {
	kind, _ := fw.scanner.Paths().Classify(path)
	event := WatchEvent{FilePath: path, Kind: kind, Op: OpChanged, Timestamp: time.Now()}

	if fw.indexer.Register(path) {
		fw.indexer.Invalidate(path)
		rec, err := fw.indexer.Refresh(path)
		switch {
		case err != nil:
			event.Err = err
		case rec.Err != nil:
			event.Err = rec.Err
		}
		if event.Err != nil {
			fw.logger.Warn("failed to reindex file", "file", path, "error", event.Err)
		} else {
			fw.logger.Debug("file reindexed", "file", path)
		}
	}
	fw.emit(event)
}

func (fw *FileWatcher) remove(path string) {
	kind, _ := fw.scanner.Paths().Classify(path)
	fw.indexer.Remove(path)
	fw.emit(WatchEvent{FilePath: path, Kind: kind, Op: OpRemoved, Timestamp: time.Now()})
}

func (fw *FileWatcher) emit(event WatchEvent) {
	if fw.options.OnEvent != nil {
		fw.options.OnEvent(event)
	}
}

func (fw *FileWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range fw.options.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	switch base {
	case "node_modules", ".git", "dist", "build", ".next", ".uisync":
		return true
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// GetStats returns file watcher statistics.
func (fw *FileWatcher) GetStats() FileWatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	defer fw.mu.Unlock()
	return FileWatcherStats{PendingReindexes: pending, IsRunning: !fw.stopped}
}

// FileWatcherStats contains file watcher statistics.
type FileWatcherStats struct {
	PendingReindexes int
	IsRunning        bool
}
