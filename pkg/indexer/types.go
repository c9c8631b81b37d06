package indexer

import (
	"time"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/scanner"
)

// FileRecord is what the indexer knows about one component or module file.
//
// This is the unit of caching in the Indexer. A record is replaced as a
// whole when its file changes.
type FileRecord struct {
	// Name is the component name the file registers, its base name.
	Name string

	// Path is the absolute path to the file
	Path string

	Kind scanner.FileKind

	// Metadata is the parsed file metadata. When the file could not be
	// parsed it only carries the kind, path and metadata UUID.
	Metadata model.FileMetadata

	// ContentHash is the SHA-256 of the parsed source.
	ContentHash string

	// IndexedAt is when the file was last parsed.
	IndexedAt time.Time

	// Err is the parse failure, if any.
	Err error
}

// Config configures the indexer.
type Config struct {
	// MaxCachedFiles is the maximum number of parsed files kept in the LRU
	// cache. Evicted files are parsed again on their next lookup.
	// Default: 1000 files
	MaxCachedFiles int

	// Workers is the number of parsing goroutines. 0 matches the parser
	// pool size.
	Workers int

	// Debug enables verbose logging
	Debug bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{MaxCachedFiles: 1000}
}

// Stats provides statistics about the indexer state.
type Stats struct {
	// Entries is the number of registered component names
	Entries int

	// CachedFiles is the number of parsed files currently in the LRU cache
	CachedFiles int

	// DirtyFiles is the number of files marked for reparsing
	DirtyFiles int

	CacheHits     int64
	CacheMisses   int64
	Evictions     int64
	ParseFailures int64
}

// ScanStats contains statistics about a full index.
type ScanStats struct {
	FilesDiscovered int
	FilesIndexed    int
	FilesFailed     int
	WorkerCount     int
	TotalTimeMs     int64

	// Errors contains per-file errors (if any)
	Errors []FileError

	// Cancelled indicates the context ended before every file was parsed
	Cancelled bool
}

// FileError represents an error that occurred while processing a file.
type FileError struct {
	FilePath string
	Error    error
}

// ProgressCallback is called after each file of a full index.
type ProgressCallback func(indexed, total int, currentFile string)

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// DebounceMs is the debounce delay in milliseconds.
	// Multiple rapid changes are grouped into a single reindex.
	// Default: 200ms
	DebounceMs int

	// IgnorePatterns are base-name globs ignored by the watcher
	IgnorePatterns []string

	// OnEvent, when set, is called after every handled change, pages
	// included.
	OnEvent func(WatchEvent)
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"*.swp",
			"*.tmp",
			"*~",
			".#*",
		},
	}
}

// WatchOp is the kind of change a watch event reports.
type WatchOp string

const (
	OpChanged WatchOp = "changed"
	OpRemoved WatchOp = "removed"
)

// WatchEvent represents a handled file system change.
type WatchEvent struct {
	FilePath  string
	Kind      scanner.FileKind
	Op        WatchOp
	Timestamp time.Time
	// Err is set when a changed component file failed to parse.
	Err error
}
