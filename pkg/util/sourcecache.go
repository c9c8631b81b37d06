// SourceCache serves component sources from memory-mapped files.
//
// **Lifecycle:**
//   - Files are mapped on first read and kept mapped in an LRU
//   - A mapping is dropped as soon as the file's size or modification time
//     differs from what was mapped, so readers never see stale source
//   - Evicted and invalidated mappings are unmapped immediately
//
// Read returns a copy, so callers may keep the bytes after the mapping is
// gone.
package util

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SourceCacheConfig controls SourceCache behavior.
type SourceCacheConfig struct {
	// MaxFiles is the number of mappings kept open. Default: 512.
	MaxFiles int

	// MaxFileBytes bypasses the cache for larger files, which are read
	// directly. 0 means no limit.
	MaxFileBytes int64

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultSourceCacheConfig returns the recommended configuration.
func DefaultSourceCacheConfig() SourceCacheConfig {
	return SourceCacheConfig{
		MaxFiles:     512,
		MaxFileBytes: 8 << 20,
	}
}

// SourceCacheStats tracks cache effectiveness.
type SourceCacheStats struct {
	Hits   int64
	Misses int64
	// Evictions counts released mappings: LRU evictions, stale mappings and
	// invalidations.
	Evictions    int64
	MmapFailures int64
	Cached       int
}

// mappedFile is one open mapping, or the plain bytes when mapping failed.
type mappedFile struct {
	data    mmap.MMap
	file    *os.File
	plain   []byte
	size    int64
	modTime time.Time
}

func (m *mappedFile) bytes() []byte {
	if m.data != nil {
		return m.data
	}
	return m.plain
}

func (m *mappedFile) fresh(info os.FileInfo) bool {
	return m.size == info.Size() && m.modTime.Equal(info.ModTime())
}

func (m *mappedFile) close() error {
	var errs []error
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}
		m.data = nil
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
		m.file = nil
	}
	return errors.Join(errs...)
}

// SourceCache is safe for concurrent use.
type SourceCache struct {
	config SourceCacheConfig
	logger *slog.Logger

	// mu serializes reads with eviction, which unmaps.
	mu    sync.Mutex
	files *lru.Cache[string, *mappedFile]

	hits         atomic.Int64
	misses       atomic.Int64
	evictions    atomic.Int64
	mmapFailures atomic.Int64
}

// NewSourceCache creates a SourceCache.
func NewSourceCache(config SourceCacheConfig) (*SourceCache, error) {
	if config.MaxFiles <= 0 {
		config.MaxFiles = DefaultSourceCacheConfig().MaxFiles
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	sc := &SourceCache{config: config, logger: config.Logger}
	files, err := lru.NewWithEvict(config.MaxFiles, func(path string, m *mappedFile) {
		sc.evictions.Add(1)
		if err := m.close(); err != nil {
			sc.logger.Warn("failed to release mapping", "path", path, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create source cache: %w", err)
	}
	sc.files = files
	return sc, nil
}

// Read returns the current contents of path.
func (sc *SourceCache) Read(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		sc.Invalidate(path)
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	if sc.config.MaxFileBytes > 0 && info.Size() > sc.config.MaxFileBytes {
		sc.misses.Add(1)
		return os.ReadFile(path)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if m, ok := sc.files.Get(path); ok {
		if m.fresh(info) {
			sc.hits.Add(1)
			return bytes.Clone(m.bytes()), nil
		}
		sc.files.Remove(path)
	}

	sc.misses.Add(1)
	m, err := sc.load(path)
	if err != nil {
		return nil, err
	}
	sc.files.Add(path, m)
	return bytes.Clone(m.bytes()), nil
}

// load maps path, falling back to a plain read when mapping fails.
func (sc *SourceCache) load(path string) (*mappedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}

	m := &mappedFile{size: info.Size(), modTime: info.ModTime()}
	if info.Size() == 0 {
		// Zero bytes cannot be mapped.
		file.Close()
		m.plain = []byte{}
		return m, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		sc.mmapFailures.Add(1)
		sc.logger.Warn("mmap failed, using fallback", "file", path, "size", info.Size(), "error", err)
		file.Close()
		plain, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		m.plain = plain
		return m, nil
	}

	m.data = data
	m.file = file
	return m, nil
}

// Invalidate drops the mapping of path, if any.
func (sc *SourceCache) Invalidate(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.files.Remove(path)
}

// Stats returns current cache metrics.
func (sc *SourceCache) Stats() SourceCacheStats {
	return SourceCacheStats{
		Hits:         sc.hits.Load(),
		Misses:       sc.misses.Load(),
		Evictions:    sc.evictions.Load(),
		MmapFailures: sc.mmapFailures.Load(),
		Cached:       sc.files.Len(),
	}
}

// Close unmaps every file. The cache stays usable and maps files again on
// the next read.
func (sc *SourceCache) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.files.Purge()
	sc.logger.Debug("source cache closed",
		"hits", sc.hits.Load(),
		"misses", sc.misses.Load(),
		"mmap_failures", sc.mmapFailures.Load())
	return nil
}
