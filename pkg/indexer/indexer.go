// Package indexer maintains the live component registry of a project: one
// entry per component or module file, named after the file, carrying the
// metadata the reader parses from it.
package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/scanner"
	"github.com/gnana997/uisync/pkg/util"
)

// Indexer implements model.Registry over the files of one project.
//
// **Architecture:**
//   - Name table: component name → file path, for every registered file
//   - LRU cache: file path → parsed FileRecord
//   - Lazy invalidation: a changed file is marked dirty and parsed again on
//     its next lookup
//
// **Thread Safety:** Safe for concurrent use. Parsing happens outside the
// lock, so lookups of cached entries never wait on a parse.
type Indexer struct {
	reader  *reader.Reader
	sources *util.SourceCache
	paths   scanner.Paths

	mu      sync.RWMutex
	names   map[string]string
	kinds   map[string]scanner.FileKind
	records *lru.Cache[string, *FileRecord]
	dirty   map[string]bool

	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	evictions     atomic.Int64
	parseFailures atomic.Int64

	config Config
	logger *slog.Logger
}

// New creates an empty indexer. Register files, or call IndexWorkspace, to
// populate it.
func New(r *reader.Reader, sources *util.SourceCache, paths scanner.Paths, config Config, logger *slog.Logger) (*Indexer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxCachedFiles <= 0 {
		config.MaxCachedFiles = DefaultConfig().MaxCachedFiles
	}

	ix := &Indexer{
		reader:  r,
		sources: sources,
		paths:   paths,
		names:   make(map[string]string),
		kinds:   make(map[string]scanner.FileKind),
		dirty:   make(map[string]bool),
		config:  config,
		logger:  logger,
	}
	records, err := lru.NewWithEvict(config.MaxCachedFiles, func(path string, rec *FileRecord) {
		ix.evictions.Add(1)
		if config.Debug {
			logger.Debug("LRU evicting file", "path", path, "name", rec.Name)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create record cache: %w", err)
	}
	ix.records = records
	return ix, nil
}

// ComponentName returns the name a file registers under: its base name
// without extension.
func ComponentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Register adds a component or module file to the name table and marks it
// for parsing. Pages and files outside the project are ignored.
func (ix *Indexer) Register(path string) bool {
	kind, ok := ix.paths.Classify(path)
	if !ok || kind == scanner.KindPage {
		return false
	}
	name := ComponentName(path)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.kinds[path] = kind
	ix.dirty[path] = true
	if owner, taken := ix.names[name]; taken && owner != path {
		ix.logger.Warn("component name already registered",
			"name", name, "path", path, "registered", owner)
		return true
	}
	ix.names[name] = path
	return true
}

// Remove forgets a file. If another file has the same name, it takes over.
func (ix *Indexer) Remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	delete(ix.kinds, path)
	delete(ix.dirty, path)
	ix.records.Remove(path)
	ix.sources.Invalidate(path)

	name := ComponentName(path)
	if ix.names[name] != path {
		return
	}
	delete(ix.names, name)
	var candidates []string
	for p := range ix.kinds {
		if ComponentName(p) == name {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) > 0 {
		sort.Strings(candidates)
		ix.names[name] = candidates[0]
	}

	if ix.config.Debug {
		ix.logger.Debug("removed file", "path", path)
	}
}

// Invalidate marks a file dirty. It is parsed again on its next lookup.
func (ix *Indexer) Invalidate(path string) {
	ix.mu.Lock()
	if _, ok := ix.kinds[path]; ok {
		ix.dirty[path] = true
	}
	ix.mu.Unlock()
	ix.sources.Invalidate(path)
}

// IsDirty reports whether a file is marked for reparsing.
func (ix *Indexer) IsDirty(path string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dirty[path]
}

// Lookup returns the registry entry for a component name, parsing its file
// first if needed.
func (ix *Indexer) Lookup(name string) (model.RegistryEntry, bool) {
	rec, ok := ix.Record(name)
	if !ok {
		return model.RegistryEntry{}, false
	}
	return model.RegistryEntry{Name: rec.Name, ImportPath: rec.Path, Metadata: rec.Metadata}, true
}

// Record returns the parsed record of a component name.
func (ix *Indexer) Record(name string) (*FileRecord, bool) {
	ix.mu.RLock()
	path, ok := ix.names[name]
	if !ok {
		ix.mu.RUnlock()
		return nil, false
	}
	rec, cached := ix.records.Get(path)
	fresh := cached && !ix.dirty[path]
	ix.mu.RUnlock()

	if fresh {
		ix.cacheHits.Add(1)
		return rec, true
	}
	ix.cacheMisses.Add(1)
	rec, err := ix.Refresh(path)
	if err != nil {
		ix.logger.Warn("failed to read component file", "path", path, "error", err)
		return nil, false
	}
	return rec, true
}

// Refresh parses a registered file and caches the result. A file whose
// content is unchanged keeps its record. Parse failures are recorded on the
// returned record; the error reports files that cannot be read.
func (ix *Indexer) Refresh(path string) (*FileRecord, error) {
	ix.mu.RLock()
	kind, ok := ix.kinds[path]
	prev, _ := ix.records.Peek(path)
	ix.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s is not a registered component file", path)
	}

	source, err := ix.sources.Read(path)
	if err != nil {
		return nil, err
	}
	hash := ComputeContentHash(source)
	if prev != nil && prev.ContentHash == hash {
		ix.mu.Lock()
		delete(ix.dirty, path)
		ix.mu.Unlock()
		return prev, nil
	}

	rec := ix.parse(path, kind, source)
	rec.ContentHash = hash

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, still := ix.kinds[path]; !still {
		// Removed while parsing.
		return rec, nil
	}
	ix.records.Add(path, rec)
	delete(ix.dirty, path)
	return rec, nil
}

func (ix *Indexer) parse(path string, kind scanner.FileKind, source []byte) *FileRecord {
	start := time.Now()
	rec := &FileRecord{
		Name:      ComponentName(path),
		Path:      path,
		Kind:      kind,
		Metadata:  baseMetadata(path, kind),
		IndexedAt: start,
	}

	res, err := ix.reader.Parse(source, path, shallowRegistry{ix})
	if err != nil {
		ix.parseFailures.Add(1)
		rec.Err = err
		ix.logger.Warn("component file does not parse", "path", path, "error", err)
		return rec
	}

	rec.Metadata = res.FileMetadata
	if kind == scanner.KindModule {
		rec.Metadata.Kind = model.FileKindModule
		rec.Metadata.ComponentTree = res.ComponentTree
	}
	if ix.config.Debug {
		ix.logger.Debug("indexed file",
			"path", path,
			"props", len(rec.Metadata.PropShape),
			"ms", time.Since(start).Milliseconds())
	}
	return rec
}

func baseMetadata(path string, kind scanner.FileKind) model.FileMetadata {
	md := model.FileMetadata{
		Kind:         model.FileKindComponent,
		Filepath:     path,
		MetadataUUID: model.MetadataUUIDFor(path),
	}
	if kind == scanner.KindModule {
		md.Kind = model.FileKindModule
	}
	return md
}

// shallowRegistry answers from the name table alone. Files are parsed
// against it so that modules rendering each other never recurse.
type shallowRegistry struct {
	ix *Indexer
}

func (r shallowRegistry) Lookup(name string) (model.RegistryEntry, bool) {
	r.ix.mu.RLock()
	defer r.ix.mu.RUnlock()
	path, ok := r.ix.names[name]
	if !ok {
		return model.RegistryEntry{}, false
	}
	return model.RegistryEntry{Name: name, ImportPath: path, Metadata: baseMetadata(path, r.ix.kinds[path])}, true
}

// Names returns the registered component names, sorted.
func (ix *Indexer) Names() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names := make([]string, 0, len(ix.names))
	for name := range ix.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registry entry, sorted by name.
func (ix *Indexer) Entries() []model.RegistryEntry {
	names := ix.Names()
	entries := make([]model.RegistryEntry, 0, len(names))
	for _, name := range names {
		if entry, ok := ix.Lookup(name); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// GetStats returns current indexer statistics.
func (ix *Indexer) GetStats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		Entries:       len(ix.names),
		CachedFiles:   ix.records.Len(),
		DirtyFiles:    len(ix.dirty),
		CacheHits:     ix.cacheHits.Load(),
		CacheMisses:   ix.cacheMisses.Load(),
		Evictions:     ix.evictions.Load(),
		ParseFailures: ix.parseFailures.Load(),
	}
}

// ComputeContentHash computes the SHA-256 of file content.
func ComputeContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Close drops every cached record.
func (ix *Indexer) Close() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.records.Purge()
	ix.logger.Info("indexer closed", "entries", len(ix.names))
}
