// Package workspace keeps the pages of a project loaded as component trees
// and writes edited trees back to their files.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/resolver"
	"github.com/gnana997/uisync/pkg/scanner"
	"github.com/gnana997/uisync/pkg/syncer"
	"github.com/gnana997/uisync/pkg/writer"
)

// PageExtension is the extension of files created by AddPage.
const PageExtension = ".tsx"

// Store holds the last loaded or saved state of every page.
//
// **Thread Safety:** Safe for concurrent use. Writes to one file are
// serialised; writes to different files run in parallel.
type Store struct {
	syncer   *syncer.Syncer
	registry model.Registry
	scanner  *scanner.Scanner
	logger   *slog.Logger

	mu    sync.Mutex
	pages map[string]model.PageState // by file path
	locks map[string]*sync.Mutex
}

// NewStore creates a Store over the pages sc discovers. registry resolves
// the components pages render; it may be nil.
func NewStore(sy *syncer.Syncer, registry model.Registry, sc *scanner.Scanner, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		syncer:   sy,
		registry: registry,
		scanner:  sc,
		logger:   logger,
		pages:    make(map[string]model.PageState),
		locks:    make(map[string]*sync.Mutex),
	}
}

// PageName returns the name of the page stored at path.
func PageName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// PagePath returns the file a page named name is stored in.
func (s *Store) PagePath(name string) string {
	return filepath.Join(s.scanner.Paths().Pages, name+PageExtension)
}

func (s *Store) fileLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

// LoadPages parses every page file and replaces the stored states. Pages
// that fail to parse are left out and their errors joined into the returned
// error; the states of the others are still returned.
func (s *Store) LoadPages() ([]model.PageState, error) {
	files, err := scanner.DiscoverFiles(s.scanner.Paths().Pages, s.scanner.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to discover pages: %w", err)
	}

	loaded := make(map[string]model.PageState, len(files))
	var errs []error
	for _, path := range files {
		state, err := s.loadPage(path)
		if err != nil {
			s.logger.Warn("failed to load page", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		loaded[path] = state
	}

	s.mu.Lock()
	s.pages = loaded
	s.mu.Unlock()

	s.logger.Debug("loaded pages", "pages", len(loaded), "failed", len(errs))
	return sortedStates(loaded), errors.Join(errs...)
}

func (s *Store) loadPage(path string) (model.PageState, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return model.PageState{}, fmt.Errorf("failed to read page: %w", err)
	}
	res, err := s.syncer.Load(src, path, s.registry)
	if err != nil {
		return model.PageState{}, err
	}
	css := res.CSSImports
	if css == nil {
		css = []string{}
	}
	return model.PageState{ComponentTree: res.ComponentTree, CSSImports: css, Filepath: path}, nil
}

func sortedStates(m map[string]model.PageState) []model.PageState {
	out := make([]model.PageState, 0, len(m))
	for _, st := range m {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filepath < out[j].Filepath })
	return out
}

// Pages returns the stored states sorted by file path.
func (s *Store) Pages() []model.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedStates(s.pages)
}

// Page returns the stored state of the page named name.
func (s *Store) Page(name string) (model.PageState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.pages[s.PagePath(name)]
	return st, ok
}

// PageNames returns the names of the stored pages, sorted.
func (s *Store) PageNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNames(s.pageNamesLocked())
}

func (s *Store) pageNamesLocked() map[string]bool {
	names := make(map[string]bool, len(s.pages))
	for path := range s.pages {
		names[PageName(path)] = true
	}
	return names
}

// AddPage validates name, creates an empty page file for it and stores its
// state.
func (s *Store) AddPage(name string) (model.PageState, error) {
	path := s.PagePath(name)
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	existing := s.pageNamesLocked()
	s.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		existing[name] = true
	}
	if err := ValidatePageName(name, existing); err != nil {
		return model.PageState{}, err
	}

	if err := writeAtomic(path, []byte(syncer.Template(path))); err != nil {
		return model.PageState{}, err
	}
	state := model.PageState{ComponentTree: []model.ComponentState{}, CSSImports: []string{}, Filepath: path}

	s.mu.Lock()
	s.pages[path] = state
	s.mu.Unlock()

	s.logger.Info("added page", "name", name, "path", path)
	return state, nil
}

// RemovePage deletes the file of the page named name and forgets its state.
func (s *Store) RemovePage(name string) error {
	path := s.PagePath(name)
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove page %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.pages, path)
	s.mu.Unlock()

	s.logger.Info("removed page", "name", name, "path", path)
	return nil
}

// SavePage writes state to its page file and stores it. The returned diff
// compares state with the previously stored state of the page.
func (s *Store) SavePage(state model.PageState) (resolver.TreeDiff, error) {
	path, err := filepath.Abs(state.Filepath)
	if err != nil {
		return resolver.TreeDiff{}, fmt.Errorf("failed to resolve page path: %w", err)
	}
	if kind, ok := s.scanner.Paths().Classify(path); !ok || kind != scanner.KindPage {
		return resolver.TreeDiff{}, fmt.Errorf("%s is not inside the pages directory", path)
	}
	state.Filepath = path

	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.saveLocked(path, writer.Input{
		ComponentTree: state.ComponentTree,
		CSSImports:    state.CSSImports,
	}); err != nil {
		return resolver.TreeDiff{}, err
	}

	s.mu.Lock()
	prev := s.pages[path]
	s.pages[path] = state
	s.mu.Unlock()

	diff := resolver.DiffTrees(prev.ComponentTree, state.ComponentTree)
	s.logger.Debug("saved page", "path", path, "diff", diff.String())
	return diff, nil
}

// SaveFile rewrites any component file to match in. It reports whether the
// file changed on disk. Stored page states are not touched.
func (s *Store) SaveFile(path string, in writer.Input) (bool, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()
	return s.saveLocked(path, in)
}

func (s *Store) saveLocked(path string, in writer.Input) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := s.syncer.Update(src, path, in, s.registry)
	if err != nil {
		return false, err
	}
	if bytes.Equal(out, src) {
		return false, nil
	}
	if err := writeAtomic(path, out); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic replaces path with data through a temporary file in the same
// directory. The temporary name ends in .tmp so file watchers skip it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
