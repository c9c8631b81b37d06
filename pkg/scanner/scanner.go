package scanner

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Scanner discovers the pages, components and modules of one project.
type Scanner struct {
	paths Paths
	cfg   ScanConfig
	log   *slog.Logger
}

// NewScanner creates a scanner rooted at root.
func NewScanner(root string, layout Layout, cfg ScanConfig, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths, err := ResolvePaths(root, layout)
	if err != nil {
		return nil, err
	}
	return &Scanner{paths: paths, cfg: cfg, log: logger}, nil
}

// ResolvePaths turns layout into absolute directories under root.
func ResolvePaths(root string, layout Layout) (Paths, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve root path: %w", err)
	}
	def := DefaultLayout()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	src := filepath.Join(absRoot, pick(layout.SrcDir, def.SrcDir))
	return Paths{
		Root:       absRoot,
		Src:        src,
		Pages:      filepath.Join(src, pick(layout.PagesDir, def.PagesDir)),
		Components: filepath.Join(src, pick(layout.ComponentsDir, def.ComponentsDir)),
		Modules:    filepath.Join(src, pick(layout.ModulesDir, def.ModulesDir)),
	}, nil
}

// Paths returns the project's directories.
func (s *Scanner) Paths() Paths {
	return s.paths
}

// Config returns the discovery configuration.
func (s *Scanner) Config() ScanConfig {
	return s.cfg
}

// Run discovers every component file. Missing directories are empty.
func (s *Scanner) Run() (*Discovered, ScanStats, error) {
	start := time.Now()
	found := &Discovered{}
	for _, kind := range []FileKind{KindPage, KindComponent, KindModule} {
		files, err := DiscoverFiles(s.paths.Dir(kind), s.cfg)
		if err != nil {
			return nil, ScanStats{}, fmt.Errorf("discover %s files: %w", kind, err)
		}
		switch kind {
		case KindPage:
			found.Pages = files
		case KindComponent:
			found.Components = files
		case KindModule:
			found.Modules = files
		}
	}

	stats := ScanStats{
		FilesDiscovered: found.Len(),
		DiscoveryTimeMs: time.Since(start).Milliseconds(),
	}
	s.log.Info("discovery complete",
		"pages", len(found.Pages),
		"components", len(found.Components),
		"modules", len(found.Modules),
		"ms", stats.DiscoveryTimeMs)
	return found, stats, nil
}

// Accepts reports whether path is a component file the scanner would
// discover.
func (s *Scanner) Accepts(path string) bool {
	kind, ok := s.paths.Classify(path)
	if !ok {
		return false
	}
	return Matches(s.paths.Dir(kind), path, s.cfg)
}
