// Package scanner locates a studio project's source directories and
// discovers the component files inside them.
package scanner

import (
	"path/filepath"
	"strings"
)

// ScanConfig configures file discovery.
type ScanConfig struct {
	// Include glob patterns for file matching.
	Include []string
	// Exclude glob patterns.
	Exclude []string
}

// DefaultScanConfig returns the default discovery configuration. Only
// component sources are included; test, story and mock files are skipped.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.tsx",
			"**/*.jsx",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			".uisync/**",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/__tests__/**",
			"**/__mocks__/**",
		},
	}
}

// Layout names a project's directories. SrcDir is relative to the project
// root, the others are relative to SrcDir.
type Layout struct {
	SrcDir        string `yaml:"src_dir"`
	PagesDir      string `yaml:"pages_dir"`
	ComponentsDir string `yaml:"components_dir"`
	ModulesDir    string `yaml:"modules_dir"`
}

// DefaultLayout returns the standard studio layout: src/pages,
// src/components and src/modules.
func DefaultLayout() Layout {
	return Layout{
		SrcDir:        "src",
		PagesDir:      "pages",
		ComponentsDir: "components",
		ModulesDir:    "modules",
	}
}

// FileKind tells which studio directory a file belongs to.
type FileKind string

const (
	KindPage      FileKind = "page"
	KindComponent FileKind = "component"
	KindModule    FileKind = "module"
)

// Paths are the absolute directories of one project.
type Paths struct {
	Root       string
	Src        string
	Pages      string
	Components string
	Modules    string
}

// Dir returns the directory holding files of kind.
func (p Paths) Dir(kind FileKind) string {
	switch kind {
	case KindPage:
		return p.Pages
	case KindComponent:
		return p.Components
	case KindModule:
		return p.Modules
	}
	return ""
}

// Classify reports which studio directory contains path, at any depth.
func (p Paths) Classify(path string) (FileKind, bool) {
	for _, kind := range []FileKind{KindPage, KindComponent, KindModule} {
		if within(p.Dir(kind), path) {
			return kind, true
		}
	}
	return "", false
}

func within(dir, path string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Discovered lists the component files found under each directory, as
// sorted absolute paths.
type Discovered struct {
	Pages      []string
	Components []string
	Modules    []string
}

// Files returns the files of kind.
func (d *Discovered) Files(kind FileKind) []string {
	switch kind {
	case KindPage:
		return d.Pages
	case KindComponent:
		return d.Components
	case KindModule:
		return d.Modules
	}
	return nil
}

// Len returns the number of discovered files.
func (d *Discovered) Len() int {
	return len(d.Pages) + len(d.Components) + len(d.Modules)
}

// ScanStats contains statistics about a scan.
type ScanStats struct {
	FilesDiscovered int
	DiscoveryTimeMs int64
}
