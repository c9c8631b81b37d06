// Package resolver computes the import declarations a component tree needs,
// reconciles them with the declarations a file already has, and diffs trees
// by UUID.
package resolver

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

// ErrorKind classifies a ResolutionError.
type ErrorKind string

// UnknownComponent means the registry has no entry for a component name.
const UnknownComponent ErrorKind = "UnknownComponent"

// ResolutionError is returned when a tree references a component the
// registry cannot place.
type ResolutionError struct {
	Kind ErrorKind
	Name string
	UUID string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: no metadata registered for %s (node %s)", e.Kind, e.Name, e.UUID)
}

// ImportSet is the exact set of component and module imports a tree needs,
// keyed by local name. Values are import specifiers relative to the file.
type ImportSet struct {
	Components map[string]string
	Modules    map[string]string
	// Named marks names imported as `{ Name }` rather than as default.
	Named map[string]bool
}

func newImportSet() *ImportSet {
	return &ImportSet{
		Components: make(map[string]string),
		Modules:    make(map[string]string),
		Named:      make(map[string]bool),
	}
}

// Specifier returns the specifier name is imported from.
func (s *ImportSet) Specifier(name string) (string, bool) {
	if spec, ok := s.Components[name]; ok {
		return spec, true
	}
	spec, ok := s.Modules[name]
	return spec, ok
}

// Names returns every imported name, sorted.
func (s *ImportSet) Names() []string {
	names := make([]string, 0, len(s.Components)+len(s.Modules))
	for name := range s.Components {
		names = append(names, name)
	}
	for name := range s.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of imported names.
func (s *ImportSet) Len() int {
	return len(s.Components) + len(s.Modules)
}

// Resolve walks every Standard and Module node of tree, repeater templates
// included, and resolves its name through registry. Module internals are not
// visited: a module is imported as a whole.
func Resolve(tree []model.ComponentState, registry model.Registry, fromFile string) (*ImportSet, error) {
	set := newImportSet()
	for _, node := range tree {
		state := node.Template()
		switch state.Kind {
		case model.KindStandard, model.KindModule:
		default:
			continue
		}
		if _, done := set.Specifier(state.ComponentName); done {
			continue
		}

		entry, ok := model.Lookup(registry, state.ComponentName)
		if !ok {
			return nil, &ResolutionError{Kind: UnknownComponent, Name: state.ComponentName, UUID: node.UUID}
		}

		spec := Specifier(fromFile, entry.ImportPath)
		if state.Kind == model.KindModule || entry.Metadata.Kind == model.FileKindModule {
			set.Modules[state.ComponentName] = spec
		} else {
			set.Components[state.ComponentName] = spec
		}
		if entry.NamedExport {
			set.Named[state.ComponentName] = true
		}
	}
	return set, nil
}

var scriptExtensions = []string{".tsx", ".ts", ".jsx", ".js"}

// Specifier turns an import path into the specifier fromFile should use.
// Absolute paths become relative to fromFile's directory with the script
// extension dropped; bare and already relative specifiers are returned as
// they are.
func Specifier(fromFile, importPath string) string {
	target := filepath.ToSlash(importPath)
	if !path.IsAbs(target) {
		return importPath
	}
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(target, ext) {
			target = strings.TrimSuffix(target, ext)
			break
		}
	}

	rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(fromFile)), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}
