package model

// RegistryEntry is what the registry knows about one importable component.
type RegistryEntry struct {
	Name string `json:"name"`
	// ImportPath is either an absolute file path or a bare module specifier.
	ImportPath string `json:"importPath"`
	// NamedExport selects `import { Name }` over a default import.
	NamedExport bool         `json:"namedExport,omitempty"`
	Metadata    FileMetadata `json:"metadata"`
}

// Registry resolves component names to their definitions. The reader uses it
// to tell modules from components and to validate attributes; the resolver
// uses it to compute import paths.
type Registry interface {
	Lookup(name string) (RegistryEntry, bool)
}

// StaticRegistry is a map-backed Registry.
type StaticRegistry map[string]RegistryEntry

// Lookup implements Registry.
func (r StaticRegistry) Lookup(name string) (RegistryEntry, bool) {
	if r == nil {
		return RegistryEntry{}, false
	}
	entry, ok := r[name]
	return entry, ok
}

// Add registers entry under its name, replacing any previous entry.
func (r StaticRegistry) Add(entry RegistryEntry) {
	r[entry.Name] = entry
}

// Lookup queries reg, treating a nil registry as empty.
func Lookup(reg Registry, name string) (RegistryEntry, bool) {
	if reg == nil {
		return RegistryEntry{}, false
	}
	return reg.Lookup(name)
}
