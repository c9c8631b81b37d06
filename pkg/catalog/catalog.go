package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"unicode"

	"github.com/gnana997/uisync/pkg/model"
)

// Catalog is a registry snapshot.
type Catalog struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Source  string  `json:"source"`
	Entries []Entry `json:"entries"`
}

// CatalogIndex provides O(1) lookups into the catalog.
// Built during LoadFromFile after validation passes.
type CatalogIndex struct {
	// EntryByName maps component name -> *Entry.
	EntryByName map[string]*Entry

	// EntryByMetadataUUID maps metadata UUID -> *Entry.
	EntryByMetadataUUID map[string]*Entry

	// EntriesByKind maps file kind -> []*Entry, in catalog order.
	EntriesByKind map[model.FileMetadataKind][]*Entry
}

var validKinds = map[model.FileMetadataKind]bool{
	model.FileKindComponent: true,
	model.FileKindModule:    true,
}

var validPropTypes = map[model.PropValueType]bool{
	model.TypeString:  true,
	model.TypeNumber:  true,
	model.TypeBoolean: true,
	model.TypeObject:  true,
	model.TypeArray:   true,
	model.TypeUnknown: true,
}

// FromEntries builds a catalog from registry entries, sorted by name.
func FromEntries(name, version, source string, entries []model.RegistryEntry) *Catalog {
	c := &Catalog{Name: name, Version: version, Source: source, Entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		c.Entries = append(c.Entries, Entry{
			Name:        e.Name,
			Kind:        e.Metadata.Kind,
			ImportPath:  e.ImportPath,
			NamedExport: e.NamedExport,
			Metadata:    e.Metadata,
		})
	}
	sort.SliceStable(c.Entries, func(i, j int) bool { return c.Entries[i].Name < c.Entries[j].Name })
	return c
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}
	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	}

	names := make(map[string]bool, len(c.Entries))
	uuids := make(map[string]string, len(c.Entries))
	for i, e := range c.Entries {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("entries[%d]: name is required", i))
			continue
		}
		if !unicode.IsUpper([]rune(e.Name)[0]) {
			errs = append(errs, fmt.Errorf("entry %q: component names start with an upper-case letter", e.Name))
		}
		if names[e.Name] {
			errs = append(errs, fmt.Errorf("entry %q: duplicate entry name", e.Name))
			continue
		}
		names[e.Name] = true

		if e.ImportPath == "" {
			errs = append(errs, fmt.Errorf("entry %q: importPath is required", e.Name))
		}
		if !validKinds[e.Kind] {
			errs = append(errs, fmt.Errorf("entry %q: invalid kind %q (must be component/module)", e.Name, e.Kind))
		} else if e.Metadata.Kind != e.Kind {
			errs = append(errs, fmt.Errorf("entry %q: metadata kind %q does not match %q", e.Name, e.Metadata.Kind, e.Kind))
		}

		if id := e.Metadata.MetadataUUID; id != "" {
			if other, taken := uuids[id]; taken {
				errs = append(errs, fmt.Errorf("entry %q: metadataUUID %q already used by %q", e.Name, id, other))
			}
			uuids[id] = e.Name
		}

		errs = append(errs, validateMetadata(e.Name, e.Metadata)...)
	}
	return errs
}

func validateMetadata(name string, md model.FileMetadata) []error {
	var errs []error
	for _, prop := range sortedProps(md.PropShape) {
		meta := md.PropShape[prop]
		if !validPropTypes[meta.Type] {
			errs = append(errs, fmt.Errorf("entry %q prop %q: invalid type %q", name, prop, meta.Type))
		}
		if len(meta.Unions) > 0 && meta.Type != model.TypeString {
			errs = append(errs, fmt.Errorf("entry %q prop %q: unions require type string", name, prop))
		}
	}
	if len(md.PropShape) > 0 {
		for _, prop := range sortedProps(md.InitialProps) {
			if _, ok := md.PropShape[prop]; !ok {
				errs = append(errs, fmt.Errorf("entry %q: initial prop %q is not declared", name, prop))
			}
		}
	}
	if len(md.ComponentTree) > 0 {
		if md.Kind != model.FileKindModule {
			errs = append(errs, fmt.Errorf("entry %q: only modules carry a component tree", name))
		} else if err := model.Validate(md.ComponentTree); err != nil {
			errs = append(errs, fmt.Errorf("entry %q component tree: %w", name, err))
		}
	}
	return errs
}

func sortedProps[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		EntryByName:         make(map[string]*Entry, len(c.Entries)),
		EntryByMetadataUUID: make(map[string]*Entry, len(c.Entries)),
		EntriesByKind:       make(map[model.FileMetadataKind][]*Entry),
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		idx.EntryByName[e.Name] = e
		if e.Metadata.MetadataUUID != "" {
			idx.EntryByMetadataUUID[e.Metadata.MetadataUUID] = e
		}
		idx.EntriesByKind[e.Kind] = append(idx.EntriesByKind[e.Kind], e)
	}
	return idx
}

// LoadFromFile loads a catalog from a JSON file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}
	return &catalog, catalog.BuildIndex(), nil
}

// WriteFile writes the catalog as indented JSON.
func (c *Catalog) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
