// Package catalog holds JSON snapshots of a project's component registry.
// A snapshot can be exported by the indexer, validated, queried and used as
// a registry in its own right, without the source files at hand.
package catalog

import "github.com/gnana997/uisync/pkg/model"

// Entry is one registered component or module.
type Entry struct {
	Name        string                 `json:"name"`
	Kind        model.FileMetadataKind `json:"kind"`
	ImportPath  string                 `json:"importPath"`
	NamedExport bool                   `json:"namedExport,omitempty"`
	Metadata    model.FileMetadata     `json:"metadata"`
	// Error is the parse failure of the entry's file, if any.
	Error string `json:"error,omitempty"`
}

// RegistryEntry converts e for use as a model.Registry answer.
func (e Entry) RegistryEntry() model.RegistryEntry {
	return model.RegistryEntry{
		Name:        e.Name,
		ImportPath:  e.ImportPath,
		NamedExport: e.NamedExport,
		Metadata:    e.Metadata,
	}
}

// Prop is a flattened prop description for listings.
type Prop struct {
	Name     string              `json:"name"`
	Type     model.PropValueType `json:"type"`
	Required bool                `json:"required"`
	Doc      string              `json:"doc,omitempty"`
	Unions   []string            `json:"unions,omitempty"`
	RawType  string              `json:"rawType,omitempty"`
}

// Summary describes an entry without its module tree.
type Summary struct {
	Name            string                 `json:"name"`
	Kind            model.FileMetadataKind `json:"kind"`
	ImportPath      string                 `json:"importPath"`
	AcceptsChildren bool                   `json:"acceptsChildren,omitempty"`
	Props           []Prop                 `json:"props"`
	Error           string                 `json:"error,omitempty"`
}
