package catalog

import (
	"sort"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

// SearchResult holds an entry match with the reason it matched.
type SearchResult struct {
	Entry       *Entry
	MatchReason string
}

// QueryService provides read-only query methods over a loaded catalog. It
// implements model.Registry.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// Lookup answers registry queries from the snapshot.
func (q *QueryService) Lookup(name string) (model.RegistryEntry, bool) {
	e, ok := q.Index.EntryByName[name]
	if !ok {
		return model.RegistryEntry{}, false
	}
	return e.RegistryEntry(), true
}

// Entries returns every entry as a registry entry, in catalog order.
func (q *QueryService) Entries() []model.RegistryEntry {
	out := make([]model.RegistryEntry, 0, len(q.Catalog.Entries))
	for _, e := range q.Catalog.Entries {
		out = append(out, e.RegistryEntry())
	}
	return out
}

// GetEntry looks up an entry by name.
func (q *QueryService) GetEntry(name string) (*Entry, bool) {
	e, ok := q.Index.EntryByName[name]
	return e, ok
}

// GetEntryByMetadataUUID looks up the entry a component state refers to.
func (q *QueryService) GetEntryByMetadataUUID(id string) (*Entry, bool) {
	e, ok := q.Index.EntryByMetadataUUID[id]
	return e, ok
}

// ListEntries returns entries filtered by kind and/or keyword.
// Both filters are optional (pass "" to skip). When both are provided, they combine with AND logic.
// The keyword matches case-insensitively against the entry name and its prop names.
func (q *QueryService) ListEntries(kind model.FileMetadataKind, keyword string) []Summary {
	var candidates []*Entry
	if kind != "" {
		candidates = q.Index.EntriesByKind[kind]
	} else {
		candidates = make([]*Entry, 0, len(q.Catalog.Entries))
		for i := range q.Catalog.Entries {
			candidates = append(candidates, &q.Catalog.Entries[i])
		}
	}

	keyword = strings.ToLower(keyword)
	result := make([]Summary, 0, len(candidates))
	for _, e := range candidates {
		if keyword != "" && matchReason(e, keyword) == "" {
			continue
		}
		result = append(result, Summarize(e))
	}
	return result
}

// Search performs a case-insensitive search across entry names, prop names
// and prop docs. Returns matching entries with the reason for the match.
func (q *QueryService) Search(query string) []SearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}
	var results []SearchResult
	for i := range q.Catalog.Entries {
		e := &q.Catalog.Entries[i]
		if reason := matchReason(e, query); reason != "" {
			results = append(results, SearchResult{Entry: e, MatchReason: reason})
		}
	}
	return results
}

func matchReason(e *Entry, query string) string {
	if strings.Contains(strings.ToLower(e.Name), query) {
		return "name"
	}
	for _, name := range sortedProps(e.Metadata.PropShape) {
		if strings.Contains(strings.ToLower(name), query) {
			return "prop:" + name
		}
	}
	for _, name := range sortedProps(e.Metadata.PropShape) {
		if strings.Contains(strings.ToLower(e.Metadata.PropShape[name].Doc), query) {
			return "doc:" + name
		}
	}
	return ""
}

// Summarize flattens an entry for listings. Props are sorted, required
// props first.
func Summarize(e *Entry) Summary {
	s := Summary{
		Name:            e.Name,
		Kind:            e.Kind,
		ImportPath:      e.ImportPath,
		AcceptsChildren: e.Metadata.AcceptsChildren,
		Props:           make([]Prop, 0, len(e.Metadata.PropShape)),
		Error:           e.Error,
	}
	for name, meta := range e.Metadata.PropShape {
		s.Props = append(s.Props, Prop{
			Name:     name,
			Type:     meta.Type,
			Required: meta.Required,
			Doc:      meta.Doc,
			Unions:   meta.Unions,
			RawType:  meta.RawType,
		})
	}
	sort.Slice(s.Props, func(i, j int) bool {
		if s.Props[i].Required != s.Props[j].Required {
			return s.Props[i].Required
		}
		return s.Props[i].Name < s.Props[j].Name
	})
	return s
}
