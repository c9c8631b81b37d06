package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
)

func testEntries() []model.RegistryEntry {
	return []model.RegistryEntry{
		{
			Name:       "Hero",
			ImportPath: "/app/src/modules/Hero.tsx",
			Metadata: model.FileMetadata{
				Kind:         model.FileKindModule,
				Filepath:     "/app/src/modules/Hero.tsx",
				MetadataUUID: "hero-md",
				ComponentTree: []model.ComponentState{
					{Kind: model.KindStandard, UUID: "a", ComponentName: "Banner", MetadataUUID: "banner-md"},
				},
			},
		},
		{
			Name:       "Banner",
			ImportPath: "/app/src/components/Banner.tsx",
			Metadata: model.FileMetadata{
				Kind:         model.FileKindComponent,
				Filepath:     "/app/src/components/Banner.tsx",
				MetadataUUID: "banner-md",
				PropShape: model.PropShape{
					"title": {Type: model.TypeString, Required: true, Doc: "Heading text."},
					"tone":  {Type: model.TypeString, Unions: []string{"light", "dark"}},
				},
				InitialProps: model.PropValues{"title": model.StringLiteral("Welcome")},
			},
		},
	}
}

func testCatalog() *Catalog {
	return FromEntries("site", "1", "/app", testEntries())
}

func TestFromEntries_SortsByName(t *testing.T) {
	c := testCatalog()
	require.Len(t, c.Entries, 2)
	assert.Equal(t, "Banner", c.Entries[0].Name)
	assert.Equal(t, model.FileKindComponent, c.Entries[0].Kind)
	assert.Equal(t, model.FileKindModule, c.Entries[1].Kind)
	assert.Empty(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   string
	}{
		{"missing name", func(c *Catalog) { c.Name = "" }, "catalog name is required"},
		{"missing version", func(c *Catalog) { c.Version = "" }, "catalog version is required"},
		{"lower-case entry", func(c *Catalog) { c.Entries[0].Name = "banner" }, "upper-case"},
		{"duplicate entry", func(c *Catalog) { c.Entries[1].Name = "Banner" }, "duplicate entry name"},
		{"missing import path", func(c *Catalog) { c.Entries[0].ImportPath = "" }, "importPath is required"},
		{"bad kind", func(c *Catalog) { c.Entries[0].Kind = "page" }, "invalid kind"},
		{"kind mismatch", func(c *Catalog) { c.Entries[0].Metadata.Kind = model.FileKindModule }, "does not match"},
		{"shared metadata uuid", func(c *Catalog) { c.Entries[1].Metadata.MetadataUUID = "banner-md" }, "already used"},
		{"bad prop type", func(c *Catalog) {
			c.Entries[0].Metadata.PropShape["size"] = model.PropMetadata{Type: "bigint"}
		}, "invalid type"},
		{"unions on numbers", func(c *Catalog) {
			c.Entries[0].Metadata.PropShape["size"] = model.PropMetadata{Type: model.TypeNumber, Unions: []string{"1"}}
		}, "unions require type string"},
		{"undeclared initial prop", func(c *Catalog) {
			c.Entries[0].Metadata.InitialProps["subtitle"] = model.StringLiteral("x")
		}, "initial prop \"subtitle\" is not declared"},
		{"broken module tree", func(c *Catalog) {
			c.Entries[1].Metadata.ComponentTree[0].ParentUUID = "missing"
		}, "component tree"},
		{"tree on a component", func(c *Catalog) {
			c.Entries[0].Metadata.ComponentTree = c.Entries[1].Metadata.ComponentTree
		}, "only modules carry a component tree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCatalog()
			tt.mutate(c)
			errs := c.Validate()
			require.NotEmpty(t, errs)
			var found bool
			for _, err := range errs {
				if assert.Error(t, err) && strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			assert.True(t, found, "no error mentions %q: %v", tt.want, errs)
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, testCatalog().WriteFile(path))

	cat, idx, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, testCatalog(), cat)
	assert.Same(t, &cat.Entries[0], idx.EntryByName["Banner"])
	assert.Same(t, &cat.Entries[1], idx.EntryByMetadataUUID["hero-md"])
	assert.Len(t, idx.EntriesByKind[model.FileKindModule], 1)
}

func TestLoadFromBytes_Errors(t *testing.T) {
	_, _, err := LoadFromBytes([]byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog JSON")

	_, _, err = LoadFromBytes([]byte(`{"entries":[{"name":"x"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
	assert.Contains(t, err.Error(), "catalog name is required")
	assert.Contains(t, err.Error(), "importPath is required")

	_, _, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
