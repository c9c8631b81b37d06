package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

const pageFile = "/app/src/pages/index.tsx"

func testRegistry() model.StaticRegistry {
	reg := model.StaticRegistry{}
	reg.Add(model.RegistryEntry{Name: "Banner", ImportPath: "/app/src/components/Banner.tsx"})
	reg.Add(model.RegistryEntry{Name: "Footer", ImportPath: "/app/src/components/Footer.tsx"})
	reg.Add(model.RegistryEntry{Name: "Card", ImportPath: "/app/src/components/cards.tsx", NamedExport: true})
	reg.Add(model.RegistryEntry{Name: "Hero", ImportPath: "/app/src/modules/Hero.tsx",
		Metadata: model.FileMetadata{Kind: model.FileKindModule}})
	reg.Add(model.RegistryEntry{Name: "Button", ImportPath: "@acme/ui", NamedExport: true})
	return reg
}

func TestSpecifier(t *testing.T) {
	testCases := []struct {
		name       string
		importPath string
		want       string
	}{
		{"sibling directory", "/app/src/components/Footer.tsx", "../components/Footer"},
		{"same directory", "/app/src/pages/Header.jsx", "./Header"},
		{"nested", "/app/src/pages/parts/Side.ts", "./parts/Side"},
		{"bare specifier", "@acme/ui", "@acme/ui"},
		{"relative kept", "../components/Banner", "../components/Banner"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Specifier(pageFile, tc.importPath))
		})
	}
}

func TestResolve(t *testing.T) {
	tree := []model.ComponentState{
		{Kind: model.KindFragment, UUID: "f"},
		{Kind: model.KindBuiltIn, UUID: "d", ParentUUID: "f", ComponentName: "div"},
		{Kind: model.KindStandard, UUID: "b1", ParentUUID: "d", ComponentName: "Banner"},
		{Kind: model.KindStandard, UUID: "b2", ParentUUID: "d", ComponentName: "Banner"},
		{Kind: model.KindModule, UUID: "h", ParentUUID: "f", ComponentName: "Hero"},
		{Kind: model.KindRepeater, UUID: "r", ParentUUID: "f", ListExpression: "items",
			RepeatedComponent: &model.ComponentState{Kind: model.KindStandard, ComponentName: "Card"}},
		{Kind: model.KindStandard, UUID: "btn", ParentUUID: "f", ComponentName: "Button"},
	}

	set, err := Resolve(tree, testRegistry(), pageFile)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Banner": "../components/Banner",
		"Card":   "../components/cards",
		"Button": "@acme/ui",
	}, set.Components)
	assert.Equal(t, map[string]string{"Hero": "../modules/Hero"}, set.Modules)
	assert.Equal(t, map[string]bool{"Card": true, "Button": true}, set.Named)
	assert.Equal(t, []string{"Banner", "Button", "Card", "Hero"}, set.Names())
	assert.Equal(t, 4, set.Len())
}

func TestResolve_UnknownComponent(t *testing.T) {
	tree := []model.ComponentState{
		{Kind: model.KindStandard, UUID: "x", ComponentName: "Missing"},
	}

	_, err := Resolve(tree, testRegistry(), pageFile)
	require.Error(t, err)

	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, UnknownComponent, re.Kind)
	assert.Equal(t, "Missing", re.Name)
	assert.Equal(t, "x", re.UUID)
}

func TestResolve_EmptyTree(t *testing.T) {
	set, err := Resolve(nil, nil, pageFile)
	require.NoError(t, err)
	assert.Zero(t, set.Len())
}

func imp(source string, dflt string, named ...string) sourcefile.Import {
	i := sourcefile.Import{Source: source, Quote: '"', Default: dflt, Semicolon: true}
	for _, n := range named {
		i.Named = append(i.Named, sourcefile.ImportName{Name: n})
	}
	return i
}

func TestReconcile(t *testing.T) {
	reg := testRegistry()
	want := &ImportSet{
		Components: map[string]string{"Banner": "../components/Banner", "Footer": "../components/Footer"},
		Modules:    map[string]string{},
		Named:      map[string]bool{},
	}
	existing := []sourcefile.Import{
		imp("react", "React", "useState"),
		imp("../components/Banner", "Banner"),
		imp("../components/cards", "", "Card"),
		imp("./old.css", ""),
		imp("./index.css", ""),
	}

	plan := Reconcile(existing, want, []string{"./index.css", "./theme.css"}, reg)

	require.Len(t, plan.Decisions, 5)
	assert.Equal(t, Keep, plan.Decisions[0].Action)
	assert.Equal(t, Keep, plan.Decisions[1].Action)
	assert.Equal(t, Remove, plan.Decisions[2].Action)
	assert.Equal(t, Remove, plan.Decisions[3].Action)
	assert.Equal(t, Keep, plan.Decisions[4].Action)
	assert.Equal(t, []Addition{
		{Specifier: "../components/Footer", Default: "Footer"},
		{Specifier: "./theme.css"},
	}, plan.Additions)
	assert.True(t, plan.Changed())
}

func TestReconcile_KeepsRequiredImportWhileDroppingUnused(t *testing.T) {
	reg := testRegistry()
	want := &ImportSet{
		Components: map[string]string{"Banner": "../components/Banner"},
		Modules:    map[string]string{},
		Named:      map[string]bool{},
	}
	existing := []sourcefile.Import{
		imp("../components", "", "Banner", "Footer"),
	}

	plan := Reconcile(existing, want, nil, reg)

	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, Rewrite, plan.Decisions[0].Action)
	assert.Equal(t, `import { Banner } from "../components";`, plan.Decisions[0].Text)
	assert.Empty(t, plan.Additions)
}

func TestReconcile_Unchanged(t *testing.T) {
	want := &ImportSet{
		Components: map[string]string{"Banner": "../components/Banner"},
		Modules:    map[string]string{},
		Named:      map[string]bool{},
	}
	existing := []sourcefile.Import{
		{Source: "../components/Banner", Quote: '\'', Default: "Banner"},
	}

	plan := Reconcile(existing, want, nil, testRegistry())
	assert.False(t, plan.Changed())
}

func TestReconcile_GroupsNamedAdditions(t *testing.T) {
	want := &ImportSet{
		Components: map[string]string{"Card": "../components/cards", "CardList": "../components/cards"},
		Modules:    map[string]string{},
		Named:      map[string]bool{"Card": true, "CardList": true},
	}

	plan := Reconcile(nil, want, nil, nil)
	require.Len(t, plan.Additions, 1)
	assert.Equal(t, `import { Card, CardList } from '../components/cards'`,
		FormatAddition(plan.Additions[0], sourcefile.Style{Quote: '\''}))
}

func TestFormatImport(t *testing.T) {
	testCases := []struct {
		name string
		imp  sourcefile.Import
		want string
	}{
		{"side effect", sourcefile.Import{Source: "./index.css", Quote: '"', Semicolon: true}, `import "./index.css";`},
		{"default", imp("../components/Banner", "Banner"), `import Banner from "../components/Banner";`},
		{"mixed", sourcefile.Import{Source: "react", Quote: '\'', Default: "React",
			Named: []sourcefile.ImportName{{Name: "useState"}, {Name: "FC", TypeOnly: true}, {Name: "memo", Alias: "m"}}},
			`import React, { useState, type FC, memo as m } from 'react'`},
		{"namespace", sourcefile.Import{Source: "./lib", Namespace: "lib"}, `import * as lib from "./lib"`},
		{"type only", sourcefile.Import{Source: "./types", TypeOnly: true, Named: []sourcefile.ImportName{{Name: "Props"}}},
			`import type { Props } from "./types"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatImport(tc.imp))
		})
	}
}

func TestDiffTrees(t *testing.T) {
	oldTree := []model.ComponentState{
		{Kind: model.KindFragment, UUID: "f"},
		{Kind: model.KindBuiltIn, UUID: "a", ParentUUID: "f", ComponentName: "div"},
		{Kind: model.KindBuiltIn, UUID: "b", ParentUUID: "f", ComponentName: "span"},
		{Kind: model.KindBuiltIn, UUID: "c", ParentUUID: "f", ComponentName: "p"},
		{Kind: model.KindBuiltIn, UUID: "gone", ParentUUID: "a", ComponentName: "img"},
	}
	newTree := []model.ComponentState{
		{Kind: model.KindFragment, UUID: "f"},
		{Kind: model.KindBuiltIn, UUID: "new", ParentUUID: "f", ComponentName: "hr"},
		{Kind: model.KindBuiltIn, UUID: "b", ParentUUID: "f", ComponentName: "span",
			Props: model.PropValues{"id": model.StringLiteral("x")}},
		{Kind: model.KindBuiltIn, UUID: "a", ParentUUID: "f", ComponentName: "div"},
		{Kind: model.KindBuiltIn, UUID: "c", ParentUUID: "a", ComponentName: "p"},
	}

	d := DiffTrees(oldTree, newTree)
	assert.Equal(t, []string{"gone"}, d.Removed)
	assert.Equal(t, []string{"new"}, d.Added)
	assert.Equal(t, []string{"c"}, d.Reparented)
	assert.Equal(t, []string{"b", "a"}, d.Reordered)
	assert.Equal(t, []string{"b"}, d.Updated)
	assert.False(t, d.Empty())
	assert.Equal(t, "1 added, 1 removed, 1 reparented, 2 reordered, 1 updated", d.String())
}

func TestDiffTrees_InsertionIsNotAMove(t *testing.T) {
	oldTree := []model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "div"},
		{Kind: model.KindBuiltIn, UUID: "b", ComponentName: "div"},
	}
	newTree := []model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "x", ComponentName: "hr"},
		{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "div"},
		{Kind: model.KindBuiltIn, UUID: "b", ComponentName: "div", Props: model.PropValues{},
			PropOrder: []string{"id"}},
	}

	d := DiffTrees(oldTree, newTree)
	assert.Equal(t, []string{"x"}, d.Added)
	assert.Empty(t, d.Reordered)
	assert.Empty(t, d.Updated)
	assert.Equal(t, "no changes", DiffTrees(oldTree, oldTree).String())
}
