package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
)

func testValidator() *Validator {
	reg := model.StaticRegistry{}
	reg.Add(model.RegistryEntry{
		Name:       "Button",
		ImportPath: "/app/src/components/Button.tsx",
		Metadata: model.FileMetadata{
			Kind:         model.FileKindComponent,
			MetadataUUID: "button-md",
			PropShape: model.PropShape{
				"label":   {Type: model.TypeString, Required: true},
				"variant": {Type: model.TypeString, Unions: []string{"default", "destructive", "outline"}},
				"size":    {Type: model.TypeString, Unions: []string{"sm", "lg"}, Required: true},
				"count":   {Type: model.TypeNumber},
			},
			InitialProps: model.PropValues{
				"size": model.StringLiteral("lg"),
			},
		},
	})
	reg.Add(model.RegistryEntry{
		Name:       "Panel",
		ImportPath: "/app/src/components/Panel.tsx",
		Metadata: model.FileMetadata{
			Kind:            model.FileKindComponent,
			MetadataUUID:    "panel-md",
			AcceptsChildren: true,
		},
	})
	reg.Add(model.RegistryEntry{
		Name:       "Hero",
		ImportPath: "/app/src/modules/Hero.tsx",
		Metadata:   model.FileMetadata{Kind: model.FileKindModule, MetadataUUID: "hero-md"},
	})
	return New(reg, nil)
}

func button(uuid, parent string, props model.PropValues) model.ComponentState {
	return model.ComponentState{
		Kind: model.KindStandard, UUID: uuid, ParentUUID: parent,
		ComponentName: "Button", MetadataUUID: "button-md", Props: props,
	}
}

func rules(r *Result) []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Rule)
	}
	return out
}

func TestValidateTree_ValidTree(t *testing.T) {
	v := testValidator()
	tree := []model.ComponentState{
		{Kind: model.KindStandard, UUID: "p", ComponentName: "Panel", MetadataUUID: "panel-md"},
		{Kind: model.KindBuiltIn, UUID: "d", ParentUUID: "p", ComponentName: "div"},
		button("b", "d", model.PropValues{
			"label":   model.StringLiteral("Save"),
			"variant": model.StringLiteral("outline"),
		}),
		{Kind: model.KindModule, UUID: "h", ComponentName: "Hero", MetadataUUID: "hero-md"},
	}

	result := v.ValidateTree(tree)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
	assert.Equal(t, "no issues found", result.Summary)
}

func TestValidateTree_UnknownComponent(t *testing.T) {
	v := testValidator()
	tree := []model.ComponentState{
		{Kind: model.KindStandard, UUID: "w", ComponentName: "FancyWidget"},
	}

	result := v.ValidateTree(tree)
	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, RuleUnknownComponent, result.Violations[0].Rule)
	assert.Equal(t, "FancyWidget", result.Violations[0].Component)
	assert.Equal(t, "w", result.Violations[0].NodeUUID)
}

func TestValidateTree_InvalidPropValue(t *testing.T) {
	v := testValidator()
	tree := []model.ComponentState{
		button("b", "", model.PropValues{
			"label":   model.StringLiteral("Save"),
			"variant": model.StringLiteral("fancy"),
			"size":    model.StringLiteral("xl"),
		}),
	}

	result := v.ValidateTree(tree)
	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 2)

	size, variant := result.Violations[0], result.Violations[1]
	assert.Equal(t, RuleInvalidPropValue, size.Rule)
	assert.Equal(t, "size", size.Prop)
	assert.Equal(t, "lg", size.Suggestion, "initial value is preferred")

	assert.Equal(t, RuleInvalidPropValue, variant.Rule)
	assert.Contains(t, variant.Message, "fancy")
	assert.Equal(t, "default", variant.Suggestion)
	assert.Equal(t, "2 error(s), 0 warning(s)", result.Summary)
}

func TestValidateTree_Warnings(t *testing.T) {
	tests := []struct {
		name string
		tree []model.ComponentState
		want []string
	}{
		{
			name: "missing required prop without initial value",
			tree: []model.ComponentState{button("b", "", nil)},
			want: []string{RuleMissingRequired},
		},
		{
			name: "undeclared prop",
			tree: []model.ComponentState{button("b", "", model.PropValues{
				"label": model.StringLiteral("x"),
				"href":  model.StringLiteral("/"),
			})},
			want: []string{RuleUnknownProp},
		},
		{
			name: "literal of the wrong type",
			tree: []model.ComponentState{button("b", "", model.PropValues{
				"label": model.StringLiteral("x"),
				"count": model.StringLiteral("3"),
			})},
			want: []string{RulePropTypeMismatch},
		},
		{
			name: "expressions are not checked",
			tree: []model.ComponentState{button("b", "", model.PropValues{
				"label":   model.Expression("t('save')", model.TypeString),
				"variant": model.PropRef("variant"),
			})},
			want: []string{},
		},
		{
			name: "children under a leaf component",
			tree: []model.ComponentState{
				button("b", "", model.PropValues{"label": model.StringLiteral("x")}),
				{Kind: model.KindBuiltIn, UUID: "s", ParentUUID: "b", ComponentName: "span"},
			},
			want: []string{RuleUnexpectedChildren},
		},
		{
			name: "module used as a component",
			tree: []model.ComponentState{
				{Kind: model.KindStandard, UUID: "h", ComponentName: "Hero", MetadataUUID: "hero-md"},
			},
			want: []string{RuleKindMismatch},
		},
		{
			name: "metadata uuid from another file",
			tree: []model.ComponentState{
				{Kind: model.KindStandard, UUID: "p", ComponentName: "Panel", MetadataUUID: "old-md"},
			},
			want: []string{RuleStaleMetadata},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testValidator().ValidateTree(tt.tree)
			assert.True(t, result.Valid)
			assert.Equal(t, tt.want, rules(result))
			for _, viol := range result.Violations {
				assert.Equal(t, SeverityWarning, viol.Severity)
			}
		})
	}
}

func TestValidateTree_RepeaterTemplate(t *testing.T) {
	v := testValidator()
	tpl := button("", "", model.PropValues{
		"label":   model.PropRef("label"),
		"variant": model.StringLiteral("loud"),
	})
	tree := []model.ComponentState{
		{Kind: model.KindRepeater, UUID: "r", ListExpression: "items", RepeatedComponent: &tpl},
	}

	result := v.ValidateTree(tree)
	assert.False(t, result.Valid)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "r", result.Violations[0].NodeUUID)
	assert.Equal(t, RuleInvalidPropValue, result.Violations[0].Rule)
}

func TestValidateTree_NilRegistry(t *testing.T) {
	v := New(nil, nil)
	result := v.ValidateTree([]model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "d", ComponentName: "div"},
		{Kind: model.KindStandard, UUID: "c", ComponentName: "Card"},
	})
	assert.Equal(t, []string{RuleUnknownComponent}, rules(result))
}
