// Package model holds the component tree shared by the load and save paths:
// component states, prop values, file metadata and the pure helpers that
// traverse a flat component array.
package model

import "sort"

// ComponentKind discriminates the variants of ComponentState.
type ComponentKind string

const (
	// KindFragment is a markup wrapper without a visible tag (<>...</>).
	KindFragment ComponentKind = "fragment"
	// KindBuiltIn is a host element such as div or img.
	KindBuiltIn ComponentKind = "builtIn"
	// KindStandard is a user or library component.
	KindStandard ComponentKind = "standard"
	// KindModule is a component whose definition owns its own tree.
	KindModule ComponentKind = "module"
	// KindRepeater renders its template once per element of a list.
	KindRepeater ComponentKind = "repeater"
)

// RootUUID is the parent marker some callers use for top-level nodes.
// It is equivalent to an empty ParentUUID.
const RootUUID = "tree-root-uuid"

// ComponentState is one node of a component tree.
//
// Only the fields of the node's Kind are populated:
//   - Fragment: UUID, ParentUUID
//   - BuiltIn: ComponentName, Props, PropOrder
//   - Standard, Module: ComponentName, Props, PropOrder, MetadataUUID
//   - Repeater: ListExpression, RepeatedComponent
type ComponentState struct {
	Kind          ComponentKind `json:"kind"`
	UUID          string        `json:"uuid,omitempty"`
	ParentUUID    string        `json:"parentUUID,omitempty"`
	ComponentName string        `json:"componentName,omitempty"`
	Props         PropValues    `json:"props,omitempty"`
	// PropOrder lists prop names in the order the source declares them.
	// Props it does not name are written after it, sorted by name.
	PropOrder     []string      `json:"propOrder,omitempty"`
	MetadataUUID  string        `json:"metadataUUID,omitempty"`

	ListExpression    string          `json:"listExpression,omitempty"`
	RepeatedComponent *ComponentState `json:"repeatedComponent,omitempty"`
}

// IsRoot reports whether the node sits at the top of its tree.
func (c ComponentState) IsRoot() bool {
	return c.ParentUUID == "" || c.ParentUUID == RootUUID
}

// Template returns the node that is rendered for c: the repeated template
// for repeaters and c itself otherwise.
func (c ComponentState) Template() ComponentState {
	if c.Kind == KindRepeater && c.RepeatedComponent != nil {
		return *c.RepeatedComponent
	}
	return c
}

// PropNames returns the names of c's props in writing order: PropOrder
// first, skipping names no longer set, then the rest sorted.
func (c ComponentState) PropNames() []string {
	names := make([]string, 0, len(c.Props))
	seen := make(map[string]bool, len(c.Props))
	for _, name := range c.PropOrder {
		if _, ok := c.Props[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range c.Props {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// PropValueKind discriminates PropValue.
type PropValueKind string

const (
	ValueKindLiteral    PropValueKind = "literal"
	ValueKindExpression PropValueKind = "expression"
	ValueKindPropRef    PropValueKind = "propRef"
	ValueKindList       PropValueKind = "list"
)

// PropValueType classifies the value of a prop.
type PropValueType string

const (
	TypeString  PropValueType = "string"
	TypeNumber  PropValueType = "number"
	TypeBoolean PropValueType = "boolean"
	TypeObject  PropValueType = "object"
	TypeArray   PropValueType = "array"
	TypeUnknown PropValueType = "unknown"
)

// PropValue is a single prop assignment.
//
// Value holds, by Kind:
//   - literal: string, float64 or bool; PropValues for object literals
//   - list: []PropValue
//   - propRef: the referenced host prop name (string)
//   - expression: the verbatim source text (string)
type PropValue struct {
	Kind      PropValueKind `json:"kind"`
	ValueType PropValueType `json:"valueType,omitempty"`
	Value     any           `json:"value"`
}

// PropValues maps prop names to their values.
type PropValues map[string]PropValue

// StringLiteral builds a string literal prop value.
func StringLiteral(s string) PropValue {
	return PropValue{Kind: ValueKindLiteral, ValueType: TypeString, Value: s}
}

// NumberLiteral builds a number literal prop value.
func NumberLiteral(n float64) PropValue {
	return PropValue{Kind: ValueKindLiteral, ValueType: TypeNumber, Value: n}
}

// BoolLiteral builds a boolean literal prop value.
func BoolLiteral(b bool) PropValue {
	return PropValue{Kind: ValueKindLiteral, ValueType: TypeBoolean, Value: b}
}

// Expression builds an opaque expression prop value.
func Expression(text string, valueType PropValueType) PropValue {
	return PropValue{Kind: ValueKindExpression, ValueType: valueType, Value: text}
}

// PropRef builds a reference to a prop of the host component.
func PropRef(name string) PropValue {
	return PropValue{Kind: ValueKindPropRef, Value: name}
}

// List builds a list prop value.
func List(items ...PropValue) PropValue {
	return PropValue{Kind: ValueKindList, ValueType: TypeArray, Value: items}
}

// PropMetadata describes one field of a prop shape.
type PropMetadata struct {
	Type     PropValueType `json:"type"`
	Doc      string        `json:"doc,omitempty"`
	Required bool          `json:"required,omitempty"`
	// Unions lists the allowed literal values of a union type.
	Unions []string `json:"unions,omitempty"`
	// RawType keeps a declared type the model cannot classify.
	RawType string `json:"rawType,omitempty"`
}

// PropShape maps prop names to their declared metadata.
type PropShape map[string]PropMetadata

// FileMetadataKind distinguishes component files from module files.
type FileMetadataKind string

const (
	FileKindComponent FileMetadataKind = "component"
	FileKindModule    FileMetadataKind = "module"
)

// FileMetadata describes the component definition of one source file.
type FileMetadata struct {
	Kind            FileMetadataKind `json:"kind"`
	Filepath        string           `json:"filepath"`
	MetadataUUID    string           `json:"metadataUUID"`
	PropShape       PropShape        `json:"propShape,omitempty"`
	InitialProps    PropValues       `json:"initialProps,omitempty"`
	AcceptsChildren bool             `json:"acceptsChildren,omitempty"`
	// ComponentTree is set for modules only.
	ComponentTree []ComponentState `json:"componentTree,omitempty"`
}

// PageState is the unit persisted for a page file.
type PageState struct {
	ComponentTree []ComponentState `json:"componentTree"`
	CSSImports    []string         `json:"cssImports"`
	Filepath      string           `json:"filepath"`
}
