package model

import (
	"reflect"
	"slices"
)

// voidElements never render children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// parentOf returns the effective parent of c: empty for roots and for nodes
// whose parent is not part of the tree.
func parentOf(c ComponentState, present map[string]bool) string {
	if c.IsRoot() || !present[c.ParentUUID] {
		return ""
	}
	return c.ParentUUID
}

func uuidSet(tree []ComponentState) map[string]bool {
	set := make(map[string]bool, len(tree))
	for _, c := range tree {
		set[c.UUID] = true
	}
	return set
}

func indexByUUID(tree []ComponentState) map[string]int {
	idx := make(map[string]int, len(tree))
	for i, c := range tree {
		if _, dup := idx[c.UUID]; !dup {
			idx[c.UUID] = i
		}
	}
	return idx
}

// ChildrenByParent groups nodes by parent UUID, preserving array order.
// Roots, including nodes with a dangling parent, are keyed by "".
func ChildrenByParent(tree []ComponentState) map[string][]ComponentState {
	present := uuidSet(tree)
	children := make(map[string][]ComponentState)
	for _, c := range tree {
		p := parentOf(c, present)
		children[p] = append(children[p], c)
	}
	return children
}

// Roots returns the top-level nodes in array order.
func Roots(tree []ComponentState) []ComponentState {
	return ChildrenByParent(tree)[""]
}

// Descendants returns every node below uuid in depth-first order.
func Descendants(tree []ComponentState, uuid string) []ComponentState {
	children := ChildrenByParent(tree)
	var out []ComponentState
	seen := map[string]bool{uuid: true}
	var walk func(string)
	walk = func(parent string) {
		for _, c := range children[parent] {
			if seen[c.UUID] {
				continue
			}
			seen[c.UUID] = true
			out = append(out, c)
			walk(c.UUID)
		}
	}
	walk(uuid)
	return out
}

// ancestry returns the chain from the top-level ancestor down to uuid.
func ancestry(tree []ComponentState, idx map[string]int, uuid string) ([]string, error) {
	present := uuidSet(tree)
	var chain []string
	seen := make(map[string]bool)
	for cur := uuid; cur != ""; {
		if seen[cur] {
			return nil, treeErrorf(uuid, "cycle through %s", cur)
		}
		seen[cur] = true
		chain = append(chain, cur)
		cur = parentOf(tree[idx[cur]], present)
	}
	slices.Reverse(chain)
	return chain, nil
}

// LowestCommonAncestor returns the deepest node that is an ancestor of, or
// equal to, every node in uuids. The empty string stands for the virtual
// root above all top-level nodes.
func LowestCommonAncestor(tree []ComponentState, uuids []string) (string, error) {
	if len(uuids) == 0 {
		return "", nil
	}
	idx := indexByUUID(tree)
	var common []string
	for i, u := range uuids {
		if _, ok := idx[u]; !ok {
			return "", treeErrorf(u, "not in tree")
		}
		chain, err := ancestry(tree, idx, u)
		if err != nil {
			return "", err
		}
		if i == 0 {
			common = chain
			continue
		}
		n := 0
		for n < len(common) && n < len(chain) && common[n] == chain[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return "", nil
	}
	return common[len(common)-1], nil
}

// topLevelSelection drops the selected nodes whose ancestor is selected too.
func topLevelSelection(tree []ComponentState, selection []string) ([]string, error) {
	idx := indexByUUID(tree)
	selected := make(map[string]bool, len(selection))
	for _, u := range selection {
		if _, ok := idx[u]; !ok {
			return nil, treeErrorf(u, "not in tree")
		}
		selected[u] = true
	}
	var top []string
	for _, u := range selection {
		chain, err := ancestry(tree, idx, u)
		if err != nil {
			return nil, err
		}
		covered := false
		for _, a := range chain[:len(chain)-1] {
			if selected[a] {
				covered = true
				break
			}
		}
		if !covered && !slices.Contains(top, u) {
			top = append(top, u)
		}
	}
	return top, nil
}

// HighestSelectedParent returns the parent shared by the outermost nodes of a
// selection. When those nodes sit under different parents, the lowest common
// ancestor of the parents is returned. "" is the virtual root.
func HighestSelectedParent(tree []ComponentState, selection []string) (string, error) {
	top, err := topLevelSelection(tree, selection)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "", nil
	}
	present := uuidSet(tree)
	idx := indexByUUID(tree)
	var parents []string
	for _, u := range top {
		p := parentOf(tree[idx[u]], present)
		if p == "" {
			return "", nil
		}
		parents = append(parents, p)
	}
	return LowestCommonAncestor(tree, parents)
}

// CanAcceptChildren reports whether state may be given child nodes.
// metadata is the file metadata of a Standard or Module node and may be nil.
func CanAcceptChildren(state ComponentState, metadata *FileMetadata) bool {
	switch state.Kind {
	case KindBuiltIn:
		return !voidElements[state.ComponentName]
	case KindStandard, KindModule:
		if metadata == nil {
			return false
		}
		return metadata.AcceptsChildren || len(metadata.ComponentTree) > 0
	case KindRepeater:
		if state.RepeatedComponent == nil {
			return false
		}
		return CanAcceptChildren(*state.RepeatedComponent, metadata)
	default:
		return false
	}
}

// Validate checks the structural invariants of a tree: non-empty unique
// UUIDs, parents present in the tree, no cycles and per-kind fields.
func Validate(tree []ComponentState) error {
	idx := make(map[string]int, len(tree))
	for i, c := range tree {
		if c.UUID == "" {
			return treeErrorf("", "node at index %d has no uuid", i)
		}
		if _, dup := idx[c.UUID]; dup {
			return treeErrorf(c.UUID, "duplicate uuid")
		}
		idx[c.UUID] = i
	}

	for _, c := range tree {
		if err := validateKind(c); err != nil {
			return err
		}
		if c.IsRoot() {
			continue
		}
		if c.ParentUUID == c.UUID {
			return treeErrorf(c.UUID, "node is its own parent")
		}
		if _, ok := idx[c.ParentUUID]; !ok {
			return treeErrorf(c.UUID, "parent %s is not in the tree", c.ParentUUID)
		}
	}

	for _, c := range tree {
		if _, err := ancestry(tree, idx, c.UUID); err != nil {
			return err
		}
	}
	return nil
}

func validateKind(c ComponentState) error {
	switch c.Kind {
	case KindFragment:
		if len(c.Props) > 0 {
			return treeErrorf(c.UUID, "fragment carries props")
		}
	case KindBuiltIn, KindStandard, KindModule:
		if c.ComponentName == "" {
			return treeErrorf(c.UUID, "%s node has no component name", c.Kind)
		}
	case KindRepeater:
		if c.ListExpression == "" {
			return treeErrorf(c.UUID, "repeater has no list expression")
		}
		tpl := c.RepeatedComponent
		if tpl == nil {
			return treeErrorf(c.UUID, "repeater has no template")
		}
		switch tpl.Kind {
		case KindBuiltIn, KindStandard, KindModule:
		default:
			return treeErrorf(c.UUID, "repeater template of kind %q", tpl.Kind)
		}
		if tpl.ComponentName == "" {
			return treeErrorf(c.UUID, "repeater template has no component name")
		}
	default:
		return treeErrorf(c.UUID, "unknown kind %q", c.Kind)
	}
	return nil
}

// shapeNode is a tree node stripped of identity.
type shapeNode struct {
	Kind     ComponentKind
	Name     string
	Props    PropValues
	List     string
	Template *shapeNode
	Children []shapeNode
}

func shapeOf(c ComponentState) shapeNode {
	n := shapeNode{Kind: c.Kind, Name: c.ComponentName, List: c.ListExpression}
	if len(c.Props) > 0 {
		n.Props = c.Props
	}
	if c.RepeatedComponent != nil {
		tpl := shapeOf(*c.RepeatedComponent)
		n.Template = &tpl
	}
	return n
}

func shapeForest(tree []ComponentState) []shapeNode {
	children := ChildrenByParent(tree)
	seen := make(map[string]bool)
	var build func(parent string) []shapeNode
	build = func(parent string) []shapeNode {
		var out []shapeNode
		for _, c := range children[parent] {
			if seen[c.UUID] {
				continue
			}
			seen[c.UUID] = true
			n := shapeOf(c)
			n.Children = build(c.UUID)
			out = append(out, n)
		}
		return out
	}
	return build("")
}

// StructurallyEqual compares two trees by kind, name, props, repeater
// template and nesting order, ignoring UUIDs and metadata UUIDs.
func StructurallyEqual(a, b []ComponentState) bool {
	return reflect.DeepEqual(shapeForest(a), shapeForest(b))
}
