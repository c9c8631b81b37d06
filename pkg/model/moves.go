package model

import "slices"

// MoveSelection reparents the outermost nodes of selection under
// destParent ("" for the root) so they become its children starting at
// position index. Selected subtrees move with their roots and keep their
// relative array order. The input slice is not modified.
//
// Dropping onto a selected node, or onto any node nested in the selection,
// fails with ErrDropInsideSelection.
func MoveSelection(tree []ComponentState, selection []string, destParent string, index int) ([]ComponentState, error) {
	top, err := topLevelSelection(tree, selection)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return slices.Clone(tree), nil
	}

	moving := make(map[string]bool)
	for _, u := range top {
		moving[u] = true
		for _, d := range Descendants(tree, u) {
			moving[d.UUID] = true
		}
	}

	if destParent == RootUUID {
		destParent = ""
	}
	if destParent != "" {
		if _, ok := indexByUUID(tree)[destParent]; !ok {
			return nil, treeErrorf(destParent, "drop target is not in the tree")
		}
		if moving[destParent] {
			return nil, ErrDropInsideSelection
		}
	}

	isTop := make(map[string]bool, len(top))
	for _, u := range top {
		isTop[u] = true
	}

	var moved, remaining []ComponentState
	for _, c := range tree {
		if !moving[c.UUID] {
			remaining = append(remaining, c)
			continue
		}
		if isTop[c.UUID] {
			c.ParentUUID = destParent
		}
		moved = append(moved, c)
	}

	pos := insertPosition(remaining, destParent, index)
	out := make([]ComponentState, 0, len(tree))
	out = append(out, remaining[:pos]...)
	out = append(out, moved...)
	out = append(out, remaining[pos:]...)
	return out, nil
}

// insertPosition maps a sibling index under parent to an array offset.
func insertPosition(tree []ComponentState, parent string, index int) int {
	present := uuidSet(tree)
	var siblings []int
	parentAt := -1
	for i, c := range tree {
		if c.UUID == parent {
			parentAt = i
		}
		if parentOf(c, present) == parent {
			siblings = append(siblings, i)
		}
	}

	switch {
	case index < 0:
		index = 0
	case index > len(siblings):
		index = len(siblings)
	}

	if index < len(siblings) {
		return siblings[index]
	}
	if len(siblings) > 0 {
		return siblings[len(siblings)-1] + 1
	}
	if parentAt >= 0 {
		return parentAt + 1
	}
	return len(tree)
}
