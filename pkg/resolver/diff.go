package resolver

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

// TreeDiff lists the UUIDs that changed between two versions of a tree.
type TreeDiff struct {
	Added      []string `json:"added,omitempty"`
	Removed    []string `json:"removed,omitempty"`
	Reparented []string `json:"reparented,omitempty"`
	// Reordered holds nodes that kept their parent but moved among their
	// siblings.
	Reordered []string `json:"reordered,omitempty"`
	// Updated holds nodes whose own content (kind, name, props, repeater
	// fields) changed.
	Updated []string `json:"updated,omitempty"`
}

// Empty reports whether the trees are identical node for node.
func (d TreeDiff) Empty() bool {
	return len(d.Added)+len(d.Removed)+len(d.Reparented)+len(d.Reordered)+len(d.Updated) == 0
}

// String summarises the diff in one line.
func (d TreeDiff) String() string {
	if d.Empty() {
		return "no changes"
	}
	var parts []string
	for _, p := range []struct {
		label string
		n     int
	}{
		{"added", len(d.Added)},
		{"removed", len(d.Removed)},
		{"reparented", len(d.Reparented)},
		{"reordered", len(d.Reordered)},
		{"updated", len(d.Updated)},
	} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", p.n, p.label))
		}
	}
	return strings.Join(parts, ", ")
}

type placement struct {
	parent string
	state  model.ComponentState
}

func placements(tree []model.ComponentState) map[string]placement {
	out := make(map[string]placement, len(tree))
	for parent, children := range model.ChildrenByParent(tree) {
		for _, c := range children {
			out[c.UUID] = placement{parent: parent, state: c}
		}
	}
	return out
}

type rank struct{ before, after int }

// siblingRanks positions every node that kept its parent among the siblings
// that also kept theirs, so insertions and removals do not count as moves.
func siblingRanks(oldTree, newTree []model.ComponentState, before, after map[string]placement) map[string]rank {
	kept := func(uuid string) bool {
		b, okB := before[uuid]
		a, okA := after[uuid]
		return okB && okA && b.parent == a.parent
	}

	ranks := make(map[string]rank)
	counter := make(map[string]int)
	for _, children := range model.ChildrenByParent(oldTree) {
		for _, c := range children {
			if kept(c.UUID) {
				parent := before[c.UUID].parent
				ranks[c.UUID] = rank{before: counter[parent]}
				counter[parent]++
			}
		}
	}
	clear(counter)
	for _, children := range model.ChildrenByParent(newTree) {
		for _, c := range children {
			if kept(c.UUID) {
				parent := after[c.UUID].parent
				r := ranks[c.UUID]
				r.after = counter[parent]
				counter[parent]++
				ranks[c.UUID] = r
			}
		}
	}
	return ranks
}

// DiffTrees compares two trees by UUID. Results follow the array order of the
// tree each UUID was found in.
func DiffTrees(oldTree, newTree []model.ComponentState) TreeDiff {
	before := placements(oldTree)
	after := placements(newTree)
	stayed := siblingRanks(oldTree, newTree, before, after)

	var d TreeDiff
	for _, c := range oldTree {
		if _, ok := after[c.UUID]; !ok {
			d.Removed = append(d.Removed, c.UUID)
		}
	}
	for _, c := range newTree {
		prev, ok := before[c.UUID]
		if !ok {
			d.Added = append(d.Added, c.UUID)
			continue
		}
		cur := after[c.UUID]
		switch {
		case prev.parent != cur.parent:
			d.Reparented = append(d.Reparented, c.UUID)
		case stayed[c.UUID].before != stayed[c.UUID].after:
			d.Reordered = append(d.Reordered, c.UUID)
		}
		if !sameContent(prev.state, cur.state) {
			d.Updated = append(d.Updated, c.UUID)
		}
	}
	return d
}

func sameContent(a, b model.ComponentState) bool {
	a.ParentUUID, b.ParentUUID = "", ""
	return reflect.DeepEqual(contentOf(a), contentOf(b))
}

// contentOf drops what does not change the rendered output: an empty
// props map and the attribute order.
func contentOf(c model.ComponentState) model.ComponentState {
	if len(c.Props) == 0 {
		c.Props = nil
	}
	c.PropOrder = nil
	if c.RepeatedComponent != nil {
		tpl := contentOf(*c.RepeatedComponent)
		c.RepeatedComponent = &tpl
	}
	return c
}
