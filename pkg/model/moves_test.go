package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveFixture() []ComponentState {
	return []ComponentState{
		{Kind: KindBuiltIn, UUID: "left", ComponentName: "div"},
		{Kind: KindBuiltIn, UUID: "a", ParentUUID: "left", ComponentName: "p"},
		{Kind: KindBuiltIn, UUID: "a1", ParentUUID: "a", ComponentName: "span"},
		{Kind: KindBuiltIn, UUID: "b", ParentUUID: "left", ComponentName: "p"},
		{Kind: KindBuiltIn, UUID: "right", ComponentName: "div"},
		{Kind: KindBuiltIn, UUID: "c", ParentUUID: "right", ComponentName: "p"},
	}
}

func TestMoveSelection_ToOtherParent(t *testing.T) {
	out, err := MoveSelection(moveFixture(), []string{"a", "b"}, "right", 1)
	require.NoError(t, err)

	children := ChildrenByParent(out)
	assert.Equal(t, []string{"c", "a", "b"}, uuids(children["right"]))
	assert.Empty(t, children["left"])
	// The subtree travels with its root.
	assert.Equal(t, []string{"a1"}, uuids(children["a"]))
	require.NoError(t, Validate(out))
}

func TestMoveSelection_ToRootFront(t *testing.T) {
	out, err := MoveSelection(moveFixture(), []string{"c"}, RootUUID, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "left", "right"}, uuids(Roots(out)))
	assert.Equal(t, "", out[0].ParentUUID)
}

func TestMoveSelection_IndexClamped(t *testing.T) {
	out, err := MoveSelection(moveFixture(), []string{"c"}, "left", 99)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, uuids(ChildrenByParent(out)["left"]))
}

func TestMoveSelection_IntoEmptyContainer(t *testing.T) {
	out, err := MoveSelection(moveFixture(), []string{"b"}, "a1", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, uuids(ChildrenByParent(out)["a1"]))
}

func TestMoveSelection_RejectsDropInsideSelection(t *testing.T) {
	_, err := MoveSelection(moveFixture(), []string{"a"}, "a1", 0)
	assert.ErrorIs(t, err, ErrDropInsideSelection)

	_, err = MoveSelection(moveFixture(), []string{"a", "b"}, "b", 0)
	assert.ErrorIs(t, err, ErrDropInsideSelection)
}

func TestMoveSelection_UnknownTarget(t *testing.T) {
	_, err := MoveSelection(moveFixture(), []string{"a"}, "ghost", 0)

	var treeErr *TreeError
	assert.ErrorAs(t, err, &treeErr)
}

func TestMoveSelection_DoesNotMutateInput(t *testing.T) {
	tree := moveFixture()
	_, err := MoveSelection(tree, []string{"a"}, "right", 0)
	require.NoError(t, err)

	assert.Equal(t, moveFixture(), tree)
}
