package codebase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

func buildTree(t *testing.T) *codebase.Codebase {
	t.Helper()

	cb, err := codebase.New("proj", false)
	require.NoError(t, err)

	root := cb.Root()

	src, err := cb.AddChild(root, "src", false)
	require.NoError(t, err)

	_, err = cb.AddChild(src, "main.c", true)
	require.NoError(t, err)

	_, err = cb.AddChild(src, "util.c", true)
	require.NoError(t, err)

	_, err = cb.AddChild(root, "README", true)
	require.NoError(t, err)

	return cb
}

func collect(t *testing.T, cb *codebase.Codebase, order codebase.WalkOrder) []string {
	t.Helper()

	var paths []string

	err := cb.Walk(order, func(res *codebase.Resource) error {
		paths = append(paths, res.Path)

		return nil
	})
	require.NoError(t, err)

	return paths
}

func TestWalkBottomUpVisitsDescendantsFirst(t *testing.T) {
	t.Parallel()

	cb := buildTree(t)

	assert.Equal(t, []string{
		"proj/src/main.c",
		"proj/src/util.c",
		"proj/src",
		"proj/README",
		"proj",
	}, collect(t, cb, codebase.BottomUp))
}

func TestWalkTopDown(t *testing.T) {
	t.Parallel()

	cb := buildTree(t)

	assert.Equal(t, []string{
		"proj",
		"proj/src",
		"proj/src/main.c",
		"proj/src/util.c",
		"proj/README",
	}, collect(t, cb, codebase.TopDown))
}

func TestWalkStopsOnError(t *testing.T) {
	t.Parallel()

	cb := buildTree(t)
	errStop := errors.New("stop")
	visited := 0

	err := cb.Walk(codebase.BottomUp, func(res *codebase.Resource) error {
		visited++
		if res.Name == "util.c" {
			return errStop
		}

		return nil
	})

	require.ErrorIs(t, err, errStop)
	assert.Equal(t, 2, visited)
}

func TestAddChildErrors(t *testing.T) {
	t.Parallel()

	cb := buildTree(t)

	readme, ok := cb.Lookup("proj/README")
	require.True(t, ok)

	_, err := cb.AddChild(readme, "x", true)
	require.ErrorIs(t, err, codebase.ErrParentIsFile)

	_, err = cb.AddChild(cb.Root(), "README", true)
	require.ErrorIs(t, err, codebase.ErrDuplicatePath)

	_, err = cb.AddChild(cb.Root(), "a/b", true)
	require.ErrorIs(t, err, codebase.ErrInvalidName)

	_, err = codebase.New("", false)
	require.ErrorIs(t, err, codebase.ErrInvalidName)
}

func TestResourceAccessors(t *testing.T) {
	t.Parallel()

	cb := buildTree(t)

	main, ok := cb.Lookup("proj/src/main.c")
	require.True(t, ok)

	assert.Equal(t, 2, main.Depth())
	assert.Equal(t, "src/main.c", main.RelPath())
	assert.Equal(t, "proj/src", main.Parent().Path)
	assert.Equal(t, codebase.FileRef{Path: "proj/src/main.c", Type: "file"}, main.Ref())
	assert.Equal(t, main, cb.Resource(main.ID))
	assert.Nil(t, cb.Resource(codebase.ResourceID(cb.Len())))

	assert.Empty(t, cb.Root().RelPath())
	assert.Equal(t, "directory", cb.Root().Ref().Type)
	assert.Len(t, cb.Files(), 3)
}

func TestLowestCommonParent(t *testing.T) {
	t.Parallel()

	cb, err := codebase.New("root", false)
	require.NoError(t, err)

	a, err := cb.AddChild(cb.Root(), "a", false)
	require.NoError(t, err)

	b, err := cb.AddChild(a, "b", false)
	require.NoError(t, err)

	_, err = cb.AddChild(b, "x.go", true)
	require.NoError(t, err)

	_, err = cb.AddChild(b, "y.go", true)
	require.NoError(t, err)

	assert.Equal(t, "root/a/b", cb.LowestCommonParent().Path)
}

func TestKeyFileAndFacets(t *testing.T) {
	t.Parallel()

	res := &codebase.Resource{IsFile: true, IsTopLevel: true, IsReadme: true, Facets: []string{"core"}}
	assert.True(t, res.IsKeyFile())
	assert.True(t, res.HasFacet("core"))
	assert.False(t, res.HasFacet("tests"))

	res.IsTopLevel = false
	assert.False(t, res.IsKeyFile())
}

func TestDetectionsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, codebase.Detections{}.Empty())
	assert.False(t, codebase.Detections{ProgrammingLanguage: "Go"}.Empty())
	assert.False(t, codebase.Detections{Packages: []codebase.Package{{Name: "x"}}}.Empty())
}
