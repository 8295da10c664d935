package codebase

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const pathSep = "/"

// Sentinel errors for tree construction.
var (
	ErrDuplicatePath       = errors.New("duplicate resource path")
	ErrParentIsFile        = errors.New("parent resource is a file")
	ErrDirectoryDetections = errors.New("directory carries detections")
	ErrInvalidName         = errors.New("invalid resource name")
)

// WalkOrder selects the traversal order of Walk.
type WalkOrder int

const (
	// TopDown visits a resource before its descendants.
	TopDown WalkOrder = iota
	// BottomUp visits every descendant before its ancestors.
	BottomUp
)

// Codebase owns a resource tree.
type Codebase struct {
	root      *Resource
	resources []*Resource
	byPath    map[string]*Resource
}

// New creates a codebase holding only its root resource.
func New(rootName string, rootIsFile bool) (*Codebase, error) {
	if !validName(rootName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, rootName)
	}

	root := &Resource{
		ID:     0,
		Path:   rootName,
		Name:   rootName,
		IsFile: rootIsFile,
	}

	return &Codebase{
		root:      root,
		resources: []*Resource{root},
		byPath:    map[string]*Resource{rootName: root},
	}, nil
}

// Root returns the root resource.
func (c *Codebase) Root() *Resource {
	return c.root
}

// Len returns the number of resources, root included.
func (c *Codebase) Len() int {
	return len(c.resources)
}

// Resource returns the resource with the given ID, or nil.
func (c *Codebase) Resource(id ResourceID) *Resource {
	if id < 0 || int(id) >= len(c.resources) {
		return nil
	}

	return c.resources[id]
}

// Lookup returns the resource at the given path.
func (c *Codebase) Lookup(p string) (*Resource, bool) {
	res, ok := c.byPath[p]

	return res, ok
}

// AddChild appends a new child named name under parent.
func (c *Codebase) AddChild(parent *Resource, name string, isFile bool) (*Resource, error) {
	if parent.IsFile {
		return nil, fmt.Errorf("%w: %s", ErrParentIsFile, parent.Path)
	}

	if !validName(name) {
		return nil, fmt.Errorf("%w: %q under %s", ErrInvalidName, name, parent.Path)
	}

	childPath := path.Join(parent.Path, name)
	if _, exists := c.byPath[childPath]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, childPath)
	}

	child := &Resource{
		ID:     ResourceID(len(c.resources)),
		Path:   childPath,
		Name:   name,
		IsFile: isFile,
		parent: parent,
	}

	parent.children = append(parent.children, child)
	c.resources = append(c.resources, child)
	c.byPath[childPath] = child

	return child, nil
}

// Walk visits every resource exactly once in the given order, children in
// insertion order. The first error returned by fn stops the walk.
func (c *Codebase) Walk(order WalkOrder, fn func(*Resource) error) error {
	return walk(c.root, order, fn)
}

func walk(res *Resource, order WalkOrder, fn func(*Resource) error) error {
	if order == TopDown {
		err := fn(res)
		if err != nil {
			return err
		}
	}

	for _, child := range res.children {
		err := walk(child, order, fn)
		if err != nil {
			return err
		}
	}

	if order == BottomUp {
		return fn(res)
	}

	return nil
}

// Files returns every file resource in top-down order.
func (c *Codebase) Files() []*Resource {
	files := make([]*Resource, 0, len(c.resources))

	//nolint:errcheck // the visitor never fails.
	_ = c.Walk(TopDown, func(res *Resource) error {
		if res.IsFile {
			files = append(files, res)
		}

		return nil
	})

	return files
}

// LowestCommonParent returns the deepest directory containing every resource:
// the root, descended through chains of directories that have a single
// directory child.
func (c *Codebase) LowestCommonParent() *Resource {
	current := c.root

	for !current.IsFile && len(current.children) == 1 && !current.children[0].IsFile {
		current = current.children[0]
	}

	return current
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.Contains(name, pathSep)
}
