// Package codebase models a scanned codebase as an ordered tree of file and
// directory resources carrying already-extracted detection values.
package codebase

import (
	"slices"
	"strings"
)

// ResourceID identifies a resource within one Codebase. IDs are dense and
// assigned in insertion order, the root being 0.
type ResourceID int

// Resource is a file or directory node of the codebase tree.
type Resource struct {
	ID   ResourceID
	Path string
	Name string

	IsFile     bool
	IsTopLevel bool
	IsLegal    bool
	IsReadme   bool
	IsManifest bool

	// Facets classify files (never directories), e.g. core or tests.
	Facets []string

	// Detections holds raw detected values. Always empty for directories.
	Detections Detections

	parent   *Resource
	children []*Resource
}

// Detections are the raw values the detection pipeline extracted from one file.
type Detections struct {
	LicenseExpressions  []string
	Copyrights          []string
	Holders             []string
	Authors             []string
	ProgrammingLanguage string
	Packages            []Package
}

// Empty reports whether no value of any kind was detected.
func (d Detections) Empty() bool {
	return len(d.LicenseExpressions) == 0 &&
		len(d.Copyrights) == 0 &&
		len(d.Holders) == 0 &&
		len(d.Authors) == 0 &&
		d.ProgrammingLanguage == "" &&
		len(d.Packages) == 0
}

// Children returns the direct children in order. The caller must not modify the slice.
func (r *Resource) Children() []*Resource {
	return r.children
}

// Parent returns the parent resource, or nil for the root.
func (r *Resource) Parent() *Resource {
	return r.parent
}

// Depth returns the number of edges between the resource and the root.
func (r *Resource) Depth() int {
	depth := 0
	for p := r.parent; p != nil; p = p.parent {
		depth++
	}

	return depth
}

// IsKeyFile reports whether the resource is a top-level legal, readme or manifest file.
func (r *Resource) IsKeyFile() bool {
	return r.IsFile && r.IsTopLevel && (r.IsLegal || r.IsReadme || r.IsManifest)
}

// HasFacet reports whether the resource carries the named facet.
func (r *Resource) HasFacet(name string) bool {
	return slices.Contains(r.Facets, name)
}

// RelPath returns the path without the root segment, or "" for the root itself.
func (r *Resource) RelPath() string {
	_, rest, found := strings.Cut(r.Path, pathSep)
	if !found {
		return ""
	}

	return rest
}

// Ref returns a reference to the resource suitable for embedding in package records.
func (r *Resource) Ref() FileRef {
	typ := refTypeDirectory
	if r.IsFile {
		typ = refTypeFile
	}

	return FileRef{Path: r.Path, Type: typ}
}
