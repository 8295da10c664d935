package tally

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

// Tallies maps each kind to its ranked entries.
type Tallies map[Kind][]Entry

// Clone returns a copy that shares no slices with t.
func (t Tallies) Clone() Tallies {
	out := make(Tallies, len(t))
	for k, entries := range t {
		out[k] = slices.Clone(entries)
	}

	return out
}

// Kinds returns the kinds present in t in report order.
func (t Tallies) Kinds() []Kind {
	out := make([]Kind, 0, len(t))

	for _, k := range AllKinds {
		if _, ok := t[k]; ok {
			out = append(out, k)
		}
	}

	return out
}

// Summary is the per-resource result of one pass: ranked tallies for every
// active ranked kind, and the package records found in the subtree.
type Summary struct {
	Tallies  Tallies            `json:"tallies"            yaml:"tallies"`
	Packages []codebase.Package `json:"packages,omitempty" yaml:"packages,omitempty"`
}

// Clone returns a deep copy of s.
func (s Summary) Clone() Summary {
	out := Summary{Tallies: s.Tallies.Clone()}

	if s.Packages != nil {
		out.Packages = make([]codebase.Package, len(s.Packages))
		for i, p := range s.Packages {
			out.Packages[i] = p.Clone()
		}
	}

	return out
}

// Equal reports whether two summaries hold the same tallies and packages.
// Package extras compare by their JSON form, so a number decoded as float64
// equals the int it was encoded from.
func (s Summary) Equal(o Summary) bool {
	if !maps.EqualFunc(s.Tallies, o.Tallies, func(a, b []Entry) bool { return slices.Equal(a, b) }) {
		return false
	}

	return slices.EqualFunc(s.Packages, o.Packages, func(a, b codebase.Package) bool {
		return a.PURL == b.PURL && a.Type == b.Type && a.Namespace == b.Namespace &&
			a.Name == b.Name && a.Version == b.Version && slices.Equal(a.Files, b.Files) &&
			extraEqual(a.Extra, b.Extra)
	})
}

func extraEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}

	if len(a) == 0 {
		return true
	}

	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)

	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

// ResourceTallies is one resource's own summary, listed in a detailed report.
type ResourceTallies struct {
	Path     string             `json:"path"               yaml:"path"`
	Type     string             `json:"type"               yaml:"type"`
	Tallies  Tallies            `json:"tallies"            yaml:"tallies"`
	Packages []codebase.Package `json:"packages,omitempty" yaml:"packages,omitempty"`
}
