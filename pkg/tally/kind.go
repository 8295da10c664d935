package tally

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

// Kind names one tallied attribute of a resource.
type Kind string

// Tallied kinds, in report order.
const (
	KindLicenseExpressions  Kind = "license_expressions"
	KindCopyrights          Kind = "copyrights"
	KindHolders             Kind = "holders"
	KindAuthors             Kind = "authors"
	KindProgrammingLanguage Kind = "programming_language"
	KindPackages            Kind = "packages"
)

// ErrUnknownKind is returned when parsing a kind name that is not tallied.
var ErrUnknownKind = errors.New("unknown tally kind")

// AllKinds lists every kind in report order.
var AllKinds = []Kind{
	KindLicenseExpressions,
	KindCopyrights,
	KindHolders,
	KindAuthors,
	KindProgrammingLanguage,
	KindPackages,
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(AllKinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// Ranked reports whether the kind is counted and ranked. Packages are not:
// they are concatenated as distinct occurrences.
func (k Kind) Ranked() bool {
	return k != KindPackages
}

// PerFile reports whether every file is expected to carry a value for the kind,
// so that a file without one is counted as Null.
func (k Kind) PerFile() bool {
	return k == KindLicenseExpressions || k == KindProgrammingLanguage
}

// Capabilities names the kinds that detectors produced for a codebase.
// Kinds outside the set are skipped for the whole tree.
type Capabilities struct {
	kinds []Kind
}

// NewCapabilities returns the capability set for kinds, kept in report order.
func NewCapabilities(kinds ...Kind) Capabilities {
	active := make([]Kind, 0, len(kinds))

	for _, k := range AllKinds {
		if slices.Contains(kinds, k) {
			active = append(active, k)
		}
	}

	return Capabilities{kinds: active}
}

// ParseCapabilities builds Capabilities from kind names.
func ParseCapabilities(names []string) (Capabilities, error) {
	kinds := make([]Kind, 0, len(names))

	for _, name := range names {
		k, err := ParseKind(name)
		if err != nil {
			return Capabilities{}, err
		}

		kinds = append(kinds, k)
	}

	return NewCapabilities(kinds...), nil
}

// Has reports whether k is active.
func (c Capabilities) Has(k Kind) bool {
	return slices.Contains(c.kinds, k)
}

// Kinds returns the active kinds in report order.
func (c Capabilities) Kinds() []Kind {
	return slices.Clone(c.kinds)
}

// RankedKinds returns the active kinds that are counted and ranked.
func (c Capabilities) RankedKinds() []Kind {
	out := make([]Kind, 0, len(c.kinds))

	for _, k := range c.kinds {
		if k.Ranked() {
			out = append(out, k)
		}
	}

	return out
}

// RawValues returns the resource's own detected values for a ranked kind.
func RawValues(res *codebase.Resource, k Kind) []Value {
	det := res.Detections

	switch k {
	case KindLicenseExpressions:
		return Values(det.LicenseExpressions...)
	case KindCopyrights:
		return Values(det.Copyrights...)
	case KindHolders:
		return Values(det.Holders...)
	case KindAuthors:
		return Values(det.Authors...)
	case KindProgrammingLanguage:
		if det.ProgrammingLanguage == "" {
			return nil
		}

		return []Value{V(det.ProgrammingLanguage)}
	case KindPackages:
		return nil
	}

	return nil
}
