package tally

import "github.com/Sumatoshi-tech/codetally/pkg/codebase"

// SummarizeKind ranks the values of one kind over the subtree of res.
//
// The input multiset is the resource's own raw values followed by the
// re-expanded entries of each direct child, in child order. A file with no raw
// value for a per-file kind contributes a single Null so it still counts.
// children must hold the already computed summaries of res's direct children.
func SummarizeKind(res *codebase.Resource, children []Summary, k Kind) []Entry {
	values := RawValues(res, k)
	if res.IsFile && k.PerFile() && len(values) == 0 {
		values = []Value{Null}
	}

	for _, child := range children {
		values = append(values, Expand(child.Tallies[k])...)
	}

	return Count(values)
}

// SummarizePackages concatenates the packages of res, each referencing res,
// with the package lists of its direct children. Records are never merged:
// identical packages from different files are distinct occurrences.
func SummarizePackages(res *codebase.Resource, children []Summary) []codebase.Package {
	own := res.Detections.Packages

	total := len(own)
	for _, child := range children {
		total += len(child.Packages)
	}

	out := make([]codebase.Package, 0, total)

	ref := res.Ref()
	for _, p := range own {
		out = append(out, p.WithFile(ref))
	}

	for _, child := range children {
		for _, p := range child.Packages {
			out = append(out, p.Clone())
		}
	}

	return out
}

// rollup re-expands the entries of several summaries and re-ranks them per kind.
func rollup(summaries []Summary, kinds []Kind) Tallies {
	out := make(Tallies, len(kinds))

	for _, k := range kinds {
		var values []Value

		for _, s := range summaries {
			values = append(values, Expand(s.Tallies[k])...)
		}

		out[k] = Count(values)
	}

	return out
}
