package facet

import (
	"slices"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

// defaultRules cover the usual test, example and data layouts.
var defaultRules = []Rule{
	{Facet: Tests, Pattern: "test"},
	{Facet: Tests, Pattern: "tests"},
	{Facet: Tests, Pattern: "__tests__"},
	{Facet: Tests, Pattern: "testdata"},
	{Facet: Tests, Pattern: "*_test.go"},
	{Facet: Tests, Pattern: "test_*.py"},
	{Facet: Tests, Pattern: "*_test.py"},
	{Facet: Tests, Pattern: "*.{test,spec}.{js,jsx,ts,tsx}"},
	{Facet: Tests, Pattern: "*{Test,Tests}.java"},
	{Facet: Examples, Pattern: "example"},
	{Facet: Examples, Pattern: "examples"},
	{Facet: Examples, Pattern: "samples"},
	{Facet: Data, Pattern: "*.{csv,tsv,parquet,sqlite,db}"},
	{Facet: Data, Pattern: "fixtures"},
}

// DefaultClassifier classifies files without configured rules: the built-in
// layout rules plus enry's documentation, vendoring and configuration heuristics.
type DefaultClassifier struct {
	rules Rules
}

// NewDefaultClassifier returns the classifier used when no facet rules are configured.
func NewDefaultClassifier() *DefaultClassifier {
	return &DefaultClassifier{rules: Rules{rules: defaultRules}}
}

// Facets implements Classifier.
func (d *DefaultClassifier) Facets(res *codebase.Resource) []string {
	p := matchPath(res)
	out := d.rules.Match(p)

	add := func(f string) {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}

	switch {
	case enry.IsVendor(p), enry.IsDotFile(p):
		add(Dev)
	case enry.IsDocumentation(p):
		add(Docs)
	case enry.IsConfiguration(p):
		add(Data)
	}

	slices.Sort(out)

	return out
}
