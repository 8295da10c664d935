// Package facet assigns classification tags ("facets") to file resources and
// validates them against the known facet set.
//
// A facet rule has the form <facet>=<pattern>. A pattern without a slash
// matches any single path segment; a pattern with a slash matches the whole
// root-relative path. Patterns are doublestar globs matched case-insensitively.
// Files matched by no rule get the core facet.
package facet

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

// Known facets.
const (
	Core     = "core"
	Dev      = "dev"
	Tests    = "tests"
	Docs     = "docs"
	Data     = "data"
	Examples = "examples"
)

// Known lists the known facets in report order.
var Known = []string{Core, Dev, Tests, Docs, Data, Examples}

// Sentinel errors.
var (
	ErrUnknownFacet = errors.New("unknown facet")
	ErrInvalidRule  = errors.New("invalid facet rule")
)

const ruleSep = "="

// Rule assigns Facet to files whose path matches Pattern.
type Rule struct {
	Facet   string
	Pattern string
}

// String returns the rule in its <facet>=<pattern> form.
func (r Rule) String() string {
	return r.Facet + ruleSep + r.Pattern
}

// Match reports whether relPath matches the rule's pattern.
func (r Rule) Match(relPath string) bool {
	p := strings.ToLower(strings.TrimPrefix(relPath, "/"))
	if p == "" {
		return false
	}

	pattern := strings.ToLower(strings.TrimPrefix(r.Pattern, "/"))

	if !strings.Contains(pattern, "/") {
		for seg := range strings.SplitSeq(p, "/") {
			if ok, _ := doublestar.Match(pattern, seg); ok {
				return true
			}
		}

		return false
	}

	ok, _ := doublestar.Match(pattern, p)

	return ok
}

// ParseRule parses one <facet>=<pattern> definition against the known facets.
func ParseRule(def string, known []string) (Rule, error) {
	name, pattern, _ := strings.Cut(def, ruleSep)
	name = strings.TrimSpace(name)
	pattern = strings.TrimSpace(pattern)

	switch {
	case pattern == "":
		return Rule{}, fmt.Errorf("%w: missing <pattern> in %q", ErrInvalidRule, def)
	case name == "":
		return Rule{}, fmt.Errorf("%w: missing <facet> in %q", ErrInvalidRule, def)
	case !slices.Contains(known, name):
		return Rule{}, fmt.Errorf("%w: %w %q in %q, valid facets are %s",
			ErrInvalidRule, ErrUnknownFacet, name, def, strings.Join(known, ", "))
	case !doublestar.ValidatePattern(strings.ToLower(pattern)):
		return Rule{}, fmt.Errorf("%w: bad pattern in %q", ErrInvalidRule, def)
	}

	return Rule{Facet: name, Pattern: pattern}, nil
}

// Classifier computes the facets of one file. An empty result means core.
type Classifier interface {
	Facets(res *codebase.Resource) []string
}

// Rules is an ordered set of facet rules.
type Rules struct {
	rules []Rule
}

// ParseRules parses every definition and reports all invalid ones at once.
func ParseRules(defs []string, known []string) (*Rules, error) {
	rules := make([]Rule, 0, len(defs))

	var errs []error

	for _, def := range defs {
		r, err := ParseRule(def, known)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		rules = append(rules, r)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Rules{rules: rules}, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}

	return len(r.rules)
}

// Match returns the sorted, unique facets of every rule matching relPath.
func (r *Rules) Match(relPath string) []string {
	if r == nil {
		return nil
	}

	var out []string

	for _, rule := range r.rules {
		if !slices.Contains(out, rule.Facet) && rule.Match(relPath) {
			out = append(out, rule.Facet)
		}
	}

	slices.Sort(out)

	return out
}

// Facets implements Classifier.
func (r *Rules) Facets(res *codebase.Resource) []string {
	return r.Match(matchPath(res))
}

// AssignMode selects which files Assign touches.
type AssignMode int

const (
	// FillMissing only classifies files that carry no facet yet.
	FillMissing AssignMode = iota
	// Replace classifies every file.
	Replace
)

// Assign sets the facets of file resources from c, core when c yields none.
// Directories are never tagged. It returns the number of files classified.
func Assign(cb *codebase.Codebase, c Classifier, mode AssignMode) int {
	assigned := 0

	for _, res := range cb.Files() {
		if mode == FillMissing && len(res.Facets) > 0 {
			continue
		}

		facets := c.Facets(res)
		if len(facets) == 0 {
			facets = []string{Core}
		}

		res.Facets = facets
		assigned++
	}

	return assigned
}

// Validate checks that every file facet is in known. The error names the
// first offending resource path.
func Validate(cb *codebase.Codebase, known []string) error {
	for _, res := range cb.Files() {
		err := Check(res, known)
		if err != nil {
			return err
		}
	}

	return nil
}

// Check reports a facet of res outside known.
func Check(res *codebase.Resource, known []string) error {
	for _, f := range res.Facets {
		if !slices.Contains(known, f) {
			return fmt.Errorf("%w: %q on %s", ErrUnknownFacet, f, res.Path)
		}
	}

	return nil
}

func matchPath(res *codebase.Resource) string {
	if p := res.RelPath(); p != "" {
		return p
	}

	return res.Name
}
