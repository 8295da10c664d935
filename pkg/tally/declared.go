package tally

import (
	"cmp"
	"slices"
)

// Declared holds the majority-vote selections over finalized attributes and
// their complements.
type Declared struct {
	// LicenseExpression is the declared license, Null when none could be chosen.
	LicenseExpression Value `json:"license_expression" yaml:"license_expression"`
	// Holders are the codebase holders also found in key files, every entry
	// tied at the highest count, in ranked order.
	Holders []Entry `json:"holders" yaml:"holders"`
	// PrimaryLanguage is the most frequent detected language, nil when none.
	PrimaryLanguage *Entry `json:"primary_language" yaml:"primary_language"`

	OtherLicenseExpressions []Entry `json:"other_license_expressions" yaml:"other_license_expressions"`
	OtherHolders            []Entry `json:"other_holders"             yaml:"other_holders"`
	OtherLanguages          []Entry `json:"other_languages"           yaml:"other_languages"`
}

// DeclaredOptions tune SelectDeclared.
type DeclaredOptions struct {
	// LicenseExpression overrides the declared license when not empty.
	LicenseExpression string
}

// SelectDeclared chooses the declared license and holders and the primary
// language of finalized attributes and computes the "other" complements.
// It is a pure function of attrs. Key-file values come from the reported
// key-files rollup or, when Finalize ran without it, from the rollup Finalize
// kept aside. Attributes built without either declare no holder and fall back
// to the option for the license.
func SelectDeclared(attrs *Attributes, opts DeclaredOptions) Declared {
	keyFiles := attrs.keyFileSource()

	d := Declared{
		LicenseExpression: Null,
		Holders:           declaredHolders(attrs.Tallies[KindHolders], keyFiles[KindHolders]),
		PrimaryLanguage:   topEntry(attrs.Tallies[KindProgrammingLanguage]),
	}

	if opts.LicenseExpression != "" {
		d.LicenseExpression = V(opts.LicenseExpression)
	} else if top := topEntry(keyFiles[KindLicenseExpressions]); top != nil {
		d.LicenseExpression = top.Value
	}

	d.OtherLicenseExpressions = withoutValue(attrs.Tallies[KindLicenseExpressions], d.LicenseExpression)

	d.OtherHolders = make([]Entry, 0, len(attrs.Tallies[KindHolders]))
	for _, e := range attrs.Tallies[KindHolders] {
		if !slices.Contains(d.Holders, e) {
			d.OtherHolders = append(d.OtherHolders, e)
		}
	}

	if d.PrimaryLanguage != nil {
		d.OtherLanguages = withoutValue(attrs.Tallies[KindProgrammingLanguage], d.PrimaryLanguage.Value)
	} else {
		d.OtherLanguages = slices.Clone(attrs.Tallies[KindProgrammingLanguage])
	}

	if d.OtherLanguages == nil {
		d.OtherLanguages = []Entry{}
	}

	return d
}

// ApplyDeclared stores the SelectDeclared result on attrs and returns it.
// Per-resource summaries are not touched.
func (a *Attributes) ApplyDeclared(opts DeclaredOptions) Declared {
	d := SelectDeclared(a, opts)
	a.Declared = &d

	return d
}

// declaredHolders keeps the codebase holder entries whose value occurs among
// key-file holders, then every entry tied at the highest count.
func declaredHolders(codebaseHolders, keyFileHolders []Entry) []Entry {
	inKeyFiles := make(map[Value]bool, len(keyFileHolders))
	for _, e := range keyFileHolders {
		if !e.Value.IsNull() {
			inKeyFiles[e.Value] = true
		}
	}

	out := []Entry{}
	maxCount := 0

	for _, e := range codebaseHolders {
		if !inKeyFiles[e.Value] {
			continue
		}

		switch {
		case e.Count > maxCount:
			maxCount = e.Count
			out = append(out[:0], e)
		case e.Count == maxCount:
			out = append(out, e)
		}
	}

	return out
}

// topEntry returns the non-null entry with the highest count, ties broken by
// lexical order of the value, or nil when there is none.
func topEntry(entries []Entry) *Entry {
	var best *Entry

	for i := range entries {
		e := entries[i]
		if e.Value.IsNull() {
			continue
		}

		if best == nil || e.Count > best.Count ||
			(e.Count == best.Count && cmp.Less(e.Value.Text(), best.Value.Text())) {
			best = &e
		}
	}

	return best
}

func withoutValue(entries []Entry, v Value) []Entry {
	out := make([]Entry, 0, len(entries))

	for _, e := range entries {
		if e.Value != v {
			out = append(out, e)
		}
	}

	return out
}
