package codebase

import "strings"

// topLevelDistance is the maximum distance from the lowest common parent at
// which a resource still counts as top-level.
const topLevelDistance = 2

var legalAffixes = []string{
	"copying",
	"copyright",
	"copyrights",
	"notice",
	"license",
	"licenses",
	"licence",
	"licences",
	"legal",
	"eula",
	"agreement",
	"copyleft",
	"licensing",
	"licencing",
	"patent",
	"patents",
}

var readmeAffixes = []string{"readme"}

// manifestSuffixes are matched against the lowercased path.
var manifestSuffixes = []string{
	".about",
	"/bower.json",
	"/project.clj",
	".podspec",
	"/composer.json",
	"/description",
	"/elm-package.json",
	"/+compact_manifest",
	"+manifest",
	".gemspec",
	"/metadata",
	"/build.gradle",
	".cabal",
	"/haxelib.json",
	".pom",
	"/pom.xml",
	"/package.json",
	".nuspec",
	".pod",
	"/meta.yml",
	"/dist.ini",
	"/pipfile",
	"/setup.cfg",
	"/setup.py",
	".spec",
	"/cargo.toml",
	".spdx",
	"/go.mod",
	"/debian/copyright",
	"/meta-inf/manifest.mf",
}

// Classify sets IsTopLevel on every resource and the legal, readme and
// manifest flags on every file, from names and paths alone.
func Classify(c *Codebase) {
	classify(c, nil)
}

// classify is Classify leaving the resources in keep untouched.
func classify(c *Codebase, keep map[*Resource]bool) {
	lcp := c.LowestCommonParent()
	base := lcp.Depth()

	//nolint:errcheck // the visitor never fails.
	_ = c.Walk(TopDown, func(res *Resource) error {
		if keep[res] {
			return nil
		}

		res.IsTopLevel = res.Depth()-base < topLevelDistance

		if res.IsFile {
			ClassifyFile(res)
		}

		return nil
	})
}

// ClassifyFile sets the legal, readme and manifest flags of one file.
func ClassifyFile(res *Resource) {
	name := strings.ToLower(res.Name)
	p := strings.ToLower(res.Path)

	res.IsLegal = hasAffix(name, legalAffixes)
	res.IsReadme = hasAffix(name, readmeAffixes)
	res.IsManifest = hasSuffix(p, manifestSuffixes)
}

func hasAffix(s string, affixes []string) bool {
	for _, a := range affixes {
		if strings.HasPrefix(s, a) || strings.HasSuffix(s, a) {
			return true
		}
	}

	return false
}

func hasSuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}

	return false
}
