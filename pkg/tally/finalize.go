package tally

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/facet"
)

// FacetTallies is the rollup of the files carrying one facet.
type FacetTallies struct {
	Facet   string  `json:"facet"   yaml:"facet"`
	Tallies Tallies `json:"tallies" yaml:"tallies"`
}

// Attributes is the codebase-level record derived from a pass.
type Attributes struct {
	// Tallies is the root resource's summary.
	Tallies Tallies `json:"tallies" yaml:"tallies"`
	// Packages lists every package record of the codebase.
	Packages []codebase.Package `json:"packages,omitempty" yaml:"packages,omitempty"`
	// KeyFiles is the rollup over top-level legal, readme and manifest files.
	KeyFiles Tallies `json:"key_files,omitempty" yaml:"key_files,omitempty"`
	// ByFacet holds one rollup per known facet, in facet order.
	ByFacet []FacetTallies `json:"by_facet,omitempty" yaml:"by_facet,omitempty"`
	// Declared holds the declared and primary selections once applied.
	Declared *Declared `json:"declared,omitempty" yaml:"declared,omitempty"`

	// keyFiles is the key-files rollup computed by Finalize even when it is
	// not reported, so declared selection never depends on FinalizeOptions.
	keyFiles Tallies
}

// keyFileSource returns the reported key-files rollup, else the one kept by
// Finalize.
func (a *Attributes) keyFileSource() Tallies {
	if a.KeyFiles != nil {
		return a.KeyFiles
	}

	return a.keyFiles
}

// RootTallies returns a copy of the root summary as codebase attributes.
func (p *Pass) RootTallies() (*Attributes, error) {
	root, err := p.Summary(p.Codebase.Root())
	if err != nil {
		return nil, fmt.Errorf("root rollup: %w", err)
	}

	root = root.Clone()

	return &Attributes{Tallies: root.Tallies, Packages: root.Packages}, nil
}

// ResourceTallies lists every resource's own summary, parents before their
// children in child order.
func (p *Pass) ResourceTallies() ([]ResourceTallies, error) {
	out := make([]ResourceTallies, 0, p.Codebase.Len())

	err := p.Codebase.Walk(codebase.TopDown, func(res *codebase.Resource) error {
		s, err := p.Summary(res)
		if err != nil {
			return fmt.Errorf("resource details: %s: %w", res.Path, err)
		}

		s = s.Clone()
		out = append(out, ResourceTallies{
			Path:     res.Path,
			Type:     res.Ref().Type,
			Tallies:  s.Tallies,
			Packages: s.Packages,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// KeyFileTallies ranks the values of the key files only: top-level files
// flagged legal, readme or manifest. Packages are not included.
func (p *Pass) KeyFileTallies() (Tallies, error) {
	var selected []Summary

	for _, res := range p.Codebase.Files() {
		if !res.IsKeyFile() {
			continue
		}

		s, err := p.Summary(res)
		if err != nil {
			return nil, fmt.Errorf("key files rollup: %s: %w", res.Path, err)
		}

		selected = append(selected, s)
	}

	return rollup(selected, p.Capabilities.RankedKinds()), nil
}

// FacetTallies ranks the values of the files carrying each known facet, one
// record per facet in the order of known. A file facet outside known is a
// configuration error that aborts the rollup.
func (p *Pass) FacetTallies(known []string) ([]FacetTallies, error) {
	files := p.Codebase.Files()
	groups := make(map[string][]Summary, len(known))

	for _, res := range files {
		err := facet.Check(res, known)
		if err != nil {
			return nil, fmt.Errorf("facet rollup: %w", err)
		}

		if len(res.Facets) == 0 {
			continue
		}

		s, err := p.Summary(res)
		if err != nil {
			return nil, fmt.Errorf("facet rollup: %s: %w", res.Path, err)
		}

		for _, f := range res.Facets {
			groups[f] = append(groups[f], s)
		}
	}

	kinds := p.Capabilities.RankedKinds()
	out := make([]FacetTallies, 0, len(known))

	for _, f := range known {
		out = append(out, FacetTallies{Facet: f, Tallies: rollup(groups[f], kinds)})
	}

	return out, nil
}

// FinalizeOptions select the secondary rollups of Finalize.
type FinalizeOptions struct {
	// KeyFiles enables the key-files rollup.
	KeyFiles bool
	// ByFacet enables the per-facet rollup over KnownFacets.
	ByFacet bool
	// KnownFacets is the declared facet set. Defaults to facet.Known.
	KnownFacets []string
}

// Finalize builds the codebase attributes from a completed pass: the root
// rollup, then the enabled key-files and per-facet rollups.
func Finalize(ctx context.Context, p *Pass, opts FinalizeOptions) (*Attributes, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "codetally.tally.finalize",
		trace.WithAttributes(
			attribute.Bool("tally.key_files", opts.KeyFiles),
			attribute.Bool("tally.by_facet", opts.ByFacet),
		))
	defer span.End()

	attrs, err := finalize(p, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finalize failed")

		return nil, err
	}

	return attrs, nil
}

func finalize(p *Pass, opts FinalizeOptions) (*Attributes, error) {
	attrs, err := p.RootTallies()
	if err != nil {
		return nil, err
	}

	attrs.keyFiles, err = p.KeyFileTallies()
	if err != nil {
		return nil, err
	}

	if opts.KeyFiles {
		attrs.KeyFiles = attrs.keyFiles
	}

	if opts.ByFacet {
		known := opts.KnownFacets
		if len(known) == 0 {
			known = facet.Known
		}

		attrs.ByFacet, err = p.FacetTallies(known)
		if err != nil {
			return nil, err
		}
	}

	return attrs, nil
}
