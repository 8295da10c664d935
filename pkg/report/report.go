// Package report assembles finalized codebase attributes into a report and
// renders it as JSON, YAML or a terminal table.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/codetally/pkg/persist"
	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

// FormatTable selects the terminal table renderer.
const FormatTable = "table"

// ErrNoAttributes is returned when a report is built without attributes.
var ErrNoAttributes = errors.New("report: no codebase attributes")

// Tool identifies the program that produced a report.
type Tool struct {
	Name    string `json:"name"    yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

// Stats describes the pass a report was built from.
type Stats struct {
	Resources   int          `json:"resources"   yaml:"resources"`
	Files       int          `json:"files"       yaml:"files"`
	Directories int          `json:"directories" yaml:"directories"`
	Packages    int          `json:"packages"    yaml:"packages"`
	Kinds       []tally.Kind `json:"kinds"       yaml:"kinds"`
	DurationMS  int64        `json:"duration_ms" yaml:"duration_ms"`
}

// Report is the serializable result of a codetally run.
type Report struct {
	Tool       Tool              `json:"tool"       yaml:"tool"`
	Stats      Stats             `json:"stats"      yaml:"stats"`
	Attributes *tally.Attributes `json:"attributes" yaml:"attributes"`
	// Resources lists every resource's own tallies in a detailed report.
	Resources []tally.ResourceTallies `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// Build assembles a report from finalized attributes and pass statistics.
func Build(attrs *tally.Attributes, stats tally.PassStats, version string) (*Report, error) {
	if attrs == nil {
		return nil, ErrNoAttributes
	}

	return &Report{
		Tool: Tool{Name: "codetally", Version: version},
		Stats: Stats{
			Resources:   stats.Resources,
			Files:       stats.Files,
			Directories: stats.Resources - stats.Files,
			Packages:    stats.Packages,
			Kinds:       stats.Kinds,
			DurationMS:  stats.Duration.Milliseconds(),
		},
		Attributes: attrs,
	}, nil
}

// Write renders r to w in the named format: json, yaml or table.
func Write(w io.Writer, r *Report, format string, opts TableOptions) error {
	if format == FormatTable {
		return RenderTable(w, r, opts)
	}

	codec, err := persist.CodecFor(format)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	err = codec.Encode(w, r)
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", format, err)
	}

	return nil
}
