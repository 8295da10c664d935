package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricPassesTotal    = "codetally.tally.passes.total"
	metricResourcesTotal = "codetally.tally.resources.total"
	metricEntriesTotal   = "codetally.tally.entries.total"
	metricPackagesTotal  = "codetally.tally.packages.total"
	metricPassDuration   = "codetally.tally.pass.duration.seconds"

	attrStatus       = "status"
	attrKind         = "kind"
	attrResourceType = "resource_type"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 10min, from small fixtures to
// codebases with millions of resources.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600}

// TallyMetrics holds the OTel instruments recorded by summarization passes.
type TallyMetrics struct {
	passesTotal    metric.Int64Counter
	resourcesTotal metric.Int64Counter
	entriesTotal   metric.Int64Counter
	packagesTotal  metric.Int64Counter
	passDuration   metric.Float64Histogram
}

// PassStats holds the statistics of one pass, decoupled from tally types.
type PassStats struct {
	Files       int
	Directories int
	// Entries counts the ranked entries of the root summary per kind name.
	Entries  map[string]int
	Packages int
	Duration time.Duration
	Failed   bool
}

// NewTallyMetrics creates tally metric instruments from the given meter.
func NewTallyMetrics(mt metric.Meter) (*TallyMetrics, error) {
	passes, err := mt.Int64Counter(metricPassesTotal,
		metric.WithDescription("Summarization passes by outcome"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPassesTotal, err)
	}

	resources, err := mt.Int64Counter(metricResourcesTotal,
		metric.WithDescription("Resources summarized by type"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricResourcesTotal, err)
	}

	entries, err := mt.Int64Counter(metricEntriesTotal,
		metric.WithDescription("Distinct ranked entries of the codebase summary by kind"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEntriesTotal, err)
	}

	packages, err := mt.Int64Counter(metricPackagesTotal,
		metric.WithDescription("Package records collected"),
		metric.WithUnit("{package}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPackagesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricPassDuration,
		metric.WithDescription("Summarization pass duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPassDuration, err)
	}

	return &TallyMetrics{
		passesTotal:    passes,
		resourcesTotal: resources,
		entriesTotal:   entries,
		packagesTotal:  packages,
		passDuration:   duration,
	}, nil
}

// RecordPass records the statistics of a finished pass.
// Safe to call on a nil receiver (no-op).
func (tm *TallyMetrics) RecordPass(ctx context.Context, stats PassStats) {
	if tm == nil {
		return
	}

	status := statusOK
	if stats.Failed {
		status = statusError
	}

	tm.passesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	tm.passDuration.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(attribute.String(attrStatus, status)))

	tm.resourcesTotal.Add(ctx, int64(stats.Files), metric.WithAttributes(attribute.String(attrResourceType, "file")))
	tm.resourcesTotal.Add(ctx, int64(stats.Directories),
		metric.WithAttributes(attribute.String(attrResourceType, "directory")))

	for kind, n := range stats.Entries {
		tm.entriesTotal.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrKind, kind)))
	}

	tm.packagesTotal.Add(ctx, int64(stats.Packages))
}
