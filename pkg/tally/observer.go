package tally

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
)

// Observer is notified as a pass progresses. Implementations must not modify
// the resources or summaries they are handed.
type Observer interface {
	// Summarized is called after a resource's summary has been saved.
	Summarized(ctx context.Context, res *codebase.Resource, s Summary)
	// PassDone is called once when a pass ends, with the error that aborted it if any.
	PassDone(ctx context.Context, stats PassStats, err error)
}

// PassStats describes a finished pass.
type PassStats struct {
	Resources int
	Files     int
	Kinds     []Kind
	Packages  int
	Duration  time.Duration
}

// NopObserver ignores every event.
type NopObserver struct{}

// Summarized implements Observer.
func (NopObserver) Summarized(context.Context, *codebase.Resource, Summary) {}

// PassDone implements Observer.
func (NopObserver) PassDone(context.Context, PassStats, error) {}

// LogObserver logs pass events to a structured logger: each resource at
// debug level, the pass outcome at info or error level.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns a LogObserver writing to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

// Summarized implements Observer.
func (o *LogObserver) Summarized(ctx context.Context, res *codebase.Resource, s Summary) {
	if !o.Logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := make([]any, 0, 2*len(s.Tallies)+4) //nolint:mnd // key/value pairs.
	attrs = append(attrs, "path", res.Path, "file", res.IsFile)

	for _, k := range s.Tallies.Kinds() {
		attrs = append(attrs, string(k), len(s.Tallies[k]))
	}

	if len(s.Packages) > 0 {
		attrs = append(attrs, string(KindPackages), len(s.Packages))
	}

	o.Logger.DebugContext(ctx, "tally: summarized resource", attrs...)
}

// PassDone implements Observer.
func (o *LogObserver) PassDone(ctx context.Context, stats PassStats, err error) {
	if err != nil {
		o.Logger.ErrorContext(ctx, "tally: pass failed",
			"resources", stats.Resources, "duration", stats.Duration, "error", err)

		return
	}

	o.Logger.InfoContext(ctx, "tally: pass complete",
		"resources", stats.Resources,
		"files", stats.Files,
		"kinds", stats.Kinds,
		"packages", stats.Packages,
		"duration", stats.Duration,
	)
}
