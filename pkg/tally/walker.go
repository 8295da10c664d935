package tally

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/observability"
)

const tracerName = "codetally"

// ErrSummarize wraps every failure that aborts a pass.
var ErrSummarize = errors.New("summarize")

// SummarizeError reports the resource, and the kind when known, whose
// summary could not be computed or saved.
type SummarizeError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *SummarizeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s %s: %v", ErrSummarize, e.Path, e.Err)
	}

	return fmt.Sprintf("%s %s [%s]: %v", ErrSummarize, e.Path, e.Kind, e.Err)
}

// Unwrap returns ErrSummarize and the cause.
func (e *SummarizeError) Unwrap() []error {
	return []error{ErrSummarize, e.Err}
}

// Options configure a Summarizer.
type Options struct {
	// Capabilities names the active kinds. Inactive kinds are skipped tree-wide.
	Capabilities Capabilities

	// Store receives every summary. When nil, a MemoryStore is used.
	Store Store

	// Observer sees pass progress. When nil, events are dropped.
	Observer Observer

	// Metrics records pass statistics. Nil-safe: when nil, nothing is recorded.
	Metrics *observability.TallyMetrics
}

// Summarizer runs bottom-up summarization passes over a codebase.
type Summarizer struct {
	caps     Capabilities
	store    Store
	observer Observer
	metrics  *observability.TallyMetrics
}

// NewSummarizer creates a Summarizer from opts.
func NewSummarizer(opts Options) *Summarizer {
	s := &Summarizer{
		caps:     opts.Capabilities,
		store:    opts.Store,
		observer: opts.Observer,
		metrics:  opts.Metrics,
	}

	if s.store == nil {
		s.store = NewMemoryStore()
	}

	if s.observer == nil {
		s.observer = NopObserver{}
	}

	return s
}

// Pass is the completed result of one summarization run: every resource's
// summary, held in the Store until Close.
type Pass struct {
	Codebase     *codebase.Codebase
	Capabilities Capabilities
	Stats        PassStats

	store Store
}

// Summary returns the summary computed for res.
func (p *Pass) Summary(res *codebase.Resource) (Summary, error) {
	return p.store.Load(res.ID)
}

// Close releases the pass store.
func (p *Pass) Close() error {
	return p.store.Close()
}

// Run visits every resource of cb once, descendants before ancestors,
// summarizes each active kind and saves the summary before moving on.
// Any failure aborts the pass; no partial result is returned.
func (s *Summarizer) Run(ctx context.Context, cb *codebase.Codebase) (*Pass, error) {
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "codetally.tally.pass",
		trace.WithAttributes(
			attribute.Int("tally.resources", cb.Len()),
			attribute.StringSlice("tally.kinds", kindNames(s.caps.kinds)),
		))
	defer span.End()

	stats := PassStats{Kinds: s.caps.Kinds()}

	err := cb.Walk(codebase.BottomUp, func(res *codebase.Resource) error {
		sum, walkErr := s.summarize(res)
		if walkErr != nil {
			return walkErr
		}

		stats.Resources++
		if res.IsFile {
			stats.Files++
		}

		s.observer.Summarized(ctx, res, sum)

		return nil
	})

	stats.Duration = time.Since(start)

	var root Summary
	if err == nil {
		root, err = s.store.Load(cb.Root().ID)
		if err != nil {
			err = &SummarizeError{Path: cb.Root().Path, Err: err}
		}
	}

	stats.Packages = len(root.Packages)

	s.record(ctx, stats, root, err)
	s.observer.PassDone(ctx, stats, err)

	span.SetAttributes(
		attribute.Int("tally.files", stats.Files),
		attribute.Int("tally.packages", stats.Packages),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarization pass failed")

		return nil, err
	}

	return &Pass{
		Codebase:     cb,
		Capabilities: s.caps,
		Stats:        stats,
		store:        s.store,
	}, nil
}

func (s *Summarizer) summarize(res *codebase.Resource) (Summary, error) {
	sum := Summary{Tallies: make(Tallies, len(s.caps.kinds))}

	var children []Summary

	for _, k := range s.caps.kinds {
		if children == nil {
			loaded, err := s.loadChildren(res)
			if err != nil {
				return Summary{}, &SummarizeError{Path: res.Path, Kind: k, Err: err}
			}

			children = loaded
		}

		if k == KindPackages {
			sum.Packages = SummarizePackages(res, children)

			continue
		}

		sum.Tallies[k] = SummarizeKind(res, children, k)
	}

	err := s.store.Save(res.ID, sum)
	if err != nil {
		return Summary{}, &SummarizeError{Path: res.Path, Err: err}
	}

	return sum, nil
}

func (s *Summarizer) loadChildren(res *codebase.Resource) ([]Summary, error) {
	children := make([]Summary, 0, len(res.Children()))

	for _, child := range res.Children() {
		sum, err := s.store.Load(child.ID)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", child.Path, err)
		}

		children = append(children, sum)
	}

	return children, nil
}

func (s *Summarizer) record(ctx context.Context, stats PassStats, root Summary, err error) {
	if s.metrics == nil {
		return
	}

	entries := make(map[string]int, len(root.Tallies))
	for k, e := range root.Tallies {
		entries[string(k)] = len(e)
	}

	s.metrics.RecordPass(ctx, observability.PassStats{
		Files:       stats.Files,
		Directories: stats.Resources - stats.Files,
		Entries:     entries,
		Packages:    stats.Packages,
		Duration:    stats.Duration,
		Failed:      err != nil,
	})
}

func kindNames(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}

	return out
}
