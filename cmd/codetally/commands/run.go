package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/config"
	"github.com/Sumatoshi-tech/codetally/pkg/facet"
	"github.com/Sumatoshi-tech/codetally/pkg/observability"
	"github.com/Sumatoshi-tech/codetally/pkg/report"
	"github.com/Sumatoshi-tech/codetally/pkg/tally"
	"github.com/Sumatoshi-tech/codetally/pkg/version"
)

// ErrNoKinds is returned when neither the scan nor the configuration names a kind.
var ErrNoKinds = errors.New("no tally kinds: the scan carries no detections and none were configured")

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath      string
	format          string
	top             int
	kinds           []string
	ignore          []string
	facetRules      []string
	declaredLicense string
	store           string
	metricsFile     string
	classify        bool
	noKeyFiles      bool
	noFacets        bool
	withDetails     bool
	verbose         bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run <scan.json|->",
		Short: "Summarize a scan and print the codebase report",
		Long: `Summarize a file scan bottom-up and print the codebase attributes.

Every directory receives ranked tallies of the license expressions, copyrights,
holders, authors and programming languages found below it. The codebase report
adds the key-files and per-facet rollups and the declared selections.

Examples:
  codetally run scan.json
  codetally run --format table --top 5 scan.json
  codetally run --with-details scan.json
  codetally run --kinds license_expressions,holders --facet tests=**/test/** - < scan.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.Run(cmd, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&rc.configPath, "config", "c", "", "path to codetally.yaml (default: search . ./config /etc/codetally)")
	flags.StringVarP(&rc.format, "format", "f", "", "output format: json, yaml or table")
	flags.IntVar(&rc.top, "top", -1, "entries per kind in table output, 0 for all")
	flags.StringSliceVarP(&rc.kinds, "kinds", "k", nil, "kinds to tally (default: kinds present in the scan)")
	flags.StringSliceVar(&rc.ignore, "ignore", nil, "gitignore-style patterns of resources to skip")
	flags.StringArrayVar(&rc.facetRules, "facet", nil, "facet rule <facet>=<pattern>, repeatable")
	flags.StringVar(&rc.declaredLicense, "declared-license", "", "force the declared license expression")
	flags.StringVar(&rc.store, "store", "", "summary store backend: memory or spill")
	flags.StringVar(&rc.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.BoolVar(&rc.classify, "classify", false, "recompute key-file flags even when the scan carries them")
	flags.BoolVar(&rc.noKeyFiles, "no-key-files", false, "skip the key-files rollup")
	flags.BoolVar(&rc.noFacets, "no-facets", false, "skip the per-facet rollup")
	flags.BoolVar(&rc.withDetails, "with-details", false, "also report every file and directory's own tallies")
	flags.BoolVarP(&rc.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// Run executes the run command against the scan named by input.
func (rc *RunCommand) Run(cmd *cobra.Command, input string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlags(cfg)

	obsCfg := cfg.Observability(version.Version)
	if rc.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := rc.execute(ctx, cmd.InOrStdin(), input, cfg, providers)
	if err != nil {
		return err
	}

	err = report.Write(cmd.OutOrStdout(), r, cfg.Output.Format, report.TableOptions{Top: cfg.Output.Top})
	if err != nil {
		return err
	}

	if cfg.Telemetry.MetricsFile != "" {
		return observability.WriteMetricsFile(cfg.Telemetry.MetricsFile, obsCfg.Registry)
	}

	return nil
}

func (rc *RunCommand) applyFlags(cfg *config.Config) {
	if rc.format != "" {
		cfg.Output.Format = rc.format
	}

	if rc.top >= 0 {
		cfg.Output.Top = rc.top
	}

	if len(rc.kinds) > 0 {
		cfg.Tally.Kinds = rc.kinds
	}

	cfg.Ignore = append(cfg.Ignore, rc.ignore...)
	cfg.Facets.Rules = append(cfg.Facets.Rules, rc.facetRules...)

	if rc.declaredLicense != "" {
		cfg.Tally.DeclaredLicense = rc.declaredLicense
	}

	if rc.store != "" {
		cfg.Store.Backend = rc.store
	}

	if rc.metricsFile != "" {
		cfg.Telemetry.MetricsFile = rc.metricsFile
	}

	cfg.Tally.Classify = cfg.Tally.Classify || rc.classify
	cfg.Tally.KeyFiles = cfg.Tally.KeyFiles && !rc.noKeyFiles
	cfg.Tally.ByFacet = cfg.Tally.ByFacet && !rc.noFacets
	cfg.Tally.WithDetails = cfg.Tally.WithDetails || rc.withDetails
}

func (rc *RunCommand) execute(
	ctx context.Context, stdin io.Reader, input string, cfg *config.Config, providers observability.Providers,
) (*report.Report, error) {
	logger := providers.Logger

	in, label, err := openInput(input, stdin)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	scan, err := codebase.Load(in, codebase.LoadOptions{
		Ignore:   codebase.NewIgnoreFilter(cfg.Ignore...),
		Classify: cfg.Tally.Classify,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", label, err)
	}

	logger.InfoContext(ctx, "scan loaded",
		"input", label, "resources", scan.Codebase.Len(), "kinds", scan.Kinds, "classified", scan.Classified)

	err = assignFacets(scan.Codebase, cfg.Facets)
	if err != nil {
		return nil, err
	}

	caps, err := capabilities(cfg, scan)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewTallyMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	pass, err := tally.NewSummarizer(tally.Options{
		Capabilities: caps,
		Store:        store,
		Observer:     tally.NewLogObserver(logger),
		Metrics:      metrics,
	}).Run(ctx, scan.Codebase)
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	defer func() {
		closeErr := pass.Close()
		if closeErr != nil {
			logger.WarnContext(ctx, "summary store close failed", "error", closeErr)
		}
	}()

	attrs, err := tally.Finalize(ctx, pass, tally.FinalizeOptions{
		KeyFiles:    cfg.Tally.KeyFiles,
		ByFacet:     cfg.Tally.ByFacet,
		KnownFacets: cfg.Facets.Known,
	})
	if err != nil {
		return nil, err
	}

	attrs.ApplyDeclared(tally.DeclaredOptions{LicenseExpression: cfg.Tally.DeclaredLicense})

	r, err := report.Build(attrs, pass.Stats, version.Version)
	if err != nil {
		return nil, err
	}

	if cfg.Tally.WithDetails {
		r.Resources, err = pass.ResourceTallies()
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// assignFacets tags untagged files from the configured rules, or with the
// default classifier when no rule is configured.
func assignFacets(cb *codebase.Codebase, fc config.FacetsConfig) error {
	var classifier facet.Classifier = facet.NewDefaultClassifier()

	if len(fc.Rules) > 0 {
		rules, err := facet.ParseRules(fc.Rules, fc.Known)
		if err != nil {
			return fmt.Errorf("facet rules: %w", err)
		}

		classifier = rules
	}

	facet.Assign(cb, classifier, facet.FillMissing)

	return nil
}

func capabilities(cfg *config.Config, scan *codebase.Scan) (tally.Capabilities, error) {
	caps, set, err := cfg.Capabilities()
	if err != nil {
		return tally.Capabilities{}, err
	}

	if !set {
		caps, err = tally.ParseCapabilities(scan.Kinds)
		if err != nil {
			return tally.Capabilities{}, fmt.Errorf("scan kinds: %w", err)
		}
	}

	if len(caps.Kinds()) == 0 {
		return tally.Capabilities{}, ErrNoKinds
	}

	return caps, nil
}

func newStore(sc config.StoreConfig) (tally.Store, error) {
	switch sc.Backend {
	case config.BackendMemory:
		return tally.NewMemoryStore(), nil
	case config.BackendSpill:
		store, err := tally.NewSpillStore(sc.MaxEntries, sc.Directory)
		if err != nil {
			return nil, fmt.Errorf("spill store: %w", err)
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, sc.Backend)
	}
}
