// Package config provides configuration loading and validation for codetally.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/codetally/pkg/facet"
	"github.com/Sumatoshi-tech/codetally/pkg/observability"
	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

// Sentinel validation errors.
var (
	ErrInvalidKind         = errors.New("invalid tally kind")
	ErrInvalidFacets       = errors.New("invalid facet configuration")
	ErrInvalidBackend      = errors.New("invalid store backend")
	ErrInvalidMaxEntries   = errors.New("store max entries must be positive")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidTop          = errors.New("output top must not be negative")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be between 0 and 1")
)

const (
	configName = "codetally"
	envPrefix  = "CODETALLY"
)

// Config holds all configuration for codetally.
type Config struct {
	Tally     TallyConfig     `mapstructure:"tally"`
	Facets    FacetsConfig    `mapstructure:"facets"`
	Store     StoreConfig     `mapstructure:"store"`
	Ignore    []string        `mapstructure:"ignore"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TallyConfig selects the kinds and rollups of a run.
type TallyConfig struct {
	// Kinds restricts the active kinds. Empty means the kinds present in the scan.
	Kinds           []string `mapstructure:"kinds"`
	KeyFiles        bool     `mapstructure:"key_files"`
	ByFacet         bool     `mapstructure:"by_facet"`
	DeclaredLicense string   `mapstructure:"declared_license"`
	// Classify recomputes key-file flags even when the scan carries them.
	Classify bool `mapstructure:"classify"`
	// WithDetails adds every resource's own tallies to the report.
	WithDetails bool `mapstructure:"with_details"`
}

// FacetsConfig holds the facet set and assignment rules.
type FacetsConfig struct {
	Known []string `mapstructure:"known"`
	// Rules are "<facet>=<pattern>" definitions. Empty uses the default classifier.
	Rules []string `mapstructure:"rules"`
}

// StoreConfig holds summary store configuration.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	MaxEntries int    `mapstructure:"max_entries"`
	Directory  string `mapstructure:"directory"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig holds report rendering configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	// Top limits the entries printed per kind by the table renderer. Zero prints all.
	Top int `mapstructure:"top"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Insecure     bool    `mapstructure:"insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `mapstructure:"metrics_file"`
	Environment string `mapstructure:"environment"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/codetally")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values. Every key is registered so
// environment variables can override it.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("tally.kinds", []string{})
	viperCfg.SetDefault("tally.key_files", DefaultKeyFiles)
	viperCfg.SetDefault("tally.by_facet", DefaultByFacet)
	viperCfg.SetDefault("tally.declared_license", "")
	viperCfg.SetDefault("tally.classify", DefaultClassify)
	viperCfg.SetDefault("tally.with_details", DefaultWithDetails)

	viperCfg.SetDefault("facets.known", facet.Known)
	viperCfg.SetDefault("facets.rules", []string{})

	viperCfg.SetDefault("store.backend", DefaultStoreBackend)
	viperCfg.SetDefault("store.max_entries", DefaultStoreMaxEntries)
	viperCfg.SetDefault("store.directory", "")

	viperCfg.SetDefault("ignore", []string{})

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("output.format", DefaultOutputFormat)
	viperCfg.SetDefault("output.top", DefaultOutputTop)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.metrics_file", "")
	viperCfg.SetDefault("telemetry.environment", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	_, err := tally.ParseCapabilities(config.Tally.Kinds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKind, err)
	}

	err = validateFacets(config.Facets)
	if err != nil {
		return err
	}

	if !slices.Contains([]string{BackendMemory, BackendSpill}, config.Store.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, config.Store.Backend)
	}

	if config.Store.Backend == BackendSpill && config.Store.MaxEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxEntries, config.Store.MaxEntries)
	}

	if !slices.Contains([]string{FormatJSON, FormatYAML, FormatTable}, config.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, config.Output.Format)
	}

	if config.Output.Top < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTop, config.Output.Top)
	}

	_, err = observability.ParseLogLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, config.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}

func validateFacets(fc FacetsConfig) error {
	if len(fc.Known) == 0 {
		return fmt.Errorf("%w: known facet set is empty", ErrInvalidFacets)
	}

	for _, name := range fc.Known {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty facet name", ErrInvalidFacets)
		}
	}

	_, err := facet.ParseRules(fc.Rules, fc.Known)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFacets, err)
	}

	return nil
}

// Capabilities returns the configured kinds and whether any were configured.
func (c *Config) Capabilities() (tally.Capabilities, bool, error) {
	if len(c.Tally.Kinds) == 0 {
		return tally.Capabilities{}, false, nil
	}

	caps, err := tally.ParseCapabilities(c.Tally.Kinds)
	if err != nil {
		return tally.Capabilities{}, false, fmt.Errorf("%w: %w", ErrInvalidKind, err)
	}

	return caps, true, nil
}

// Observability maps the logging and telemetry sections onto an observability
// configuration for the given binary version.
func (c *Config) Observability(version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.Insecure
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.LogJSON = c.Logging.Format == LogFormatJSON

	level, err := observability.ParseLogLevel(c.Logging.Level)
	if err == nil {
		cfg.LogLevel = level
	}

	if c.Telemetry.MetricsFile != "" {
		cfg.Registry = observability.NewRegistry()
	}

	return cfg
}
