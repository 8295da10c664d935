package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codetally/pkg/config"
	"github.com/Sumatoshi-tech/codetally/pkg/facet"
	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "codetally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Empty(t, cfg.Tally.Kinds)
	assert.True(t, cfg.Tally.KeyFiles)
	assert.True(t, cfg.Tally.ByFacet)
	assert.False(t, cfg.Tally.Classify)
	assert.False(t, cfg.Tally.WithDetails)
	assert.Equal(t, facet.Known, cfg.Facets.Known)
	assert.Empty(t, cfg.Facets.Rules)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, config.DefaultStoreMaxEntries, cfg.Store.MaxEntries)
	assert.Equal(t, config.FormatJSON, cfg.Output.Format)
	assert.Equal(t, config.DefaultOutputTop, cfg.Output.Top)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.Telemetry.MetricsFile)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
tally:
  kinds: [license_expressions, holders]
  by_facet: false
  declared_license: apache-2.0
  with_details: true
facets:
  rules:
    - tests=**/*_test.go
    - docs=docs
store:
  backend: spill
  max_entries: 100
  directory: /var/tmp/codetally
ignore:
  - vendor/
  - "*.min.js"
output:
  format: table
  top: 3
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: localhost:4317
  otlp_headers: "x-token=abc"
  insecure: true
  metrics_file: /tmp/codetally.prom
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"license_expressions", "holders"}, cfg.Tally.Kinds)
	assert.False(t, cfg.Tally.ByFacet)
	assert.True(t, cfg.Tally.KeyFiles)
	assert.Equal(t, "apache-2.0", cfg.Tally.DeclaredLicense)
	assert.True(t, cfg.Tally.WithDetails)
	assert.Equal(t, []string{"tests=**/*_test.go", "docs=docs"}, cfg.Facets.Rules)
	assert.Equal(t, config.StoreConfig{Backend: config.BackendSpill, MaxEntries: 100, Directory: "/var/tmp/codetally"},
		cfg.Store)
	assert.Equal(t, []string{"vendor/", "*.min.js"}, cfg.Ignore)
	assert.Equal(t, config.OutputConfig{Format: config.FormatTable, Top: 3}, cfg.Output)

	caps, set, err := cfg.Capabilities()
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, []tally.Kind{tally.KindLicenseExpressions, tally.KindHolders}, caps.Kinds())

	obs := cfg.Observability("1.0.0")
	assert.Equal(t, "1.0.0", obs.ServiceVersion)
	assert.Equal(t, "localhost:4317", obs.OTLPEndpoint)
	assert.Equal(t, map[string]string{"x-token": "abc"}, obs.OTLPHeaders)
	assert.True(t, obs.OTLPInsecure)
	assert.True(t, obs.LogJSON)
	assert.Equal(t, slog.LevelDebug, obs.LogLevel)
	assert.NotNil(t, obs.Registry)
}

func TestCapabilitiesUnset(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	_, set, err := cfg.Capabilities()
	require.NoError(t, err)
	assert.False(t, set)
	assert.Nil(t, cfg.Observability("").Registry)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown kind", "tally:\n  kinds: [emails]\n", config.ErrInvalidKind},
		{"empty facet set", "facets:\n  known: []\n", config.ErrInvalidFacets},
		{"rule with unknown facet", "facets:\n  rules: [vendored=vendor]\n", config.ErrInvalidFacets},
		{"bad backend", "store:\n  backend: redis\n", config.ErrInvalidBackend},
		{"spill without capacity", "store:\n  backend: spill\n  max_entries: 0\n", config.ErrInvalidMaxEntries},
		{"bad output format", "output:\n  format: xml\n", config.ErrInvalidOutputFormat},
		{"negative top", "output:\n  top: -1\n", config.ErrInvalidTop},
		{"bad log level", "logging:\n  level: loud\n", config.ErrInvalidLogLevel},
		{"bad log format", "logging:\n  format: xml\n", config.ErrInvalidLogFormat},
		{"bad sample ratio", "telemetry:\n  sample_ratio: 2\n", config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfigRuleErrorWrapsFacetError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "facets:\n  rules: [vendored=vendor]\n"))
	require.ErrorIs(t, err, facet.ErrUnknownFacet)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CODETALLY_STORE_BACKEND", "spill")
	t.Setenv("CODETALLY_OUTPUT_FORMAT", "yaml")
	t.Setenv("CODETALLY_TALLY_DECLARED_LICENSE", "mit")

	cfg, err := config.LoadConfig(writeConfig(t, "output:\n  format: table\n"))
	require.NoError(t, err)

	assert.Equal(t, config.BackendSpill, cfg.Store.Backend)
	assert.Equal(t, config.FormatYAML, cfg.Output.Format)
	assert.Equal(t, "mit", cfg.Tally.DeclaredLicense)
}
