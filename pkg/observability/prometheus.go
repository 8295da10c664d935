package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRegistry returns an empty Prometheus registry for Config.Registry.
// Each call is independent to avoid collector conflicts.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// WriteMetricsFile writes every metric gathered from g to path in the
// Prometheus text format, atomically, for the node exporter textfile collector.
func WriteMetricsFile(path string, g prometheus.Gatherer) error {
	err := prometheus.WriteToTextfile(path, g)
	if err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}

	return nil
}
