package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry returns a private registry carrying the process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}

// Factory creates metrics registered with one registry.
type Factory = promauto.Factory

func With(registry *prometheus.Registry) Factory {
	return promauto.With(registry)
}

// WriteTextfile writes all metrics of the registry to path in the text exposition format,
// for pickup by the node-exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string, registry *prometheus.Registry) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
