// Package metrics provides Prometheus metrics for conversion runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records engine and pipeline metrics in its own registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	commandsTotal      *prometheus.CounterVec
	commandDuration    *prometheus.HistogramVec
	stepDuration       *prometheus.HistogramVec
	volumes            prometheus.Gauge
	reflectingSurfaces prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cad_to_h5m_engine_commands_total",
				Help: "Total number of commands and queries sent to the modeling engine",
			},
			[]string{"verb", "status"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cad_to_h5m_engine_command_duration_seconds",
				Help:    "Time the modeling engine spent on each command",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"verb"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cad_to_h5m_step_duration_seconds",
				Help:    "Duration of each conversion step",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800},
			},
			[]string{"step"},
		),
		volumes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cad_to_h5m_volumes",
			Help: "Number of volumes tracked after import",
		}),
		reflectingSurfaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cad_to_h5m_reflecting_surfaces",
			Help: "Number of surfaces marked reflecting after reconciliation",
		}),
	}

	c.registry.MustRegister(
		c.commandsTotal,
		c.commandDuration,
		c.stepDuration,
		c.volumes,
		c.reflectingSurfaces,
	)
	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveCommand records one engine round trip
func (c *Collector) ObserveCommand(verb string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.commandsTotal.WithLabelValues(verb, status).Inc()
	c.commandDuration.WithLabelValues(verb).Observe(duration.Seconds())
}

// ObserveStep records the duration of a pipeline step
func (c *Collector) ObserveStep(step string, duration time.Duration) {
	if c == nil {
		return
	}
	c.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// SetVolumes records the number of tracked volumes
func (c *Collector) SetVolumes(n int) {
	if c == nil {
		return
	}
	c.volumes.Set(float64(n))
}

// SetReflectingSurfaces records the number of reflecting surfaces
func (c *Collector) SetReflectingSurfaces(n int) {
	if c == nil {
		return
	}
	c.reflectingSurfaces.Set(float64(n))
}

// WriteToTextfile writes the metrics in the text exposition format, suitable
// for the node exporter's textfile collector
func (c *Collector) WriteToTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
