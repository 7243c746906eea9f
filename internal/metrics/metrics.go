// Package metrics records fit outcomes as Prometheus metrics and writes them
// in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gsfit"

// Fit outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors of a single run on a private registry, so
// that repeated runs in one process never collide on registration.
type Metrics struct {
	registry   *prometheus.Registry
	fits       *prometheus.CounterVec
	duration   prometheus.Histogram
	iterations prometheus.Histogram
	rSquared   prometheus.Gauge
	rmse       prometheus.Gauge
	points     prometheus.Gauge
	heapAlloc  prometheus.Gauge
	systemCPU  prometheus.Gauge
	systemMem  prometheus.Gauge
}

// New creates a Metrics with the Go runtime collector registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "Number of fits attempted, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall-clock duration of the minimisation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_iterations",
			Help:      "Levenberg-Marquardt iterations per fit.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		rSquared: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_rsquared",
			Help:      "Coefficient of determination of the last successful fit.",
		}),
		rmse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_rmse",
			Help:      "Root mean squared error of the last successful fit.",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_num_points",
			Help:      "Number of observations in the last fit.",
		}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Heap bytes in use when the run finished.",
		}),
		systemCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_cpu_percent",
			Help:      "Host CPU usage when the run finished.",
		}),
		systemMem: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_memory_percent",
			Help:      "Host memory usage when the run finished.",
		}),
	}
	m.registry.MustRegister(
		m.fits, m.duration, m.iterations,
		m.rSquared, m.rmse, m.points,
		m.heapAlloc, m.systemCPU, m.systemMem,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFit records one minimisation attempt.
func (m *Metrics) ObserveFit(outcome string, elapsed time.Duration, iterations int) {
	m.fits.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.iterations.Observe(float64(iterations))
	}
}

// ObserveStatistics records the goodness of fit of a successful run.
func (m *Metrics) ObserveStatistics(rSquared, rmse float64, numPoints int) {
	m.rSquared.Set(rSquared)
	m.rmse.Set(rmse)
	m.points.Set(float64(numPoints))
}

// ObserveMemory records a memory snapshot.
func (m *Metrics) ObserveMemory(s MemorySnapshot) {
	m.heapAlloc.Set(float64(s.HeapAlloc))
}

// ObserveSystem records a host usage snapshot.
func (m *Metrics) ObserveSystem(s SystemSnapshot) {
	m.systemCPU.Set(s.CPUPercent)
	m.systemMem.Set(s.MemPercent)
}

// WriteTextfile writes every gathered metric to path, replacing the file
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
