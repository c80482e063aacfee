package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsTotal counts calculation outcomes ("ok" or the error code
	// that rejected the request).
	CalculationsTotal *prometheus.CounterVec
	// CalculationDuration records end-to-end calculation latency in milliseconds.
	CalculationDuration prometheus.Histogram
	// EnrichmentDegradedTotal counts contained enrichment failures by kind
	// (tax, currency).
	EnrichmentDegradedTotal *prometheus.CounterVec
	// SnapshotReloadsTotal counts reference snapshot reload outcomes.
	SnapshotReloadsTotal *prometheus.CounterVec
	// SnapshotAgeSeconds exposes the age of the active reference snapshot.
	SnapshotAgeSeconds prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of shipping calculations by outcome.",
		}, []string{"result"})
		CalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_ms",
			Help:      "Latency of the calculation pipeline in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		EnrichmentDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_degraded_total",
			Help:      "Count of contained enrichment failures by kind.",
		}, []string{"kind"})
		SnapshotReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Count of reference snapshot reload outcomes.",
		}, []string{"result"})
		SnapshotAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_age_seconds",
			Help:      "Age of the active reference snapshot in seconds.",
		})

		mustRegisterCollector(reg, CalculationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculationsTotal = v
			}
		})
		mustRegisterCollector(reg, CalculationDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CalculationDuration = v
			}
		})
		mustRegisterCollector(reg, EnrichmentDegradedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EnrichmentDegradedTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotReloadsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotReloadsTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotAgeSeconds, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				SnapshotAgeSeconds = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
