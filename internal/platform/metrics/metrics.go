// Package metrics defines the Prometheus instrumentation for price sweeps.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SweepsTotal counts started price sweeps.
	SweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_sweeps_total",
		Help: "Total number of price sweeps started",
	})

	// PriceDropsTotal counts price drops applied to the database.
	PriceDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_drops_total",
		Help: "Total number of detected and persisted price drops",
	})

	// FetchFailuresTotal counts products skipped because their page fetch failed.
	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_fetch_failures_total",
		Help: "Total number of per-product fetch failures during sweeps",
	})

	// NotifyFailuresTotal counts drop alerts that could not be delivered.
	NotifyFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_notify_failures_total",
		Help: "Total number of failed drop notifications",
	})

	// SweepDuration observes how long full sweeps take.
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_sweep_duration_seconds",
		Help:    "Duration of full price sweeps in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(SweepsTotal)
	prometheus.MustRegister(PriceDropsTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(NotifyFailuresTotal)
	prometheus.MustRegister(SweepDuration)
}
