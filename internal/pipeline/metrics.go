package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "procwatch_snapshots_processed_total",
		Help: "Process snapshots evaluated against the rule set",
	})

	alertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procwatch_alerts_emitted_total",
		Help: "Alerts emitted by the misbehavior detector",
	}, []string{"severity"})

	trackedProcesses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "procwatch_live_processes",
		Help: "Live processes seen in the latest sampling pass",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "procwatch_tick_duration_seconds",
		Help:    "Time to sample and evaluate one full pass",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)
