package pipeline

import (
	"context"
	"sync"
	"time"

	"procwatch/internal/detector"
	"procwatch/internal/logger"
	"procwatch/pkg/models"
)

// Monitor drives the sample-evaluate-emit loop. Each tick samples the process
// table, runs every rule against each snapshot (one process fully evaluated
// before the next), garbage-collects detector state for dead processes, and
// hands the tick's alerts to the sinks over a channel. Sinks never block the
// sampling path beyond the channel capacity.
type Monitor struct {
	source   Source
	detector *detector.Detector
	sinks    []AlertSink
	interval time.Duration
}

// NewMonitor creates a monitor pipeline.
func NewMonitor(source Source, det *detector.Detector, sinks []AlertSink, interval time.Duration) *Monitor {
	return &Monitor{
		source:   source,
		detector: det,
		sinks:    sinks,
		interval: interval,
	}
}

// Run starts the tick loop and blocks until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		m.interval = time.Second
	}

	logger.Infof("Monitor pipeline started (interval %s, %d rules)", m.interval, len(m.detector.Rules()))

	alertCh := make(chan []models.Alert, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.sinkLoop(alertCh)
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(alertCh)
			wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx, alertCh)
		}
	}
}

// Close releases the sinks.
func (m *Monitor) Close() error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			logger.Errorf("Failed to close alert sink: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Monitor) tick(ctx context.Context, out chan<- []models.Alert) {
	start := time.Now()

	snapshots, pids, err := m.source.Snapshot(ctx)
	if err != nil {
		logger.Errorf("Failed to sample processes: %v", err)
		return
	}

	var alerts []models.Alert
	for _, snap := range snapshots {
		alerts = append(alerts, m.detector.CheckProcess(snap)...)
	}
	m.detector.CleanupDeadProcesses(pids)

	snapshotsProcessed.Add(float64(len(snapshots)))
	trackedProcesses.Set(float64(len(pids)))
	for _, alert := range alerts {
		alertsEmitted.WithLabelValues(alert.Severity).Inc()
	}
	tickDuration.Observe(time.Since(start).Seconds())

	if len(alerts) == 0 {
		return
	}
	for _, alert := range alerts {
		logger.Warnf("Alert [%s] %s: pid=%d %s: %s",
			alert.Severity, alert.RuleName, alert.PID, alert.ProcessName, alert.Details)
	}
	out <- alerts
}

func (m *Monitor) sinkLoop(in <-chan []models.Alert) {
	for alerts := range in {
		for _, sink := range m.sinks {
			if err := sink.WriteAlerts(alerts); err != nil {
				logger.Errorf("Failed to write alerts: %v", err)
			}
		}
	}
}
