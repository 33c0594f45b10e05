package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"procwatch/internal/detector"
	"procwatch/internal/rules"
	"procwatch/pkg/models"
)

type stubSource struct {
	mu    sync.Mutex
	ticks [][]*models.ProcessSnapshot
	call  int
}

func (s *stubSource) Snapshot(ctx context.Context) ([]*models.ProcessSnapshot, []int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.call
	if idx >= len(s.ticks) {
		idx = len(s.ticks) - 1
	}
	s.call++

	snaps := s.ticks[idx]
	pids := make([]int32, 0, len(snaps))
	for _, snap := range snaps {
		pids = append(pids, snap.Info.PID)
	}
	return snaps, pids, nil
}

type captureSink struct {
	mu      sync.Mutex
	alerts  []models.Alert
	closed  bool
	written chan struct{}
}

func newCaptureSink() *captureSink {
	return &captureSink{written: make(chan struct{}, 64)}
}

func (c *captureSink) WriteAlerts(alerts []models.Alert) error {
	c.mu.Lock()
	c.alerts = append(c.alerts, alerts...)
	c.mu.Unlock()
	c.written <- struct{}{}
	return nil
}

func (c *captureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func zombieSnapshot(pid int32, name string) *models.ProcessSnapshot {
	return &models.ProcessSnapshot{
		Info:  models.ProcessInfo{PID: pid, Name: name, Status: models.StatusZombie},
		Stats: models.ProcessStats{PID: pid},
	}
}

func TestTickRoutesAlertsToSinks(t *testing.T) {
	source := &stubSource{ticks: [][]*models.ProcessSnapshot{
		{zombieSnapshot(11, "defunct")},
	}}
	sink := newCaptureSink()
	det := detector.NewWithRules([]rules.Rule{{
		Name:        "Zombie Process",
		Description: "Process is in zombie state",
		Condition:   rules.Condition{Kind: rules.KindZombieState},
		Severity:    rules.SeverityWarning,
	}})
	m := NewMonitor(source, det, []AlertSink{sink}, time.Second)

	out := make(chan []models.Alert, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.sinkLoop(out)
	}()

	m.tick(context.Background(), out)
	close(out)
	wg.Wait()

	if len(sink.alerts) != 1 {
		t.Fatalf("expected 1 alert at the sink, got %d", len(sink.alerts))
	}
	if sink.alerts[0].RuleName != "Zombie Process" || sink.alerts[0].PID != 11 {
		t.Fatalf("unexpected alert: %+v", sink.alerts[0])
	}
}

func TestRunStopsOnContextCancelAndCloseReleasesSinks(t *testing.T) {
	source := &stubSource{ticks: [][]*models.ProcessSnapshot{{}}}
	sink := newCaptureSink()
	m := NewMonitor(source, detector.New(), []AlertSink{sink}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("pipeline did not stop after cancel")
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("expected sink to be closed")
	}
}
