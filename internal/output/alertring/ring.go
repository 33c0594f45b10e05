package alertring

import (
	"sync"

	"procwatch/pkg/models"
)

// Ring is an in-memory alert sink with bounded retention, for presentation
// layers that only care about recent alerts.
type Ring struct {
	mu       sync.Mutex
	capacity int
	alerts   []models.Alert
}

// NewRing creates a ring that keeps at most capacity alerts.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 100
	}
	return &Ring{capacity: capacity}
}

// WriteAlerts appends alerts, evicting the oldest beyond capacity.
func (r *Ring) WriteAlerts(alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = append(r.alerts, alerts...)
	if len(r.alerts) > r.capacity {
		r.alerts = r.alerts[len(r.alerts)-r.capacity:]
	}
	return nil
}

// Recent returns a copy of the retained alerts, oldest first.
func (r *Ring) Recent() []models.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Alert(nil), r.alerts...)
}

// Close implements the sink interface; nothing to release.
func (r *Ring) Close() error {
	return nil
}
