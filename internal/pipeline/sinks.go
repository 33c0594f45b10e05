package pipeline

import (
	"context"

	"procwatch/pkg/models"
)

// Source produces one snapshot per live process per pass plus the complete
// set of currently-live pids.
type Source interface {
	Snapshot(ctx context.Context) ([]*models.ProcessSnapshot, []int32, error)
}

// AlertSink consumes emitted alerts.
type AlertSink interface {
	WriteAlerts(alerts []models.Alert) error
	Close() error
}
