package collector

import (
	"context"
	"os"
	"testing"

	"github.com/shirou/gopsutil/v4/process"

	"procwatch/pkg/models"
)

func TestStatusMapping(t *testing.T) {
	cases := map[string]models.ProcessStatus{
		process.Running: models.StatusRunning,
		process.Sleep:   models.StatusSleeping,
		process.Idle:    models.StatusSleeping,
		process.Wait:    models.StatusSleeping,
		process.Stop:    models.StatusStopped,
		process.Zombie:  models.StatusZombie,
		"":              models.StatusUnknown,
		"lock":          models.StatusUnknown,
	}
	for raw, want := range cases {
		if got := statusFromGopsutil(raw); got != want {
			t.Fatalf("status %q: expected %s, got %s", raw, want, got)
		}
	}
}

func TestSnapshotIncludesSelf(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx)
	if err != nil {
		t.Fatalf("create collector: %v", err)
	}

	snapshots, pids, err := c.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshots) == 0 || len(snapshots) != len(pids) {
		t.Fatalf("expected matching snapshot and pid counts, got %d/%d", len(snapshots), len(pids))
	}

	self := int32(os.Getpid())
	var found *models.ProcessSnapshot
	for _, snap := range snapshots {
		if snap.Info.PID == self {
			found = snap
			break
		}
	}
	if found == nil {
		t.Fatalf("expected own pid %d in the snapshot set", self)
	}
	if found.Info.Name == "" {
		t.Fatalf("expected a process name for own pid")
	}
	if found.Timestamp.IsZero() {
		t.Fatalf("expected a snapshot timestamp")
	}
}
