package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"procwatch/pkg/models"
)

// Collector samples the OS process table and produces one immutable snapshot
// per live process per pass, plus the live pid set. The detection engine never
// gathers metrics itself; everything it sees comes from here.
type Collector struct {
	totalMemory uint64
}

// New creates a collector. Total host memory is read once; it only changes
// across reboots.
func New(ctx context.Context) (*Collector, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read host memory: %w", err)
	}
	return &Collector{totalMemory: vm.Total}, nil
}

// Snapshot samples every live process. Individual processes that vanish or
// deny access mid-pass are skipped; per-field read failures degrade to zero
// values the same way the snapshot consumer tolerates them.
func (c *Collector) Snapshot(ctx context.Context) ([]*models.ProcessSnapshot, []int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list processes: %w", err)
	}

	now := time.Now().UTC()
	snapshots := make([]*models.ProcessSnapshot, 0, len(procs))
	pids := make([]int32, 0, len(procs))

	for _, p := range procs {
		snap := c.snapshotProcess(ctx, p, now)
		if snap == nil {
			continue
		}
		snapshots = append(snapshots, snap)
		pids = append(pids, snap.Info.PID)
	}

	return snapshots, pids, nil
}

func (c *Collector) snapshotProcess(ctx context.Context, p *process.Process, now time.Time) *models.ProcessSnapshot {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		// Process exited between the listing and this read.
		return nil
	}

	info := models.ProcessInfo{
		PID:    p.Pid,
		Name:   name,
		Status: models.StatusUnknown,
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		info.User = user
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		info.UID = uids[0]
	}
	if exe, err := p.ExeWithContext(ctx); err == nil {
		info.ExePath = exe
	}
	if cmdline, err := p.CmdlineSliceWithContext(ctx); err == nil {
		info.CommandLine = cmdline
	}
	if statuses, err := p.StatusWithContext(ctx); err == nil && len(statuses) > 0 {
		info.Status = statusFromGopsutil(statuses[0])
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		info.ParentPID = ppid
	}

	stats := models.ProcessStats{PID: p.Pid}
	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = pct
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		stats.MemoryBytes = mi.RSS
		stats.VirtualMemory = mi.VMS
		if c.totalMemory > 0 {
			stats.MemoryPercent = float64(mi.RSS) / float64(c.totalMemory) * 100
		}
	}
	if threads, err := p.NumThreadsWithContext(ctx); err == nil {
		stats.NumThreads = threads
	}
	if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
		stats.DiskReadBytes = io.ReadBytes
		stats.DiskWriteBytes = io.WriteBytes
	}
	// Per-process network counters are not available portably; reported as
	// zero, so net_io_above rules only fire where a platform supplies them.
	if createMs, err := p.CreateTimeWithContext(ctx); err == nil && createMs > 0 {
		start := time.UnixMilli(createMs).UTC()
		stats.StartTime = start
		if now.After(start) {
			stats.RunTime = now.Sub(start)
		}
	}

	return &models.ProcessSnapshot{
		Info:      info,
		Stats:     stats,
		Timestamp: now,
	}
}

func statusFromGopsutil(status string) models.ProcessStatus {
	switch status {
	case process.Running:
		return models.StatusRunning
	case process.Sleep, process.Idle, process.Wait:
		return models.StatusSleeping
	case process.Stop:
		return models.StatusStopped
	case process.Zombie:
		return models.StatusZombie
	default:
		return models.StatusUnknown
	}
}
