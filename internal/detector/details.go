package detector

import (
	"fmt"

	"procwatch/internal/rules"
	"procwatch/pkg/models"
)

const (
	bytesPerGB = 1024.0 * 1024.0 * 1024.0
	bytesPerMB = 1024.0 * 1024.0
)

// violationDetails renders the observed value against the threshold for one
// condition. Memory in GB with two decimals, I/O rates in MB/s with two
// decimals, percentages with one.
func violationDetails(snap *models.ProcessSnapshot, c rules.Condition) string {
	switch c.Kind {
	case rules.KindCPUAbove:
		return fmt.Sprintf("CPU usage: %.1f%% (threshold: %.1f%%)",
			snap.Stats.CPUPercent, c.ThresholdPercent)
	case rules.KindMemoryAbove:
		return fmt.Sprintf("Memory usage: %.2f GB (threshold: %.2f GB)",
			float64(snap.Stats.MemoryBytes)/bytesPerGB,
			float64(c.ThresholdBytes)/bytesPerGB)
	case rules.KindMemoryPctAbove:
		return fmt.Sprintf("Memory usage: %.1f%% (threshold: %.1f%%)",
			snap.Stats.MemoryPercent, c.ThresholdPercent)
	case rules.KindDiskIOAbove:
		ioPerSec := snap.Stats.DiskIOBytes() / snap.Stats.RunSeconds()
		return fmt.Sprintf("Disk I/O: %.2f MB/s (threshold: %.2f MB/s)",
			float64(ioPerSec)/bytesPerMB,
			float64(c.ThresholdBytesPerSec)/bytesPerMB)
	case rules.KindNetIOAbove:
		netPerSec := snap.Stats.NetIOBytes() / snap.Stats.RunSeconds()
		return fmt.Sprintf("Network I/O: %.2f MB/s (threshold: %.2f MB/s)",
			float64(netPerSec)/bytesPerMB,
			float64(c.ThresholdBytesPerSec)/bytesPerMB)
	case rules.KindThreadCountAbove:
		return fmt.Sprintf("Threads: %d (threshold: %d)",
			snap.Stats.NumThreads, c.MaxThreads)
	case rules.KindZombieState:
		return "Process is in zombie state"
	case rules.KindDiskWriteAbove:
		writePerSec := snap.Stats.DiskWriteBytes / snap.Stats.RunSeconds()
		return fmt.Sprintf("Disk writes: %.2f MB/s (threshold: %.2f MB/s)",
			float64(writePerSec)/bytesPerMB,
			float64(c.ThresholdBytesPerSec)/bytesPerMB)
	default:
		return ""
	}
}
