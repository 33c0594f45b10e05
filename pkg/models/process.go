package models

import "time"

// ProcessStatus is the scheduler state of a process.
type ProcessStatus string

const (
	StatusRunning  ProcessStatus = "running"
	StatusSleeping ProcessStatus = "sleeping"
	StatusStopped  ProcessStatus = "stopped"
	StatusZombie   ProcessStatus = "zombie"
	StatusDead     ProcessStatus = "dead"
	StatusUnknown  ProcessStatus = "unknown"
)

// ProcessInfo is the identity side of a sampled process.
type ProcessInfo struct {
	PID         int32         `json:"pid"`
	Name        string        `json:"name"`
	User        string        `json:"user"`
	UID         uint32        `json:"uid"`
	ExePath     string        `json:"exe_path,omitempty"`
	CommandLine []string      `json:"command_line,omitempty"`
	Status      ProcessStatus `json:"status"`
	ParentPID   int32         `json:"parent_pid,omitempty"`
}

// ProcessStats holds the resource counters of one sample. Byte counters are
// cumulative since process start; rates are derived from them, never sampled.
type ProcessStats struct {
	PID            int32         `json:"pid"`
	CPUPercent     float64       `json:"cpu_percent"`
	MemoryBytes    uint64        `json:"memory_bytes"`
	MemoryPercent  float64       `json:"memory_percent"`
	VirtualMemory  uint64        `json:"virtual_memory"`
	DiskReadBytes  uint64        `json:"disk_read_bytes"`
	DiskWriteBytes uint64        `json:"disk_write_bytes"`
	NetRxBytes     uint64        `json:"net_rx_bytes"`
	NetTxBytes     uint64        `json:"net_tx_bytes"`
	NumThreads     int32         `json:"num_threads"`
	StartTime      time.Time     `json:"start_time"`
	RunTime        time.Duration `json:"run_time"`
}

// ProcessSnapshot is one immutable point-in-time record of one process.
type ProcessSnapshot struct {
	Info      ProcessInfo  `json:"info"`
	Stats     ProcessStats `json:"stats"`
	Timestamp time.Time    `json:"timestamp"`
}

// RunSeconds returns the cumulative run time in whole seconds, floored at one
// so rate computations never divide by zero.
func (s *ProcessStats) RunSeconds() uint64 {
	secs := uint64(s.RunTime / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// DiskIOBytes returns total cumulative disk traffic.
func (s *ProcessStats) DiskIOBytes() uint64 {
	return s.DiskReadBytes + s.DiskWriteBytes
}

// NetIOBytes returns total cumulative network traffic.
func (s *ProcessStats) NetIOBytes() uint64 {
	return s.NetRxBytes + s.NetTxBytes
}
