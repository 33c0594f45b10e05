package models

import "time"

// Alert records one rule firing for one process on one tick. The detector
// emits alerts and retains nothing; retention is the sink's problem.
type Alert struct {
	ID          string    `json:"alert_id"`
	PID         int32     `json:"pid"`
	ProcessName string    `json:"process_name"`
	RuleName    string    `json:"rule_name"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Details     string    `json:"details"`
}
