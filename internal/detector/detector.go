package detector

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"procwatch/internal/rules"
	"procwatch/pkg/models"
)

// Detector evaluates misbehavior rules against per-process snapshots and
// decides, from accumulated violation timestamps alone, whether a condition
// has held continuously long enough to alert.
//
// Duration-bearing rules record one violation per tick the condition is
// observed true and fire on the first tick where now minus the earliest
// retained violation reaches the rule's duration. A false observation breaks
// the streak and the window restarts from zero. There is no separately stored
// "since" timestamp and no debounce: every tick the retained window still
// satisfies the duration, a fresh alert is emitted. A duration shorter than
// the sampling interval degenerates to an instantaneous check, since a single
// sample then spans the whole window on its own.
//
// Violations for all rules of one process share a single record sequence.
// Each rule's pruning pass retains only its own records inside its own
// cutoff, so evaluating one duration rule discards every other rule's records
// from the sequence. Two duration rules violating on the same ticks therefore
// reset each other every pass and neither accumulates a span. A regression
// test pins this; keying by (pid, rule) would change observable timing.
type Detector struct {
	rulesMu sync.RWMutex
	rules   []rules.Rule

	historyMu sync.Mutex
	history   map[int32][]violationRecord

	now func() time.Time
}

type violationRecord struct {
	ruleName  string
	timestamp time.Time
}

// New creates a detector with the default rule set.
func New() *Detector {
	return NewWithRules(rules.DefaultRules())
}

// NewWithRules creates a detector with an explicit rule set.
func NewWithRules(rs []rules.Rule) *Detector {
	return &Detector{
		rules:   append([]rules.Rule(nil), rs...),
		history: make(map[int32][]violationRecord),
		now:     time.Now,
	}
}

// AddRule appends a rule to the set. Existing rules are never replaced or
// deduplicated.
func (d *Detector) AddRule(r rules.Rule) {
	d.rulesMu.Lock()
	d.rules = append(d.rules, r)
	d.rulesMu.Unlock()
}

// Rules returns a copy of the current rule set.
func (d *Detector) Rules() []rules.Rule {
	d.rulesMu.RLock()
	defer d.rulesMu.RUnlock()
	return append([]rules.Rule(nil), d.rules...)
}

// CheckProcess evaluates every rule against one snapshot and returns the
// alerts that fired. All rules see the same snapshot before any other process
// is considered; history for the snapshot's pid is mutated under one lock for
// the whole pass.
func (d *Detector) CheckProcess(snap *models.ProcessSnapshot) []models.Alert {
	ruleSet := d.Rules()
	now := d.now()

	d.historyMu.Lock()
	defer d.historyMu.Unlock()

	var alerts []models.Alert
	for _, rule := range ruleSet {
		if !d.checkRule(snap, rule, now) {
			continue
		}
		alerts = append(alerts, models.Alert{
			ID:          uuid.NewString(),
			PID:         snap.Info.PID,
			ProcessName: snap.Info.Name,
			RuleName:    rule.Name,
			Description: rule.Description,
			Severity:    rule.Severity.String(),
			Timestamp:   now,
			Details:     violationDetails(snap, rule.Condition),
		})
	}
	return alerts
}

// checkRule is one exhaustive match over the condition kinds. Threshold kinds
// with a duration route through the violation tracker; instantaneous kinds
// answer from the snapshot alone. I/O rates are a lifetime average, cumulative
// bytes over run time, not a recent rate. Caller holds historyMu.
func (d *Detector) checkRule(snap *models.ProcessSnapshot, rule rules.Rule, now time.Time) bool {
	c := rule.Condition
	pid := snap.Info.PID
	switch c.Kind {
	case rules.KindCPUAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.CPUPercent > c.ThresholdPercent)
	case rules.KindMemoryAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.MemoryBytes > c.ThresholdBytes)
	case rules.KindMemoryPctAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.MemoryPercent > c.ThresholdPercent)
	case rules.KindDiskIOAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.DiskIOBytes()/snap.Stats.RunSeconds() > c.ThresholdBytesPerSec)
	case rules.KindNetIOAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.NetIOBytes()/snap.Stats.RunSeconds() > c.ThresholdBytesPerSec)
	case rules.KindThreadCountAbove:
		return snap.Stats.NumThreads > c.MaxThreads
	case rules.KindZombieState:
		return snap.Info.Status == models.StatusZombie
	case rules.KindDiskWriteAbove:
		return d.track(pid, rule.Name, c.Duration, now,
			snap.Stats.DiskWriteBytes/snap.Stats.RunSeconds() > c.ThresholdBytesPerSec)
	default:
		return false
	}
}

// track updates the persistence window for one (pid, rule) pair. A false
// observation breaks the streak: this rule's records are dropped so the
// window restarts from zero on the next violation. Caller holds historyMu.
func (d *Detector) track(pid int32, ruleName string, duration time.Duration, now time.Time, violated bool) bool {
	if !violated {
		d.clearViolations(pid, ruleName)
		return false
	}
	return d.recordViolation(pid, ruleName, duration, now)
}

// clearViolations removes this rule's records from the pid's shared sequence,
// leaving other rules' records in place. Caller holds historyMu.
func (d *Detector) clearViolations(pid int32, ruleName string) {
	seq, ok := d.history[pid]
	if !ok {
		return
	}
	kept := seq[:0]
	for _, rec := range seq {
		if rec.ruleName != ruleName {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		delete(d.history, pid)
		return
	}
	d.history[pid] = kept
}

// recordViolation appends a violation for (pid, ruleName), then retains in
// the pid's shared sequence only this rule's records inside this rule's
// cutoff. Other rules' records are discarded wholesale. Reports whether the
// retained records span the full duration. Caller holds historyMu.
func (d *Detector) recordViolation(pid int32, ruleName string, duration time.Duration, now time.Time) bool {
	seq := append(d.history[pid], violationRecord{ruleName: ruleName, timestamp: now})

	// Not strictly after: a duration of zero must keep the record appended
	// at now so it fires on the first true sample.
	cutoff := now.Add(-duration)
	kept := seq[:0]
	for _, rec := range seq {
		if rec.ruleName == ruleName && !rec.timestamp.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	d.history[pid] = kept

	// Records are appended in tick order, so the earliest survivor is first.
	return now.Sub(kept[0].timestamp) >= duration
}

// CleanupDeadProcesses drops all history for pids absent from the live set.
// There is no time-based expiry; this is the only way per-process state dies.
func (d *Detector) CleanupDeadProcesses(activePIDs []int32) {
	active := make(map[int32]struct{}, len(activePIDs))
	for _, pid := range activePIDs {
		active[pid] = struct{}{}
	}

	d.historyMu.Lock()
	defer d.historyMu.Unlock()
	for pid := range d.history {
		if _, ok := active[pid]; !ok {
			delete(d.history, pid)
		}
	}
}
