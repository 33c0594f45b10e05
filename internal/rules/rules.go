package rules

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Severity orders rule outcomes from informational to critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "info"
	}
}

// ParseSeverity parses a severity name.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", raw)
	}
}

// MarshalYAML encodes the severity as its name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes a severity name.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON encodes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Kind identifies one condition variant. The set is closed; evaluation is a
// single exhaustive switch in the detector.
type Kind string

const (
	KindCPUAbove         Kind = "cpu_above"
	KindMemoryAbove      Kind = "memory_above"
	KindMemoryPctAbove   Kind = "memory_percent_above"
	KindDiskIOAbove      Kind = "disk_io_above"
	KindNetIOAbove       Kind = "net_io_above"
	KindThreadCountAbove Kind = "thread_count_above"
	KindZombieState      Kind = "zombie_state"
	KindDiskWriteAbove   Kind = "disk_write_above"
)

// Condition is one threshold check. Only the parameters that belong to the
// kind are set; the flat shape keeps yaml round-trips lossless.
type Condition struct {
	Kind                 Kind          `yaml:"kind" json:"kind"`
	ThresholdPercent     float64       `yaml:"threshold_percent,omitempty" json:"threshold_percent,omitempty"`
	ThresholdBytes       uint64        `yaml:"threshold_bytes,omitempty" json:"threshold_bytes,omitempty"`
	ThresholdBytesPerSec uint64        `yaml:"threshold_bytes_per_sec,omitempty" json:"threshold_bytes_per_sec,omitempty"`
	MaxThreads           int32         `yaml:"max_threads,omitempty" json:"max_threads,omitempty"`
	Duration             time.Duration `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// Instantaneous reports whether the condition is evaluated directly against
// the current snapshot, bypassing the persistence tracker.
func (c Condition) Instantaneous() bool {
	switch c.Kind {
	case KindThreadCountAbove, KindZombieState:
		return true
	default:
		return false
	}
}

// Validate rejects unknown kinds and malformed parameters.
func (c Condition) Validate() error {
	switch c.Kind {
	case KindCPUAbove, KindMemoryPctAbove:
		if c.ThresholdPercent <= 0 {
			return fmt.Errorf("condition %s requires threshold_percent > 0", c.Kind)
		}
	case KindMemoryAbove:
		if c.ThresholdBytes == 0 {
			return fmt.Errorf("condition %s requires threshold_bytes > 0", c.Kind)
		}
	case KindDiskIOAbove, KindNetIOAbove, KindDiskWriteAbove:
		if c.ThresholdBytesPerSec == 0 {
			return fmt.Errorf("condition %s requires threshold_bytes_per_sec > 0", c.Kind)
		}
	case KindThreadCountAbove:
		if c.MaxThreads <= 0 {
			return fmt.Errorf("condition %s requires max_threads > 0", c.Kind)
		}
	case KindZombieState:
	default:
		return fmt.Errorf("unknown condition kind %q", c.Kind)
	}
	if c.Duration < 0 {
		return fmt.Errorf("condition %s has negative duration", c.Kind)
	}
	return nil
}

// Rule is one named misbehavior pattern. Rules are immutable once registered;
// the detector's rule set is append-only and never dedups by name.
type Rule struct {
	Name        string    `yaml:"name" json:"name"`
	Description string    `yaml:"description" json:"description"`
	Condition   Condition `yaml:"condition" json:"condition"`
	Severity    Severity  `yaml:"severity" json:"severity"`
}

// Validate checks the rule is usable.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("rule has empty name")
	}
	if err := r.Condition.Validate(); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return nil
}

// DefaultRules returns the compiled-in policy. Thresholds are defaults, not
// mechanism; load a rule file to replace them.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "High CPU Usage",
			Description: "Process using more than 80% CPU for extended period",
			Condition: Condition{
				Kind:             KindCPUAbove,
				ThresholdPercent: 80.0,
				Duration:         60 * time.Second,
			},
			Severity: SeverityWarning,
		},
		{
			Name:        "Extreme CPU Usage",
			Description: "Process using more than 95% CPU",
			Condition: Condition{
				Kind:             KindCPUAbove,
				ThresholdPercent: 95.0,
				Duration:         10 * time.Second,
			},
			Severity: SeverityCritical,
		},
		{
			Name:        "High Memory Usage",
			Description: "Process using more than 2GB of RAM",
			Condition: Condition{
				Kind:           KindMemoryAbove,
				ThresholdBytes: 2 * 1024 * 1024 * 1024,
				Duration:       30 * time.Second,
			},
			Severity: SeverityWarning,
		},
		{
			Name:        "Memory Leak Suspected",
			Description: "Process using more than 8GB of RAM",
			Condition: Condition{
				Kind:           KindMemoryAbove,
				ThresholdBytes: 8 * 1024 * 1024 * 1024,
				Duration:       10 * time.Second,
			},
			Severity: SeverityCritical,
		},
		{
			Name:        "Zombie Process",
			Description: "Process is in zombie state",
			Condition: Condition{
				Kind: KindZombieState,
			},
			Severity: SeverityWarning,
		},
		{
			Name:        "High Disk I/O",
			Description: "Process performing excessive disk operations",
			Condition: Condition{
				Kind:                 KindDiskIOAbove,
				ThresholdBytesPerSec: 100 * 1024 * 1024,
				Duration:             60 * time.Second,
			},
			Severity: SeverityWarning,
		},
	}
}
