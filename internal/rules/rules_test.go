package rules_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"procwatch/internal/rules"
)

func TestSeverityOrdering(t *testing.T) {
	require.True(t, rules.SeverityInfo < rules.SeverityWarning)
	require.True(t, rules.SeverityWarning < rules.SeverityCritical)
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]rules.Severity{
		"info":     rules.SeverityInfo,
		"warn":     rules.SeverityWarning,
		"Warning":  rules.SeverityWarning,
		"CRITICAL": rules.SeverityCritical,
	}
	for raw, want := range cases {
		got, err := rules.ParseSeverity(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := rules.ParseSeverity("fatal")
	require.Error(t, err)
}

func TestDefaultRulesMatchReferencePolicy(t *testing.T) {
	rs := rules.DefaultRules()
	require.Len(t, rs, 6)

	byName := map[string]rules.Rule{}
	for _, r := range rs {
		require.NoError(t, r.Validate())
		byName[r.Name] = r
	}

	high := byName["High CPU Usage"]
	require.Equal(t, rules.KindCPUAbove, high.Condition.Kind)
	require.Equal(t, 80.0, high.Condition.ThresholdPercent)
	require.Equal(t, 60*time.Second, high.Condition.Duration)
	require.Equal(t, rules.SeverityWarning, high.Severity)

	extreme := byName["Extreme CPU Usage"]
	require.Equal(t, 95.0, extreme.Condition.ThresholdPercent)
	require.Equal(t, 10*time.Second, extreme.Condition.Duration)
	require.Equal(t, rules.SeverityCritical, extreme.Severity)

	mem := byName["High Memory Usage"]
	require.Equal(t, uint64(2*1024*1024*1024), mem.Condition.ThresholdBytes)
	require.Equal(t, 30*time.Second, mem.Condition.Duration)

	leak := byName["Memory Leak Suspected"]
	require.Equal(t, uint64(8*1024*1024*1024), leak.Condition.ThresholdBytes)
	require.Equal(t, rules.SeverityCritical, leak.Severity)

	zombie := byName["Zombie Process"]
	require.Equal(t, rules.KindZombieState, zombie.Condition.Kind)
	require.True(t, zombie.Condition.Instantaneous())

	disk := byName["High Disk I/O"]
	require.Equal(t, uint64(100*1024*1024), disk.Condition.ThresholdBytesPerSec)
	require.Equal(t, 60*time.Second, disk.Condition.Duration)
}

func TestConditionValidateRejectsBadParameters(t *testing.T) {
	bad := []rules.Condition{
		{Kind: rules.KindCPUAbove},
		{Kind: rules.KindMemoryAbove},
		{Kind: rules.KindDiskIOAbove},
		{Kind: rules.KindThreadCountAbove},
		{Kind: "gpu_above", ThresholdPercent: 10},
		{Kind: rules.KindCPUAbove, ThresholdPercent: 80, Duration: -time.Second},
	}
	for _, c := range bad {
		require.Error(t, c.Validate(), "condition %+v", c)
	}

	require.NoError(t, rules.Condition{Kind: rules.KindZombieState}.Validate())
}

func TestRuleFileRoundTripIsLossless(t *testing.T) {
	orig := rules.DefaultRules()
	orig = append(orig,
		rules.Rule{
			Name:        "Too Many Threads",
			Description: "Process spawned an excessive number of threads",
			Condition:   rules.Condition{Kind: rules.KindThreadCountAbove, MaxThreads: 500},
			Severity:    rules.SeverityWarning,
		},
		rules.Rule{
			Name:        "High Disk Writes",
			Description: "Process writing to disk at a sustained high rate",
			Condition: rules.Condition{
				Kind:                 rules.KindDiskWriteAbove,
				ThresholdBytesPerSec: 50 * 1024 * 1024,
				Duration:             30 * time.Second,
			},
			Severity: rules.SeverityCritical,
		},
	)

	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, rules.Save(path, orig))

	reloaded, err := rules.Load(path)
	require.NoError(t, err)

	// Identical thresholds, durations and severities mean identical
	// evaluation outcomes against any snapshot sequence.
	require.Equal(t, orig, reloaded)
}

func TestLoadRejectsEmptyAndInvalidFiles(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yml")
	require.NoError(t, rules.Save(empty, nil))
	_, err := rules.Load(empty)
	require.Error(t, err)

	_, err = rules.Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}
