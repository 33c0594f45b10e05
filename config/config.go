package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	ProcWatch ProcWatchConfig `yaml:"procwatch"`
}

// ProcWatchConfig is the project configuration.
type ProcWatchConfig struct {
	Collector CollectorConfig `yaml:"collector"`
	Detector  DetectorConfig  `yaml:"detector"`
	Output    OutputConfig    `yaml:"output"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CollectorConfig controls process sampling.
type CollectorConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// DetectorConfig controls the rule set. An empty rules_file keeps the
// compiled-in defaults.
type DetectorConfig struct {
	RulesFile string `yaml:"rules_file"`
}

// OutputConfig controls alert sinks.
type OutputConfig struct {
	Mode         string           `yaml:"mode"` // file|none
	File         FileOutputConfig `yaml:"file"`
	RingCapacity int              `yaml:"ring_capacity"`
}

// FileOutputConfig config for local JSONL output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the local introspection endpoint (prometheus
// metrics, rule enumeration, recent alerts).
type ServerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
