// Package models defines data structures for configuration and scan results.
package models

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputPath      = "output/log_result.txt"
	DefaultShutdownTimeout = 60 * time.Second
)

// DefaultExtensions are the file extensions picked up by discovery.
var DefaultExtensions = []string{".txt", ".log"}

// ScanConfig holds runtime configuration for a scan.
// Values come from an optional YAML file, overridden by CLI flags.
type ScanConfig struct {
	Dir             string        `yaml:"dir"`
	Keywords        []string      `yaml:"keywords"`
	Extensions      []string      `yaml:"extensions"`
	Recursive       bool          `yaml:"recursive"`
	WorkerCount     int           `yaml:"workers"`
	OutputPath      string        `yaml:"output"`
	SummaryYAMLPath string        `yaml:"summary_yaml"`
	MetricsFile     string        `yaml:"metrics_file"`
	DBPath          string        `yaml:"db"`
	NoHistory       bool          `yaml:"no_history"`
	// nil means unset; an explicit 0 waits for workers without bound.
	ShutdownTimeout *time.Duration `yaml:"shutdown_timeout"`
}

// LoadConfig reads a YAML config file. Missing fields stay zero; call
// ApplyDefaults afterwards.
func LoadConfig(path string) (*ScanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg ScanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *ScanConfig) ApplyDefaults() {
	if len(c.Keywords) == 0 {
		c.Keywords = append([]string(nil), DefaultKeywords...)
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	if c.ShutdownTimeout == nil {
		timeout := DefaultShutdownTimeout
		c.ShutdownTimeout = &timeout
	}
	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}
}

// Validate reports configuration that cannot be run.
func (c *ScanConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("no directory given")
	}
	if len(NewKeywordSet(c.Keywords)) == 0 {
		return fmt.Errorf("keyword set is empty")
	}
	if c.WorkerCount < 0 {
		return fmt.Errorf("workers must be positive, got %d", c.WorkerCount)
	}
	if c.ShutdownTimeout != nil && *c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative, got %s", *c.ShutdownTimeout)
	}
	return nil
}

// Timeout returns the pool shutdown bound, DefaultShutdownTimeout when unset.
func (c *ScanConfig) Timeout() time.Duration {
	if c.ShutdownTimeout == nil {
		return DefaultShutdownTimeout
	}
	return *c.ShutdownTimeout
}
