// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the piwatch YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime knob. All fields are optional in the YAML
// file; zero values are filled by ApplyDefaults.
type Config struct {
	// StartTarget is the digit count of the first precision round.
	StartTarget int `yaml:"start_target"`

	// MaxTarget caps the per-round digit count.
	MaxTarget int `yaml:"max_target"`

	// QueueCapacity is the producer/consumer queue size. Keep it small;
	// the blocking send on a full queue is the backpressure contract.
	QueueCapacity int `yaml:"queue_capacity"`

	// RefreshInterval is the dashboard redraw cadence.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// MetricsListen is the Prometheus endpoint address (e.g. ":9090").
	// Empty disables telemetry.
	MetricsListen string `yaml:"metrics_listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile receives structured logs while the TUI owns the terminal.
	// Empty discards logs in TUI mode.
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.StartTarget == 0 {
		c.StartTarget = 1000
	}
	if c.MaxTarget == 0 {
		c.MaxTarget = 2_000_000
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 2
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = Duration(50 * time.Millisecond)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configurations the pipeline or UI cannot run with.
func (c Config) Validate() error {
	if c.StartTarget < 1 {
		return fmt.Errorf("start_target must be >= 1, got %d", c.StartTarget)
	}
	if c.MaxTarget < c.StartTarget {
		return fmt.Errorf("max_target %d must be >= start_target %d", c.MaxTarget, c.StartTarget)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue_capacity must be >= 1, got %d", c.QueueCapacity)
	}
	if c.RefreshInterval.Std() < time.Millisecond {
		return fmt.Errorf("refresh_interval must be >= 1ms, got %s", c.RefreshInterval.Std())
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	return nil
}

// Load reads the YAML file at path, applies defaults, and validates.
//
// # Inputs
//
//   - path: Config file location. Empty returns Default() untouched.
//
// # Outputs
//
//   - Config: Ready to use.
//   - error: Non-nil if the file is missing, malformed, or invalid.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
