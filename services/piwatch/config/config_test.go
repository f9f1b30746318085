// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 1000, c.StartTarget)
	assert.Equal(t, 2_000_000, c.MaxTarget)
	assert.Equal(t, 2, c.QueueCapacity)
	assert.Equal(t, 50*time.Millisecond, c.RefreshInterval.Std())
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.MetricsListen)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero start", func(c *Config) { c.StartTarget = -1 }, "start_target"},
		{"cap below start", func(c *Config) { c.MaxTarget = 10 }, "max_target"},
		{"bad capacity", func(c *Config) { c.QueueCapacity = -2 }, "queue_capacity"},
		{"bad refresh", func(c *Config) { c.RefreshInterval = Duration(time.Microsecond) }, "refresh_interval"},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "piwatch.yaml")
	content := `
start_target: 500
max_target: 100000
refresh_interval: 100ms
metrics_listen: ":9090"
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500, c.StartTarget)
	assert.Equal(t, 100_000, c.MaxTarget)
	assert.Equal(t, 2, c.QueueCapacity) // defaulted
	assert.Equal(t, 100*time.Millisecond, c.RefreshInterval.Std())
	assert.Equal(t, ":9090", c.MetricsListen)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoad_EmptyPath(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_target: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_target: -4"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_target")
}
