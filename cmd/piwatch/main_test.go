// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/piwatch/services/piwatch/config"
)

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestDigitsCommand(t *testing.T) {
	flagBlocks = false
	out, err := execute(t, "digits", "10")
	require.NoError(t, err)
	assert.Equal(t, "3.1415926535\n", out)
}

func TestDigitsCommand_Blocks(t *testing.T) {
	out, err := execute(t, "digits", "25", "--blocks")
	flagBlocks = false
	require.NoError(t, err)
	assert.Equal(t, "3.1415926535 8979323846 26433\n", out)
}

func TestDigitsCommand_Zero(t *testing.T) {
	flagBlocks = false
	out, err := execute(t, "digits", "0")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestDigitsCommand_Invalid(t *testing.T) {
	flagBlocks = false
	_, err := execute(t, "digits", "banana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid digit count")

	_, err = execute(t, "digits", "-3")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "piwatch")
	assert.Contains(t, out, version)
}

func TestWatchLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "piwatch.log")

	log, err := watchLogger(cfg)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	cfg.LogLevel = "loud"
	_, err = watchLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestLoadConfig_FlagOverride(t *testing.T) {
	cfgPath = ""
	flagLogLevel = "debug"
	defer func() { flagLogLevel = "" }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_BadOverride(t *testing.T) {
	cfgPath = ""
	flagLogLevel = "loud"
	defer func() { flagLogLevel = "" }()

	_, err := loadConfig()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "log_level"))
}
