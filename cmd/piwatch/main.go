// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// piwatch generates decimal digits of pi to ever-growing precision and
// watches the stream for departures from the normal-number hypothesis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/piwatch/services/piwatch/config"
)

var (
	cfgPath       string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "piwatch",
	Short: "Generate pi digits and test them against the normal-number hypothesis",
	Long: `piwatch computes decimal digits of pi with Chudnovsky binary splitting,
doubling the precision target round over round, and streams every digit
through a statistics engine that tracks digit frequencies, chi-squared,
Shannon entropy, and convergence trends in bounded memory.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn, or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log output format: text or json")
}

// loadConfig loads the YAML config (if any) and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
