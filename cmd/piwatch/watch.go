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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/piwatch/pkg/logging"
	"github.com/AleutianAI/piwatch/services/piwatch/chudnovsky"
	"github.com/AleutianAI/piwatch/services/piwatch/config"
	"github.com/AleutianAI/piwatch/services/piwatch/pipeline"
	"github.com/AleutianAI/piwatch/services/piwatch/stats"
	"github.com/AleutianAI/piwatch/services/piwatch/telemetry"
	"github.com/AleutianAI/piwatch/services/piwatch/tui"
)

var (
	flagMetricsListen string
	flagPlain         bool
	flagStartTarget   int
	flagMaxTarget     int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the live normality dashboard",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagMetricsListen, "metrics-listen", "", "Prometheus endpoint address, e.g. :9090 (overrides config)")
	watchCmd.Flags().BoolVar(&flagPlain, "plain", false, "log periodic summaries instead of drawing the dashboard")
	watchCmd.Flags().IntVar(&flagStartTarget, "start-target", 0, "digit count of the first round (overrides config)")
	watchCmd.Flags().IntVar(&flagMaxTarget, "max-target", 0, "per-round digit cap (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagMetricsListen != "" {
		cfg.MetricsListen = flagMetricsListen
	}
	if flagStartTarget != 0 {
		cfg.StartTarget = flagStartTarget
	}
	if flagMaxTarget != 0 {
		cfg.MaxTarget = flagMaxTarget
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if !flagPlain && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal; use --plain for non-interactive output")
	}

	log, err := watchLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()
	logger := log.Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(cfg.MetricsListen, logger)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	engine := stats.NewEngine()
	token := pipeline.NewToken()

	p, err := pipeline.New(pipeline.Config{
		StartTarget:   cfg.StartTarget,
		MaxTarget:     cfg.MaxTarget,
		QueueCapacity: cfg.QueueCapacity,
	}, chudnovsky.Digits, engine, token, logger, tel.Metrics)
	if err != nil {
		return err
	}

	logger.Info("starting pi watch",
		slog.Int("start_target", cfg.StartTarget),
		slog.Int("max_target", cfg.MaxTarget))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(ctx) })

	if flagPlain {
		g.Go(func() error { return runHeadless(ctx, engine, token, logger) })
		return g.Wait()
	}

	prog := tea.NewProgram(
		tui.NewModel(engine, token, cfg.RefreshInterval.Std()),
		tea.WithAltScreen(),
	)

	// A signal or pipeline failure must tear the dashboard down too.
	g.Go(func() error {
		select {
		case <-token.Done():
		case <-ctx.Done():
		}
		prog.Quit()
		return nil
	})

	g.Go(func() error {
		_, err := prog.Run()
		// Whatever ended the dashboard ends the run.
		token.Cancel()
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// runHeadless logs a stats summary once per second until shutdown.
func runHeadless(ctx context.Context, engine *stats.Engine, token *pipeline.Token, logger *slog.Logger) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			token.Cancel()
			return nil
		case <-token.Done():
			return nil
		case <-ticker.C:
			snap := engine.Snapshot()
			logger.Info("normality summary",
				slog.Uint64("digits", snap.Total),
				slog.Float64("chi_squared", snap.ChiSquared),
				slog.Float64("entropy_bits", snap.Entropy),
				slog.Float64("max_deviation_pct", snap.MaxDeviation),
				slog.Float64("digits_per_sec", snap.Throughput))
		}
	}
}

// watchLogger routes logs away from the terminal while the dashboard
// owns it: to the configured file, or discarded. Plain mode keeps
// stderr as well.
func watchLogger(cfg config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if flagLogFormat != "text" && flagLogFormat != "json" {
		return nil, fmt.Errorf("log format must be text or json, got %q", flagLogFormat)
	}

	return logging.New(logging.Config{
		Level:   level,
		LogFile: cfg.LogFile,
		Service: "piwatch",
		JSON:    flagLogFormat == "json",
		Quiet:   !flagPlain,
	})
}
