// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/loic-fejoz/hqfbp-go>

// Package cmd assembles the pack/unpack/simulate command-line surface
// around the protocol core.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/USA-RedDragon/configulator"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/loic-fejoz/hqfbp-go/internal/config"
)

type configContextKey struct{}

// NewCommand returns the root cobra command, with pack, unpack, and
// simulate attached as subcommands. A PersistentPreRunE loads
// configuration once from the configulator stashed on the context by
// main, sets up the process-wide slog default logger, and stashes the
// resolved *config.Config back on the context for every subcommand to
// retrieve via configFromContext.
func NewCommand(version, commit string) *cobra.Command {
	root := &cobra.Command{
		Use:     "hqfbp",
		Short:   "Pack, unpack, and simulate Hamradio Quick File Broadcasting Protocol transfers",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	var (
		metricsBind string
		metricsPort int
	)
	root.PersistentFlags().StringVar(&metricsBind, "metrics-bind", "", "override the configured Prometheus bind address")
	root.PersistentFlags().IntVar(&metricsPort, "metrics-port", 0, "override the configured Prometheus port")

	root.AddCommand(newPackCommand())
	root.AddCommand(newUnpackCommand())
	root.AddCommand(newSimulateCommand())
	return root
}

// loadConfig pulls the configulator stashed on the command's context by
// main, loads it (file + environment, layered over config.Default()),
// applies any --metrics-bind/--metrics-port overrides, sets up the
// default slog logger at the configured level, and stashes the
// resolved config back on the command's context.
func loadConfig(cmd *cobra.Command) error {
	c, err := configulator.FromContext[config.Config](cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get config from context: %w", err)
	}
	cfg, err := c.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if bind, err := cmd.Flags().GetString("metrics-bind"); err == nil && bind != "" {
		cfg.Metrics.Bind = bind
	}
	if port, err := cmd.Flags().GetInt("metrics-port"); err == nil && port != 0 {
		cfg.Metrics.Port = port
	}

	setupLogger(cfg)
	cmd.SetContext(context.WithValue(cmd.Context(), configContextKey{}, cfg))
	return nil
}

// configFromContext retrieves the config stashed by loadConfig's
// PersistentPreRunE.
func configFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configContextKey{}).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("no config on command context")
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}
