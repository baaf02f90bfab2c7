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

package cmd

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/deframer"
	"github.com/loic-fejoz/hqfbp-go/internal/metrics"
	"github.com/loic-fejoz/hqfbp-go/internal/transport"
)

func newUnpackCommand() *cobra.Command {
	var (
		input       string
		tcpAddr     string
		knownEnc    string
		knownAnnEnc string
	)

	cmd := &cobra.Command{
		Use:   "unpack <out_dir>",
		Short: "Reassemble PDUs from a file or TCP socket into files named by their header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			outDir := args[0]
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("unpack: create %s: %w", outDir, err)
			}

			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.NewMetrics()
				if err := metrics.CreateMetricsServer(cfg); err != nil {
					return fmt.Errorf("unpack: %w", err)
				}
			}

			registry := codec.NewDefaultRegistry()
			d, err := deframer.New(registry, cfg.Deframer, m, knownEnc, knownAnnEnc)
			if err != nil {
				return fmt.Errorf("unpack: %w", err)
			}

			if input != "" {
				return unpackFile(d, input, outDir)
			}
			if tcpAddr != "" {
				return unpackTCP(d, tcpAddr, outDir)
			}
			return unpackFile(d, "", outDir) // reads stdin
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "read KISS-framed PDUs from this file (default: stdin)")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "listen on host:port for KISS-framed PDUs instead of reading a file")
	cmd.Flags().StringVar(&knownEnc, "known-encodings", "", "data PDU post-boundary stack to try before guessing")
	cmd.Flags().StringVar(&knownAnnEnc, "known-ann-encodings", "", "announcement PDU post-boundary stack to try before guessing")

	return cmd
}

func unpackFile(d *deframer.Deframer, path, outDir string) error {
	var pdus [][]byte
	var err error
	if path == "" {
		pdus, err = transport.ReadAll(os.Stdin)
	} else {
		pdus, err = transport.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}

	now := time.Now()
	for _, p := range pdus {
		if err := d.ReceiveBytes(p, now); err != nil {
			slog.Warn("discarding undecodable PDU", "error", err)
		}
	}
	d.Drain()
	return drainToFiles(d, outDir)
}

func unpackTCP(d *deframer.Deframer, addr, outDir string) error {
	srv, err := transport.Listen(addr, func(pdu []byte, now time.Time) {
		if err := d.ReceiveBytes(pdu, now); err != nil {
			slog.Warn("discarding undecodable PDU", "error", err)
		}
		if err := drainToFiles(d, outDir); err != nil {
			slog.Error("failed to write reassembled message", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("unpack: %w", err)
	}
	slog.Info("listening for PDUs", "addr", srv.Addr().String())

	go func() {
		if err := srv.Serve(); err != nil {
			slog.Info("TCP listener closed", "error", err)
		}
	}()

	shutdown.AddWithParam(func(sig os.Signal) {
		slog.Info("shutting down", "signal", sig)
		srv.Close()
		d.Drain()
		if err := drainToFiles(d, outDir); err != nil {
			slog.Error("failed to write reassembled message", "error", err)
		}
	})
	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	return nil
}

// drainToFiles pops every pending event off d and, for each completed
// message, writes its payload to outDir under a name derived from its
// header.
func drainToFiles(d *deframer.Deframer, outDir string) error {
	for {
		e, ok := d.NextEvent()
		if !ok {
			return nil
		}
		switch e.Kind {
		case deframer.EventMessageReceived:
			name := messageFileName(e)
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, e.Payload, 0o644); err != nil {
				return fmt.Errorf("unpack: write %s: %w", path, err)
			}
			slog.Info("reassembled message", "path", path, "bytes", len(e.Payload), "quality", e.Quality)
		case deframer.EventAnnouncementReceived:
			slog.Info("announcement received", "msg_id", e.Key.MsgID, "src", e.Key.SrcCallsign)
		case deframer.EventSessionTimedOut:
			slog.Warn("session timed out", "msg_id", e.Key.MsgID, "src", e.Key.SrcCallsign, "collected_chunks", e.CollectedChunks)
		}
	}
}

func messageFileName(e deframer.Event) string {
	ext := ".bin"
	if e.Header.MIME != nil {
		if exts, err := mime.ExtensionsByType(*e.Header.MIME); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	src := e.Key.SrcCallsign
	if src == "" {
		src = "unknown"
	}
	return fmt.Sprintf("%s-%d%s", src, e.Key.MsgID, ext)
}
