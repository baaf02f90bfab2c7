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
	"time"

	"github.com/spf13/cobra"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/generator"
	"github.com/loic-fejoz/hqfbp-go/internal/metrics"
	"github.com/loic-fejoz/hqfbp-go/internal/transport"
)

func newPackCommand() *cobra.Command {
	var (
		srcCallsign  string
		dstCallsign  string
		encodings    string
		annEncodings string
		output       string
		tcpAddr      string
		dialTimeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pack <input>",
		Short: "Pack a file into a sequence of PDUs and deliver them to a file or TCP socket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}
			if output == "" && tcpAddr == "" {
				return fmt.Errorf("pack: one of --output or --tcp is required")
			}

			input := args[0]
			message, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("pack: read %s: %w", input, err)
			}

			if srcCallsign == "" {
				srcCallsign = cfg.Generator.DefaultSrcCallsign
			}

			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.NewMetrics()
			}

			registry := codec.NewDefaultRegistry()
			g := generator.New(registry, cfg.Generator)

			opts := generator.Options{
				MIME:                  mime.TypeByExtension(filepath.Ext(input)),
				SrcCallsign:           &srcCallsign,
				ContentEncodings:      encodings,
				AnnouncementEncodings: annEncodings,
			}
			if dstCallsign != "" {
				opts.DstCallsign = &dstCallsign
			}

			pdus, err := g.Generate(message, opts)
			if err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			if m != nil {
				recordGenerated(m, pdus, annEncodings != "")
			}

			if output != "" {
				if err := transport.WriteFile(output, pdus); err != nil {
					return fmt.Errorf("pack: %w", err)
				}
				slog.Info("wrote PDUs", "count", len(pdus), "path", output)
				return nil
			}

			if err := transport.DialSend(tcpAddr, pdus, dialTimeout); err != nil {
				return fmt.Errorf("pack: %w", err)
			}
			slog.Info("sent PDUs", "count", len(pdus), "addr", tcpAddr)
			return nil
		},
	}

	cmd.Flags().StringVar(&srcCallsign, "src-callsign", "", "source callsign (defaults to the configured default)")
	cmd.Flags().StringVar(&dstCallsign, "dst-callsign", "", "destination callsign")
	cmd.Flags().StringVar(&encodings, "encodings", "h,chunk(223),crc32", "content encoding CSV list")
	cmd.Flags().StringVar(&annEncodings, "ann-encodings", "", "announcement encoding CSV list; empty sends no announcement")
	cmd.Flags().StringVar(&output, "output", "", "write KISS-framed PDUs to this file")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "dial this host:port and stream KISS-framed PDUs")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 10*time.Second, "TCP dial timeout")

	return cmd
}

// recordGenerated credits the leading PDU as an announcement when pack
// asked for one, and every remaining PDU as data, matching Generate's
// announcement-first ordering.
func recordGenerated(m *metrics.Metrics, pdus [][]byte, hasAnnouncement bool) {
	for i := range pdus {
		if i == 0 && hasAnnouncement {
			m.RecordGenerated("announcement")
			continue
		}
		m.RecordGenerated("data")
	}
}
