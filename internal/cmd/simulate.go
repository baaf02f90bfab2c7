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

	"github.com/spf13/cobra"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/simulate"
)

func newSimulateCommand() *cobra.Command {
	var (
		ber          float64
		limit        int
		fileSize     int
		encodings    string
		annEncodings string
		format       string
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Benchmark an encoding stack against a synthetic bit-error-rate channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromContext(cmd)
			if err != nil {
				return err
			}

			registry := codec.NewDefaultRegistry()
			report, err := simulate.Run(registry, cfg.Generator, cfg.Deframer, simulate.Options{
				BER:                   ber,
				Limit:                 limit,
				FileSize:              fileSize,
				ContentEncodings:      encodings,
				AnnouncementEncodings: annEncodings,
				Seed:                  seed,
			})
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}

			switch format {
			case "markdown":
				cmd.Print(simulate.FormatMarkdown(report))
			default:
				cmd.Println(simulate.FormatPlain(report))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&ber, "ber", 0, "per-bit flip probability on the simulated channel")
	cmd.Flags().IntVar(&limit, "limit", 100, "number of random messages to trial")
	cmd.Flags().IntVar(&fileSize, "file-size", 1024, "byte length of each random trial message")
	cmd.Flags().StringVar(&encodings, "encodings", "h,chunk(223),crc32", "content encoding CSV list to benchmark")
	cmd.Flags().StringVar(&annEncodings, "ann-encodings", "", "announcement encoding CSV list; empty sends no announcement")
	cmd.Flags().StringVar(&format, "format", "plain", "output format: plain or markdown")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed, for reproducible runs")

	return cmd
}
