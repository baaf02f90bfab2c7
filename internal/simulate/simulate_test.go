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

package simulate_test

import (
	"strings"
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
	"github.com/loic-fejoz/hqfbp-go/internal/simulate"
	"github.com/stretchr/testify/require"
)

func TestRunOnCleanChannelAlwaysRecovers(t *testing.T) {
	t.Parallel()
	registry := codec.NewDefaultRegistry()
	report, err := simulate.Run(registry, config.Generator{MaxPayloadSize: 64}, config.Deframer{SessionTimeout: 0}, simulate.Options{
		BER:              0,
		Limit:            10,
		FileSize:         128,
		ContentEncodings: "h,chunk(64),crc32",
		Seed:             1,
	})
	require.NoError(t, err)
	require.Equal(t, 10, report.Trials)
	require.Equal(t, 10, report.Successes)
	require.Equal(t, 0, report.Failures)
	require.InDelta(t, 1.0, report.SuccessRate, 0.0001)
}

func TestRunOnSaturatedChannelNeverRecovers(t *testing.T) {
	t.Parallel()
	registry := codec.NewDefaultRegistry()
	report, err := simulate.Run(registry, config.Generator{MaxPayloadSize: 64}, config.Deframer{SessionTimeout: 0}, simulate.Options{
		BER:              0.5,
		Limit:            5,
		FileSize:         128,
		ContentEncodings: "h,chunk(64),crc32",
		Seed:             2,
	})
	require.NoError(t, err)
	require.Equal(t, 0, report.Successes)
	require.Equal(t, 5, report.Failures)
}

func TestRunIsDeterministicForAGivenSeed(t *testing.T) {
	t.Parallel()
	registry := codec.NewDefaultRegistry()
	opts := simulate.Options{
		BER:              0.01,
		Limit:            20,
		FileSize:         256,
		ContentEncodings: "h,rs(255,223)",
		Seed:             42,
	}
	first, err := simulate.Run(registry, config.Generator{MaxPayloadSize: 223}, config.Deframer{SessionTimeout: 0}, opts)
	require.NoError(t, err)
	second, err := simulate.Run(codec.NewDefaultRegistry(), config.Generator{MaxPayloadSize: 223}, config.Deframer{SessionTimeout: 0}, opts)
	require.NoError(t, err)
	require.Equal(t, first.Successes, second.Successes)
}

func TestFormatMarkdownIsATable(t *testing.T) {
	t.Parallel()
	report := simulate.Report{
		Options:     simulate.Options{BER: 0.01, ContentEncodings: "h,crc32"},
		Trials:      10,
		Successes:   9,
		Failures:    1,
		SuccessRate: 0.9,
	}
	out := simulate.FormatMarkdown(report)
	require.True(t, strings.HasPrefix(out, "| encodings |"))
	require.Contains(t, out, "h,crc32")
	require.Contains(t, out, "90.00%")
}
