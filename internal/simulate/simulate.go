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

// Package simulate drives random messages through a Generator/Deframer
// pair across a synthetic bit-error-rate channel, reporting how often a
// chosen codec stack still reassembles the original message. It exists
// to let an operator pick encodings for a link before trusting it on
// the air.
package simulate

import (
	"bytes"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
	"github.com/loic-fejoz/hqfbp-go/internal/deframer"
	"github.com/loic-fejoz/hqfbp-go/internal/generator"
)

// Options configures one simulation run.
type Options struct {
	// BER is the per-bit flip probability applied independently to
	// every bit of every PDU on the wire.
	BER float64
	// Limit is how many random messages to trial.
	Limit int
	// FileSize is the byte length of each random message.
	FileSize int
	ContentEncodings      string
	AnnouncementEncodings string
	// Seed makes a run reproducible; zero picks a fixed default rather
	// than the current time, so two runs with the same Options agree.
	Seed int64
}

// Report summarizes one Run.
type Report struct {
	Options     Options
	Trials      int
	Successes   int
	Failures    int
	SuccessRate float64
}

// Run generates Options.Limit random messages, packs each with the
// configured encodings, corrupts every resulting PDU independently bit
// by bit at the configured BER, and counts how often the Deframer still
// reassembles the exact original message. Trials run concurrently
// across GOMAXPROCS workers via errgroup, each seeded deterministically
// from (Options.Seed, trial index) so the Report is identical across
// runs regardless of scheduling order.
func Run(registry *codec.Registry, genCfg config.Generator, deframerCfg config.Deframer, opts Options) (Report, error) {
	if opts.Limit <= 0 {
		return Report{}, fmt.Errorf("simulate: limit must be positive, got %d", opts.Limit)
	}

	results := make([]bool, opts.Limit)
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < opts.Limit; i++ {
		i := i
		g.Go(func() error {
			ok, err := runTrial(registry, genCfg, deframerCfg, opts, i)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Options: opts, Trials: opts.Limit}
	for _, ok := range results {
		if ok {
			report.Successes++
		}
	}
	report.Failures = report.Trials - report.Successes
	report.SuccessRate = float64(report.Successes) / float64(report.Trials)
	return report, nil
}

// runTrial packs one random message, corrupts its PDUs at the
// configured BER, and reports whether the Deframer recovered it. trial
// seeds its own rand.Rand from (opts.Seed, trial) so concurrent trials
// never share PRNG state.
func runTrial(registry *codec.Registry, genCfg config.Generator, deframerCfg config.Deframer, opts Options, trial int) (bool, error) {
	rng := rand.New(rand.NewSource(opts.Seed*2654435761 + int64(trial)))
	message := randomMessage(rng, opts.FileSize)

	g := generator.New(registry, genCfg)
	pdus, err := g.Generate(message, generator.Options{
		ContentEncodings:      opts.ContentEncodings,
		AnnouncementEncodings: opts.AnnouncementEncodings,
	})
	if err != nil {
		return false, fmt.Errorf("simulate: trial %d: %w", trial, err)
	}

	d, err := deframer.New(registry, deframerCfg, nil, opts.ContentEncodings, opts.AnnouncementEncodings)
	if err != nil {
		return false, fmt.Errorf("simulate: trial %d: %w", trial, err)
	}

	now := time.Now()
	for _, p := range pdus {
		// a corrupted PDU may fail every candidate stack; that is
		// exactly the noise this harness measures, not a fatal error.
		_ = d.ReceiveBytes(corruptBits(rng, p, opts.BER), now)
	}

	return recovered(d, message), nil
}

// recovered drains d's events looking for an EventMessageReceived whose
// payload matches message exactly.
func recovered(d *deframer.Deframer, message []byte) bool {
	for {
		e, ok := d.NextEvent()
		if !ok {
			return false
		}
		if e.Kind == deframer.EventMessageReceived && bytes.Equal(e.Payload, message) {
			return true
		}
	}
}

func randomMessage(rng *rand.Rand, size int) []byte {
	if size <= 0 {
		size = 1
	}
	out := make([]byte, size)
	_, _ = rng.Read(out)
	return out
}

// corruptBits flips each bit of pdu independently with probability ber,
// leaving the input untouched.
func corruptBits(rng *rand.Rand, pdu []byte, ber float64) []byte {
	if ber <= 0 {
		return pdu
	}
	out := append([]byte(nil), pdu...)
	for i := range out {
		for bit := 0; bit < 8; bit++ {
			if rng.Float64() < ber {
				out[i] ^= 1 << uint(bit)
			}
		}
	}
	return out
}
