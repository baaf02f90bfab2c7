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

package config_test

import (
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got: %v", err)
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.LogLevel = "trace"
	if err := cfg.Validate(); err != config.ErrInvalidLogLevel {
		t.Fatalf("expected ErrInvalidLogLevel, got: %v", err)
	}
}

func TestMetricsValidateDisabledIgnoresFields(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: false}
	if err := m.Validate(); err != nil {
		t.Fatalf("expected nil error when metrics disabled, got: %v", err)
	}
}

func TestMetricsValidateBadPort(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: true, Bind: "0.0.0.0", Port: 0}
	if err := m.Validate(); err != config.ErrInvalidMetricsPort {
		t.Fatalf("expected ErrInvalidMetricsPort, got: %v", err)
	}
}

func TestDeframerValidateBadTimeout(t *testing.T) {
	t.Parallel()
	d := config.Deframer{SessionTimeout: 0, MaxRecursionDepth: 8}
	if err := d.Validate(); err != config.ErrInvalidSessionTimeout {
		t.Fatalf("expected ErrInvalidSessionTimeout, got: %v", err)
	}
}

func TestGeneratorValidateBadPayloadSize(t *testing.T) {
	t.Parallel()
	g := config.Generator{MaxPayloadSize: 0}
	if err := g.Validate(); err != config.ErrInvalidMaxPayloadSize {
		t.Fatalf("expected ErrInvalidMaxPayloadSize, got: %v", err)
	}
}
