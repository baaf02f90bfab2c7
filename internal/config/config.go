// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2024 Jacob McSwain
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

package config

import "time"

// Config stores the application configuration. It is loaded through
// configulator.FromContext[Config](ctx).Load(), which layers defaults,
// a config file, and environment variables.
type Config struct {
	LogLevel  LogLevel  `yaml:"log_level"`
	Metrics   Metrics   `yaml:"metrics"`
	Deframer  Deframer  `yaml:"deframer"`
	Generator Generator `yaml:"generator"`
}

// Metrics configures the optional Prometheus exposition server.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
}

// Deframer configures the reassembly engine shared by unpack and simulate.
type Deframer struct {
	// SessionTimeout is how long a session may sit without a new chunk
	// before it is evicted and a SessionTimedOut event is emitted.
	SessionTimeout time.Duration `yaml:"session_timeout"`
	// MaxRecursionDepth bounds nested post-boundary codec peeling.
	MaxRecursionDepth int `yaml:"max_recursion_depth"`
}

// Generator configures default PDU generation parameters for pack.
type Generator struct {
	DefaultSrcCallsign string `yaml:"default_src_callsign"`
	MaxPayloadSize     int    `yaml:"max_payload_size"`
}

// Default returns the configuration used when no file or environment
// variable overrides a field.
func Default() Config {
	const (
		defaultSessionTimeout    = 2 * time.Minute
		defaultMaxRecursionDepth = 8
		defaultMaxPayloadSize    = 2048
	)
	return Config{
		LogLevel: LogLevelInfo,
		Metrics: Metrics{
			Enabled: false,
			Bind:    "0.0.0.0",
			Port:    9100,
		},
		Deframer: Deframer{
			SessionTimeout:    defaultSessionTimeout,
			MaxRecursionDepth: defaultMaxRecursionDepth,
		},
		Generator: Generator{
			DefaultSrcCallsign: "NOCALL",
			MaxPayloadSize:     defaultMaxPayloadSize,
		},
	}
}
