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

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidSessionTimeout indicates that the deframer session timeout is not positive.
	ErrInvalidSessionTimeout = errors.New("deframer session timeout must be positive")
	// ErrInvalidMaxRecursionDepth indicates that the deframer recursion depth is not positive.
	ErrInvalidMaxRecursionDepth = errors.New("deframer max recursion depth must be positive")
	// ErrInvalidMaxPayloadSize indicates that the generator's max payload size is not positive.
	ErrInvalidMaxPayloadSize = errors.New("generator max payload size must be positive")
)

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}

	return nil
}

// Validate validates the Deframer configuration.
func (d Deframer) Validate() error {
	if d.SessionTimeout <= 0 {
		return ErrInvalidSessionTimeout
	}
	if d.MaxRecursionDepth <= 0 {
		return ErrInvalidMaxRecursionDepth
	}
	return nil
}

// Validate validates the Generator configuration.
func (g Generator) Validate() error {
	if g.MaxPayloadSize <= 0 {
		return ErrInvalidMaxPayloadSize
	}
	return nil
}

// Validate validates the full application configuration.
func (c Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return ErrInvalidLogLevel
	}

	if err := c.Metrics.Validate(); err != nil {
		return err
	}

	if err := c.Deframer.Validate(); err != nil {
		return err
	}

	if err := c.Generator.Validate(); err != nil {
		return err
	}

	return nil
}
