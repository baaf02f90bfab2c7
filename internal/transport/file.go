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

// Package transport adapts the protocol core (generator output, deframer
// input) to the outside world. Every adapter here speaks KISS framing at
// its boundary and passes only unframed PDU bytes to internal/pdu and
// internal/deframer; nothing in the protocol core knows a byte stream
// exists.
package transport

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/loic-fejoz/hqfbp-go/internal/kiss"
)

// WriteFile KISS-frames every PDU in pdus, in order, and writes them to
// path, creating or truncating it.
func WriteFile(path string, pdus [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transport: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range pdus {
		if _, err := w.Write(kiss.Encode(p)); err != nil {
			return fmt.Errorf("transport: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("transport: flush %s: %w", path, err)
	}
	return nil
}

// ReadFile opens path and returns every unframed PDU a KISS decoder
// yields from its contents.
func ReadFile(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", path, err)
	}
	defer f.Close()
	pdus, err := ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("transport: read %s: %w", path, err)
	}
	return pdus, nil
}

// ReadAll drains r through a fresh KISS decoder and returns every
// unframed PDU it yields.
func ReadAll(r io.Reader) ([][]byte, error) {
	dec := kiss.NewDecoder()
	var pdus [][]byte
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pdus = append(pdus, dec.Feed(buf[:n])...)
		}
		if err == io.EOF {
			return pdus, nil
		}
		if err != nil {
			return pdus, err
		}
	}
}
