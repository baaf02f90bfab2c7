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

// Package pdu marshals and parses the unframed protocol data unit: a
// CBOR Header immediately followed by raw payload bytes, with no
// length prefix.
package pdu

import (
	"github.com/loic-fejoz/hqfbp-go/internal/header"
)

// PDU is a decoded protocol data unit.
type PDU struct {
	Header  header.Header
	Payload []byte
}

// Marshal concatenates h's CBOR encoding with payload.
func Marshal(h header.Header, payload []byte) ([]byte, error) {
	encoded, err := header.Marshal(h)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(encoded)+len(payload))
	out = append(out, encoded...)
	out = append(out, payload...)
	return out, nil
}

// Parse splits a PDU buffer into its Header and payload, using the
// CBOR decoder's byte count to find the header/payload boundary.
func Parse(data []byte) (PDU, error) {
	h, consumed, err := header.Unmarshal(data)
	if err != nil {
		return PDU{}, err
	}
	return PDU{Header: h, Payload: data[consumed:]}, nil
}
