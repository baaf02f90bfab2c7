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

// Package header defines the CBOR-encoded PDU header and the
// first-non-null-wins merge used to build a session's aggregate header
// out of possibly-partial per-chunk headers.
package header

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
)

// Header carries the per-PDU metadata needed to place a chunk within a
// message and, for announcement PDUs, the declared encoding stacks for
// the message still to come. Integer field keys are fixed so two
// instances of this module stay wire-compatible with each other.
type Header struct {
	MsgID            uint64  `cbor:"0,keyasint"`
	ChunkIdx         uint64  `cbor:"1,keyasint"`
	ChunkCount       uint64  `cbor:"2,keyasint,omitempty"`
	DataLen          uint64  `cbor:"3,keyasint,omitempty"`
	SrcCallsign      *string `cbor:"4,keyasint,omitempty"`
	DstCallsign      *string `cbor:"5,keyasint,omitempty"`
	MIME             *string `cbor:"6,keyasint,omitempty"`
	ContentEncodings *string `cbor:"7,keyasint,omitempty"`
	PDUEncodings     *string `cbor:"8,keyasint,omitempty"`
	Announcement     bool    `cbor:"9,keyasint,omitempty"`
}

// AnnouncementMIME is the payload MIME type an announcement PDU's
// header declares for its CBOR-encoded preview of the forthcoming
// message's encoding stacks.
const AnnouncementMIME = "application/vnd.hqfbp+cbor"

// Marshal encodes h with CBOR's canonical (deterministic) encoding
// mode, so repeated encodes of an identical Header produce identical
// bytes.
func Marshal(h Header) ([]byte, error) {
	opts, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return opts.Marshal(h)
}

// Unmarshal decodes a Header from the start of data and reports how
// many bytes it consumed, so the caller can locate the payload that
// immediately follows it in a PDU buffer.
func Unmarshal(data []byte) (h Header, consumed int, err error) {
	dec := cbor.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&h); err != nil {
		return Header{}, 0, err
	}
	return h, dec.NumBytesRead(), nil
}
