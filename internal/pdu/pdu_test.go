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

package pdu_test

import (
	"bytes"
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/header"
	"github.com/loic-fejoz/hqfbp-go/internal/pdu"
)

func TestMarshalParseRoundTrip(t *testing.T) {
	t.Parallel()
	h := header.Header{MsgID: 3, ChunkIdx: 1, ChunkCount: 4, DataLen: 64}
	payload := []byte("arbitrary chunk payload bytes, not CBOR at all")

	raw, err := pdu.Marshal(h, payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := pdu.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Header.MsgID != h.MsgID || got.Header.ChunkIdx != h.ChunkIdx {
		t.Errorf("header mismatch: got %+v", got.Header)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Errorf("payload mismatch: got %q, want %q", got.Payload, payload)
	}
}

func TestParseEmptyPayload(t *testing.T) {
	t.Parallel()
	h := header.Header{MsgID: 1}
	raw, err := pdu.Marshal(h, nil)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := pdu.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.Payload) != 0 {
		t.Errorf("expected empty payload, got %q", got.Payload)
	}
}
