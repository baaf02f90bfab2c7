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

package header_test

import (
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/header"
)

func strPtr(s string) *string { return &s }

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	t.Parallel()
	h := header.Header{
		MsgID:       7,
		ChunkIdx:    2,
		ChunkCount:  5,
		DataLen:     1024,
		SrcCallsign: strPtr("N0CALL"),
		MIME:        strPtr("text/plain"),
	}
	data, err := header.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, consumed, err := header.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if consumed != len(data) {
		t.Errorf("expected to consume all %d bytes, consumed %d", len(data), consumed)
	}
	if got.MsgID != h.MsgID || got.ChunkIdx != h.ChunkIdx || got.ChunkCount != h.ChunkCount || got.DataLen != h.DataLen {
		t.Errorf("scalar fields mismatch: got %+v", got)
	}
	if got.SrcCallsign == nil || *got.SrcCallsign != "N0CALL" {
		t.Errorf("expected SrcCallsign N0CALL, got %v", got.SrcCallsign)
	}
	if got.MIME == nil || *got.MIME != "text/plain" {
		t.Errorf("expected MIME text/plain, got %v", got.MIME)
	}
}

func TestUnmarshalReportsConsumedPrefixOnly(t *testing.T) {
	t.Parallel()
	h := header.Header{MsgID: 1, ChunkIdx: 0}
	data, err := header.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	payload := []byte("trailing payload bytes")
	buf := append(append([]byte{}, data...), payload...)

	_, consumed, err := header.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if consumed != len(data) {
		t.Fatalf("expected header to consume exactly %d bytes, got %d", len(data), consumed)
	}
	if string(buf[consumed:]) != string(payload) {
		t.Errorf("expected remaining bytes to be the payload, got %q", buf[consumed:])
	}
}
