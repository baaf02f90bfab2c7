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

package codec_test

import (
	"bytes"
	"testing"

	"github.com/loic-fejoz/hqfbp-go/internal/codec"
)

func roundTrip(t *testing.T, tag string, params []uint64, input []byte) []byte {
	t.Helper()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(tag, params)
	if err != nil {
		t.Fatalf("BuildCodec(%s): %v", tag, err)
	}
	encoded, err := c.Encode(input)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, _, err := c.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return decoded
}

func TestBoundaryRoundTrip(t *testing.T) {
	t.Parallel()
	got := roundTrip(t, codec.TagBoundary, nil, []byte("payload"))
	if !bytes.Equal(got, []byte("payload")) {
		t.Errorf("got %q", got)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	t.Parallel()
	input := bytes.Repeat([]byte("the quick brown fox "), 20)
	got := roundTrip(t, codec.TagGzip, nil, input)
	if !bytes.Equal(got, input) {
		t.Error("gzip round-trip mismatch")
	}
}

func TestBrotliRoundTrip(t *testing.T) {
	t.Parallel()
	input := bytes.Repeat([]byte("hamradio quick file broadcasting "), 20)
	got := roundTrip(t, codec.TagBrotli, nil, input)
	if !bytes.Equal(got, input) {
		t.Error("brotli round-trip mismatch")
	}
}

func TestLZMARoundTrip(t *testing.T) {
	t.Parallel()
	input := bytes.Repeat([]byte("73s de the contest station "), 20)
	got := roundTrip(t, codec.TagLZMA, nil, input)
	if !bytes.Equal(got, input) {
		t.Error("lzma round-trip mismatch")
	}
}

func TestCRC32DetectsCorruption(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagCRC32, nil)
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := c.Encode([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	encoded[0] ^= 0xFF
	if _, _, err := c.Decode(encoded); err == nil {
		t.Fatal("expected corruption to be detected")
	}
}

func TestCRC16DetectsCorruption(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagCRC16, nil)
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := c.Encode([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	got := roundTrip(t, codec.TagCRC16, nil, []byte("hello"))
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("got %q", got)
	}
	encoded[len(encoded)-1] ^= 0xFF
	if _, _, err := c.Decode(encoded); err == nil {
		t.Fatal("expected corruption to be detected")
	}
}

func TestRepeatMajorityVoteCorrectsCorruption(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagRepeat, []uint64{3})
	if err != nil {
		t.Fatal(err)
	}
	input := []byte("hi there")
	encoded, err := c.Encode(input)
	if err != nil {
		t.Fatal(err)
	}
	// corrupt one of the three replicas at a single byte position
	encoded[2] ^= 0xFF
	decoded, quality, err := c.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, input) {
		t.Errorf("expected majority vote to recover %q, got %q", input, decoded)
	}
	if quality <= 0 {
		t.Errorf("expected positive quality for near-unanimous vote, got %v", quality)
	}
}

func TestChunkSplitNoPadding(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagChunk, []uint64{4})
	if err != nil {
		t.Fatal(err)
	}
	chunker, ok := c.(interface{ Split([]byte) [][]byte })
	if !ok {
		t.Fatal("chunk codec must expose Split")
	}
	chunks := chunker.Split([]byte("123456789"))
	want := [][]byte{[]byte("1234"), []byte("5678"), []byte("9")}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if !bytes.Equal(chunks[i], want[i]) {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}
