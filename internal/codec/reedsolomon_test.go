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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReedSolomonCleanRoundTrip(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagReedSolomon, []uint64{255, 223})
	require.NoError(t, err)

	input := bytes.Repeat([]byte("x"), 223*2)
	encoded, err := c.Encode(input)
	require.NoError(t, err)
	assert.Len(t, encoded, 255*2)

	decoded, quality, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(decoded[:len(input)], input))
	assert.Equal(t, codec.Quality(16*2), quality) // (255-223)/2 per block, 2 blocks
}

func TestReedSolomonCorrectsWithinBudget(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagReedSolomon, []uint64{255, 223})
	require.NoError(t, err)

	input := bytes.Repeat([]byte("hamradio"), 223/8+1)[:223]
	encoded, err := c.Encode(input)
	require.NoError(t, err)
	require.Len(t, encoded, 255)

	// flip 16 bytes, exactly at the (255-223)/2 = 16 error budget
	for i := 0; i < 16; i++ {
		encoded[i*7] ^= 0x5A
	}

	decoded, quality, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(decoded, input), "expected correction to recover original data")
	assert.Equal(t, codec.Quality(0), quality)
}

func TestReedSolomonFailsBeyondBudget(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	c, err := r.BuildCodec(codec.TagReedSolomon, []uint64{255, 223})
	require.NoError(t, err)

	input := bytes.Repeat([]byte("z"), 223)
	encoded, err := c.Encode(input)
	require.NoError(t, err)

	// 17 errors exceeds the 16-error correction budget; decode must fail
	// rather than silently return wrong data.
	for i := 0; i < 17; i++ {
		encoded[i*5] ^= 0xFF
	}

	_, _, err = c.Decode(encoded)
	assert.Error(t, err)
}

func TestReedSolomonRejectsInvalidParams(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	_, err := r.BuildCodec(codec.TagReedSolomon, []uint64{100, 223})
	assert.Error(t, err, "n must exceed k")
}
