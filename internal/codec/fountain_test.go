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

func TestRaptorQFullSymbolSetDecodes(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	content := bytes.Repeat([]byte("hqfbp "), 200) // 1200 bytes
	f, err := r.BuildFountain(codec.TagRaptorQ, []uint64{uint64(len(content)), 64, 20})
	require.NoError(t, err)

	symbols, err := f.GenerateSymbols(content, 30)
	require.NoError(t, err)
	assert.Len(t, symbols, 30)

	decoded, quality, ok := f.TryDecode(symbols)
	require.True(t, ok)
	assert.Equal(t, content, decoded)
	assert.Equal(t, codec.Quality(10), quality)
}

func TestLTSurvivesTwentyPercentSymbolLoss(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	content := bytes.Repeat([]byte("0123456789abcdef"), 150) // 2400 bytes
	f, err := r.BuildFountain(codec.TagLT, []uint64{uint64(len(content)), 128, 20})
	require.NoError(t, err)

	// generous overhead (80 symbols for 20 source symbols) so peeling
	// converges comfortably even after a 20% drop.
	symbols, err := f.GenerateSymbols(content, 80)
	require.NoError(t, err)

	// drop every fifth symbol (20% loss), keep the rest in arrival order
	var received []codec.Symbol
	for i, sym := range symbols {
		if i%5 == 4 {
			continue
		}
		received = append(received, sym)
	}

	decoded, _, ok := f.TryDecode(received)
	require.True(t, ok, "expected peeling decode to recover despite 20%% loss")
	assert.Equal(t, content, decoded)
}

func TestFountainTryDecodeFailsWithTooFewSymbols(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	content := []byte("short message")
	f, err := r.BuildFountain(codec.TagLT, []uint64{uint64(len(content)), 4, 4})
	require.NoError(t, err)

	symbols, err := f.GenerateSymbols(content, 4)
	require.NoError(t, err)

	_, _, ok := f.TryDecode(symbols[:2])
	assert.False(t, ok, "two out of four source symbols must not be enough to decode")
}

func TestFountainIgnoresDuplicateSymbols(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	content := []byte("duplicate handling exercise!!!!")
	f, err := r.BuildFountain(codec.TagLT, []uint64{uint64(len(content)), 8, 4})
	require.NoError(t, err)

	symbols, err := f.GenerateSymbols(content, 6)
	require.NoError(t, err)

	withDuplicates := append(append([]codec.Symbol{}, symbols...), symbols[0], symbols[1])
	decoded, _, ok := f.TryDecode(withDuplicates)
	require.True(t, ok)
	assert.Equal(t, content, decoded)
}

func TestNewFountainRejectsWrongParamCount(t *testing.T) {
	t.Parallel()
	r := codec.NewDefaultRegistry()
	_, err := r.BuildFountain(codec.TagRaptorQ, []uint64{100, 10})
	assert.Error(t, err)
}
