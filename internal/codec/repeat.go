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

package codec

// repeatCodec replicates the payload k times on encode and recovers it
// by per-byte majority vote on decode, per §4.1.
type repeatCodec struct {
	k int
}

func newRepeatCodec(params []uint64) (Codec, error) {
	if len(params) != 1 {
		return nil, ErrWrongParamCount
	}
	k := int(params[0])
	if k < 1 {
		return nil, ErrWrongParamCount
	}
	return repeatCodec{k: k}, nil
}

func (c repeatCodec) Tag() string { return TagRepeat }

func (c repeatCodec) Encode(input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input)*c.k)
	for i := 0; i < c.k; i++ {
		out = append(out, input...)
	}
	return out, nil
}

func (c repeatCodec) Decode(input []byte) ([]byte, Quality, error) {
	if c.k < 1 || len(input)%c.k != 0 {
		return nil, 0, ErrCorrupt
	}
	n := len(input) / c.k
	out := make([]byte, n)
	var agreement int
	for i := 0; i < n; i++ {
		counts := make(map[byte]int, c.k)
		for r := 0; r < c.k; r++ {
			counts[input[r*n+i]]++
		}
		var best byte
		var bestCount int
		for b, cnt := range counts {
			if cnt > bestCount {
				best, bestCount = b, cnt
			}
		}
		out[i] = best
		agreement += bestCount
	}
	// Quality reflects how unanimous the votes were: perfect agreement
	// across every replica and every byte scores c.k-1, degrading
	// toward 0 as votes split.
	var quality Quality
	if n > 0 {
		avgAgreement := float64(agreement) / float64(n)
		quality = Quality(avgAgreement - 1)
	}
	return out, quality, nil
}
