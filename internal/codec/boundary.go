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

// boundaryCodec is the identity transform that marks the split between
// the pre-boundary (content) and post-boundary (PDU) sub-stacks in an
// EncodingList. It is never actually invoked by the generator or
// deframer on bytes -- §4.2 strips it out before building the two
// sub-stacks -- but it is registered so an EncodingList containing it
// round-trips through parsing unchanged.
type boundaryCodec struct{}

func newBoundaryCodec(params []uint64) (Codec, error) {
	if len(params) != 0 {
		return nil, ErrWrongParamCount
	}
	return boundaryCodec{}, nil
}

func (boundaryCodec) Tag() string { return TagBoundary }

func (boundaryCodec) Encode(input []byte) ([]byte, error) {
	return input, nil
}

func (boundaryCodec) Decode(input []byte) ([]byte, Quality, error) {
	return input, 0, nil
}
