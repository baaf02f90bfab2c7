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

// chunkCodec splits content into n-byte pieces. It is unusual among
// per-PDU codecs: Encode operates on the whole message and returns the
// concatenation of its pieces unchanged (the actual splitting is done
// by the generator, which needs chunk boundaries to build one Header
// per chunk); Decode is the identity, since the deframer reassembles
// chunks by concatenation before invoking any further pre-boundary
// decode. ChunkSize exposes n to the generator for alignment (§4.4
// step 3).
type chunkCodec struct {
	n int
}

func newChunkCodec(params []uint64) (Codec, error) {
	if len(params) != 1 {
		return nil, ErrWrongParamCount
	}
	n := int(params[0])
	if n < 1 {
		return nil, ErrWrongParamCount
	}
	return chunkCodec{n: n}, nil
}

func (c chunkCodec) Tag() string { return TagChunk }

func (c chunkCodec) ChunkSize() int { return c.n }

func (c chunkCodec) Encode(input []byte) ([]byte, error) {
	return input, nil
}

func (c chunkCodec) Decode(input []byte) ([]byte, Quality, error) {
	return input, 0, nil
}

// Split divides content into n-byte pieces, padding the final piece is
// NOT performed here -- callers needing padding do so explicitly so
// the unpadded length can be recovered from header.data_len.
func (c chunkCodec) Split(content []byte) [][]byte {
	if c.n < 1 {
		return [][]byte{content}
	}
	var chunks [][]byte
	for i := 0; i < len(content); i += c.n {
		end := i + c.n
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, content[i:end])
	}
	if len(chunks) == 0 {
		chunks = append(chunks, []byte{})
	}
	return chunks
}
