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

// Package codec implements the catalog of reversible transforms that make
// up an HQFBP encoding stack: compression, the boundary marker, checksums,
// Reed-Solomon and repetition FEC, chunking, and the RaptorQ/LT fountain
// codes. Every per-PDU codec is constructed from a tag and a resolved
// parameter list through a Registry; multi-PDU fountain codecs are built
// the same way but expose a different, symbol-oriented interface because
// they don't transform a single PDU's bytes in place.
package codec

import "errors"

// Quality summarizes how much correction headroom remained after a
// decode. Higher is better; for codecs with no notion of correction
// headroom it is always zero.
type Quality float64

// Codec is a single reversible, per-PDU transform.
type Codec interface {
	Tag() string
	Encode(input []byte) ([]byte, error)
	Decode(input []byte) ([]byte, Quality, error)
}

// Symbol is one fountain-coded unit, tagged by its encoding symbol ID.
type Symbol struct {
	ESI  uint32
	Data []byte
}

// Fountain is a multi-PDU rateless code. The generator calls
// GenerateSymbols once to produce a batch of symbol payloads; the
// deframer calls TryDecode every time a new symbol arrives for the
// session until it returns ok=true.
type Fountain interface {
	Tag() string
	GenerateSymbols(content []byte, count int) ([]Symbol, error)
	TryDecode(symbols []Symbol) ([]byte, Quality, bool)
}

var (
	// ErrUnknownTag indicates a codec tag with no registered constructor.
	ErrUnknownTag = errors.New("codec: unknown tag")
	// ErrWrongParamCount indicates a codec was built with the wrong
	// number of resolved parameters for its tag.
	ErrWrongParamCount = errors.New("codec: wrong parameter count")
	// ErrCorrupt indicates a decode found the input unrecoverable.
	ErrCorrupt = errors.New("codec: input could not be decoded")
)
