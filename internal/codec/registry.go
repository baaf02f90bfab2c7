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

// CodecConstructor builds a per-PDU Codec from its resolved (dlen
// already substituted) integer parameters.
type CodecConstructor func(params []uint64) (Codec, error)

// FountainConstructor builds a multi-PDU Fountain codec the same way.
type FountainConstructor func(params []uint64) (Fountain, error)

// Registry is a read-only, explicitly-passed catalog mapping an
// encoding tag to its constructor. It carries no other state; codec
// instances are built fresh per message.
type Registry struct {
	codecs    map[string]CodecConstructor
	fountains map[string]FountainConstructor
}

// NewRegistry returns an empty registry. Use NewDefaultRegistry for one
// pre-populated with every codec required by the protocol.
func NewRegistry() *Registry {
	return &Registry{
		codecs:    make(map[string]CodecConstructor),
		fountains: make(map[string]FountainConstructor),
	}
}

// RegisterCodec adds or replaces the constructor for a per-PDU tag.
func (r *Registry) RegisterCodec(tag string, ctor CodecConstructor) {
	r.codecs[tag] = ctor
}

// RegisterFountain adds or replaces the constructor for a multi-PDU tag.
func (r *Registry) RegisterFountain(tag string, ctor FountainConstructor) {
	r.fountains[tag] = ctor
}

// IsFountain reports whether tag names a multi-PDU codec.
func (r *Registry) IsFountain(tag string) bool {
	_, ok := r.fountains[tag]
	return ok
}

// IsKnown reports whether tag names any registered codec.
func (r *Registry) IsKnown(tag string) bool {
	if _, ok := r.codecs[tag]; ok {
		return true
	}
	_, ok := r.fountains[tag]
	return ok
}

// BuildCodec constructs a per-PDU codec instance for tag.
func (r *Registry) BuildCodec(tag string, params []uint64) (Codec, error) {
	ctor, ok := r.codecs[tag]
	if !ok {
		return nil, ErrUnknownTag
	}
	return ctor(params)
}

// BuildFountain constructs a multi-PDU fountain codec instance for tag.
func (r *Registry) BuildFountain(tag string, params []uint64) (Fountain, error) {
	ctor, ok := r.fountains[tag]
	if !ok {
		return nil, ErrUnknownTag
	}
	return ctor(params)
}

// NewDefaultRegistry returns a Registry with every codec named in the
// protocol's required-codec list already registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterCodec(TagBoundary, newBoundaryCodec)
	r.RegisterCodec(TagGzip, newGzipCodec)
	r.RegisterCodec(TagBrotli, newBrotliCodec)
	r.RegisterCodec(TagLZMA, newLZMACodec)
	r.RegisterCodec(TagCRC16, newCRC16Codec)
	r.RegisterCodec(TagCRC32, newCRC32Codec)
	r.RegisterCodec(TagRepeat, newRepeatCodec)
	r.RegisterCodec(TagChunk, newChunkCodec)
	r.RegisterCodec(TagReedSolomon, newReedSolomonCodec)

	r.RegisterFountain(TagRaptorQ, newRaptorQCodec)
	r.RegisterFountain(TagLT, newLTCodec)

	return r
}
