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

package header

import "github.com/loic-fejoz/hqfbp-go/internal/codec"

// fieldKey indexes the merge-tracked optional fields, in the same order
// as their CBOR integer keys (2 through 8) but numbered from zero.
type fieldKey int

const (
	fieldChunkCount fieldKey = iota
	fieldDataLen
	fieldSrcCallsign
	fieldDstCallsign
	fieldMIME
	fieldContentEncodings
	fieldPDUEncodings
	fieldCount
)

// Merger accumulates a session's aggregate header across chunks: an
// unknown field is filled in by the first chunk that supplies it;
// a field known by two conflicting chunks keeps the value observed
// from the higher-quality chunk (§4.5 session update).
type Merger struct {
	header       Header
	fieldSet     [fieldCount]bool
	fieldQuality [fieldCount]codec.Quality
}

// NewMerger returns an empty merger seeded with the session's fixed
// identity fields.
func NewMerger(msgID uint64) *Merger {
	return &Merger{header: Header{MsgID: msgID}}
}

// Header returns the current aggregate header.
func (m *Merger) Header() Header {
	return m.header
}

func (m *Merger) takeString(key fieldKey, quality codec.Quality, incoming *string, dst **string) {
	if incoming == nil {
		return
	}
	if !m.fieldSet[key] {
		*dst = incoming
		m.fieldSet[key] = true
		m.fieldQuality[key] = quality
		return
	}
	if *dst != nil && **dst == *incoming {
		return
	}
	if quality > m.fieldQuality[key] {
		*dst = incoming
		m.fieldQuality[key] = quality
	}
}

func (m *Merger) takeUint(key fieldKey, quality codec.Quality, incoming uint64, dst *uint64) {
	if incoming == 0 {
		return
	}
	if !m.fieldSet[key] {
		*dst = incoming
		m.fieldSet[key] = true
		m.fieldQuality[key] = quality
		return
	}
	if *dst == incoming {
		return
	}
	if quality > m.fieldQuality[key] {
		*dst = incoming
		m.fieldQuality[key] = quality
	}
}

// Observe folds one chunk's header, decoded with the given quality,
// into the session's aggregate.
func (m *Merger) Observe(h Header, quality codec.Quality) {
	m.takeUint(fieldChunkCount, quality, h.ChunkCount, &m.header.ChunkCount)
	m.takeUint(fieldDataLen, quality, h.DataLen, &m.header.DataLen)
	m.takeString(fieldSrcCallsign, quality, h.SrcCallsign, &m.header.SrcCallsign)
	m.takeString(fieldDstCallsign, quality, h.DstCallsign, &m.header.DstCallsign)
	m.takeString(fieldMIME, quality, h.MIME, &m.header.MIME)
	m.takeString(fieldContentEncodings, quality, h.ContentEncodings, &m.header.ContentEncodings)
	m.takeString(fieldPDUEncodings, quality, h.PDUEncodings, &m.header.PDUEncodings)
	if h.Announcement {
		m.header.Announcement = true
	}
}
