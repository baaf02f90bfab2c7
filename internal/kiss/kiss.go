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

// Package kiss implements the KISS TNC framing used at the transport
// boundary: each PDU is wrapped between FEND bytes, with FEND/FESC
// bytes inside the payload escaped. The protocol core never sees KISS
// framing; only the transport adapters in internal/transport do.
package kiss

const (
	fend  = 0xC0
	fesc  = 0xDB
	tfend = 0xDC
	tfesc = 0xDD

	// dataFrameType is the only KISS command byte this protocol emits:
	// a data frame on port 0.
	dataFrameType = 0x00
)

// Encode wraps pdu in a single KISS data frame, escaping any FEND/FESC
// bytes found in the payload.
func Encode(pduBytes []byte) []byte {
	out := make([]byte, 0, len(pduBytes)+4)
	out = append(out, fend, dataFrameType)
	for _, b := range pduBytes {
		switch b {
		case fend:
			out = append(out, fesc, tfend)
		case fesc:
			out = append(out, fesc, tfesc)
		default:
			out = append(out, b)
		}
	}
	out = append(out, fend)
	return out
}

// Decoder accumulates arbitrary byte chunks and yields complete,
// unframed PDU payloads as full frames arrive.
type Decoder struct {
	inFrame bool
	escaped bool
	buf     []byte
}

// NewDecoder returns a Decoder ready to accept streamed bytes.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the decoder's input and returns every complete
// PDU payload it yields.
func (d *Decoder) Feed(chunk []byte) [][]byte {
	var frames [][]byte
	for _, b := range chunk {
		switch {
		case b == fend:
			if d.inFrame && len(d.buf) > 0 {
				frames = append(frames, d.finishFrame())
			}
			d.inFrame = true
			d.escaped = false
			d.buf = d.buf[:0]
		case !d.inFrame:
			// bytes outside a frame are noise; ignore them
		case d.escaped:
			switch b {
			case tfend:
				d.buf = append(d.buf, fend)
			case tfesc:
				d.buf = append(d.buf, fesc)
			default:
				d.buf = append(d.buf, b)
			}
			d.escaped = false
		case b == fesc:
			d.escaped = true
		default:
			d.buf = append(d.buf, b)
		}
	}
	return frames
}

// finishFrame strips the leading KISS command byte and returns the
// accumulated PDU payload.
func (d *Decoder) finishFrame() []byte {
	frame := d.buf
	d.buf = nil
	if len(frame) == 0 {
		return frame
	}
	return frame[1:]
}
