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

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz/lzma"
)

// gzipCodec wraps klauspost/compress's gzip, a drop-in faster
// implementation of the standard library codec already used elsewhere
// in the pack for its speed.
type gzipCodec struct{}

func newGzipCodec(params []uint64) (Codec, error) {
	if len(params) != 0 {
		return nil, ErrWrongParamCount
	}
	return gzipCodec{}, nil
}

func (gzipCodec) Tag() string { return TagGzip }

func (gzipCodec) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decode(input []byte) ([]byte, Quality, error) {
	r, err := gzip.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, 0, fmt.Errorf("gzip decode: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("gzip decode: %w", err)
	}
	return out, 0, nil
}

// brotliCodec wraps andybalholm/brotli.
type brotliCodec struct{}

func newBrotliCodec(params []uint64) (Codec, error) {
	if len(params) != 0 {
		return nil, ErrWrongParamCount
	}
	return brotliCodec{}, nil
}

func (brotliCodec) Tag() string { return TagBrotli }

func (brotliCodec) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("brotli encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("brotli encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (brotliCodec) Decode(input []byte) ([]byte, Quality, error) {
	r := brotli.NewReader(bytes.NewReader(input))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("brotli decode: %w", err)
	}
	return out, 0, nil
}

// lzmaCodec wraps ulikunitz/xz's LZMA1 writer/reader.
type lzmaCodec struct{}

func newLZMACodec(params []uint64) (Codec, error) {
	if len(params) != 0 {
		return nil, ErrWrongParamCount
	}
	return lzmaCodec{}, nil
}

func (lzmaCodec) Tag() string { return TagLZMA }

func (lzmaCodec) Encode(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma encode: %w", err)
	}
	if _, err := w.Write(input); err != nil {
		return nil, fmt.Errorf("lzma encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (lzmaCodec) Decode(input []byte) ([]byte, Quality, error) {
	r, err := lzma.NewReader(bytes.NewReader(input))
	if err != nil {
		return nil, 0, fmt.Errorf("lzma decode: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("lzma decode: %w", err)
	}
	return out, 0, nil
}
