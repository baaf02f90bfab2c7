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

// Wire tags for every required codec (§4.1). These are the literal
// strings used in the CSV encoding-list grammar and stored in
// EncodingList entries.
const (
	TagBoundary    = "h"
	TagGzip        = "gzip"
	TagBrotli      = "brotli"
	TagLZMA        = "lzma"
	TagCRC16       = "crc16"
	TagCRC32       = "crc32"
	TagReedSolomon = "rs"
	TagRepeat      = "repeat"
	TagChunk       = "chunk"
	TagRaptorQ     = "rq"
	TagLT          = "lt"
)
